package language

import "testing"

func TestFromCode(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
	}{
		{"en", "en", "English"},
		{"it", "it", "Italian"},
		{"zh", "zh", "Chinese"},
		{"klingon", "", "Auto-detect"},
		{"", "", "Auto-detect"},
	}

	for _, tt := range tests {
		got := FromCode(tt.code)
		if got.Code != tt.wantCode || got.Name != tt.wantName {
			t.Errorf("FromCode(%q) = %q/%q, want %q/%q", tt.code, got.Code, got.Name, tt.wantCode, tt.wantName)
		}
	}
}

func TestIsValidCode(t *testing.T) {
	for _, code := range []string{"", "en", "it", "uk"} {
		if !IsValidCode(code) {
			t.Errorf("IsValidCode(%q) = false", code)
		}
	}
	for _, code := range []string{"xx", "EN", "en-US"} {
		if IsValidCode(code) {
			t.Errorf("IsValidCode(%q) = true", code)
		}
	}
}

func TestCodesExcludeAuto(t *testing.T) {
	codes := Codes()
	if len(codes) != len(List()) {
		t.Fatalf("Codes() and List() disagree: %d vs %d", len(codes), len(List()))
	}
	for _, c := range codes {
		if c == "" {
			t.Fatal("Codes() contains the auto code")
		}
	}
}

func TestGoogleCode(t *testing.T) {
	tests := map[string]string{
		"":   "en-US",
		"en": "en-US",
		"it": "it-IT",
		"cy": "cy",
		"zz": "en-US",
	}
	for in, want := range tests {
		if got := GoogleCode(in); got != want {
			t.Errorf("GoogleCode(%q) = %q, want %q", in, got, want)
		}
	}
}
