package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/scribebot/internal/provider"
)

func fakeBinary(t *testing.T, dir, name, firstLine string) string {
	t.Helper()
	bin := filepath.Join(dir, name)
	script := "#!/bin/sh\nprintf '" + firstLine + "\\nsecond line\\n'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestCheckOnPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)

	if s := CheckWhisperCli(); s.Installed || s.Path != "" {
		t.Errorf("empty PATH: whisper-cli status = %+v", s)
	}
	if s := CheckFFmpeg(""); s.Installed || s.Name != "ffmpeg" {
		t.Errorf("empty PATH: ffmpeg status = %+v", s)
	}

	bin := fakeBinary(t, dir, "whisper-cli", "whisper-cli 1.7.4")
	s := CheckWhisperCli()
	if !s.Installed || s.Path != bin || s.Version != "whisper-cli 1.7.4" {
		t.Errorf("whisper-cli status = %+v", s)
	}
}

func TestCheckExplicitPath(t *testing.T) {
	bin := fakeBinary(t, t.TempDir(), "fake-ffmpeg", "fake version 1.0")

	status := CheckFFmpeg(bin)
	if !status.Installed || status.Path != bin {
		t.Fatalf("status = %+v", status)
	}
	if status.Version != "fake version 1.0" {
		t.Errorf("version = %q", status.Version)
	}
}

func TestRequiredAndVerify(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-ffmpeg")

	cloud := Required(provider.ConfigProviderOpenAI, missing)
	if len(cloud) != 1 {
		t.Errorf("openai needs only ffmpeg, got %+v", cloud)
	}
	local := Required(provider.ConfigProviderWhisperCpp, missing)
	if len(local) != 2 || local[1].Name != "whisper-cli" {
		t.Errorf("whisper-cpp needs ffmpeg and whisper-cli, got %+v", local)
	}

	err := Verify(cloud)
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("Verify() error = %v, want it to name %s", err, missing)
	}
	if err := Verify([]Status{{Name: "x", Installed: true}}); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}
