package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortInputUnchanged(t *testing.T) {
	for _, in := range []string{"", "hello", "  spaced   out  ", strings.Repeat("a", TelegramLimit-1)} {
		got := Collect(in, TelegramLimit)
		if len(got) != 1 || got[0] != in {
			t.Errorf("Split(%d chars) = %d pieces, want the input back", len(in), len(got))
		}
	}
}

func TestSplitLongBlankInput(t *testing.T) {
	for _, in := range []string{strings.Repeat(" ", 10), strings.Repeat(" \n\t", 5)} {
		if got := Collect(in, 10); len(got) != 0 {
			t.Errorf("Split(%q, 10) = %q, want no pieces", in, got)
		}
	}
	// under the limit the input is still returned as is
	if got := Collect("   ", 10); len(got) != 1 || got[0] != "   " {
		t.Errorf("Split(3 spaces) = %q", got)
	}
}

func TestSplitScenario8200(t *testing.T) {
	text := strings.Repeat("x ", 4100)
	got := Collect(text, TelegramLimit)
	if len(got) != 3 {
		t.Fatalf("got %d pieces, want 3", len(got))
	}
	for i, piece := range got {
		if utf8.RuneCountInString(piece) >= TelegramLimit {
			t.Errorf("piece %d has %d chars", i, len(piece))
		}
	}
}

func TestSplitPreservesWords(t *testing.T) {
	var words []string
	for i := 0; i < 3000; i++ {
		words = append(words, strings.Repeat("w", 1+i%13))
	}
	text := strings.Join(words, "  \n")

	got := Collect(text, TelegramLimit)
	if len(got) < 2 {
		t.Fatalf("expected several pieces, got %d", len(got))
	}
	for i, piece := range got {
		if n := utf8.RuneCountInString(piece); n >= TelegramLimit || n == 0 {
			t.Errorf("piece %d has %d runes", i, n)
		}
	}
	if joined := strings.Join(got, " "); joined != strings.Join(words, " ") {
		t.Error("joined pieces do not reconstruct the words")
	}
}

func TestSplitMultibyteCountsRunes(t *testing.T) {
	text := strings.Repeat("ё ", 30)
	got := Collect(text, 20)
	for i, piece := range got {
		if n := utf8.RuneCountInString(piece); n >= 20 {
			t.Errorf("piece %d has %d runes", i, n)
		}
	}
}

func TestSplitOversizedWord(t *testing.T) {
	long := strings.Repeat("z", 25)
	got := Collect("ab "+long+" cd", 10)

	want := []string{"ab", "zzzzzzzzz", "zzzzzzzzz", "zzzzzzz", "cd"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitRestartable(t *testing.T) {
	seq := Split(strings.Repeat("word ", 2000), TelegramLimit)

	var first, second []string
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("iterations differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("piece %d differs between iterations", i)
		}
	}
}

func TestSplitEarlyBreak(t *testing.T) {
	count := 0
	for range Split(strings.Repeat("x ", 10000), TelegramLimit) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected to stop after one piece, got %d", count)
	}
}
