// Package textsplit breaks long transcripts into messages that fit a
// platform's length limit.
package textsplit

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// TelegramLimit is the maximum message length accepted by Telegram.
const TelegramLimit = 4096

// Split yields pieces of text each strictly shorter than limit runes.
//
// Text already under the limit is yielded unchanged. Longer text is packed
// greedily word by word, words joined with single spaces. A single word that
// cannot fit on its own is cut into limit-1 rune pieces. Long text made only
// of whitespace yields no pieces at all, since there is nothing to send.
//
// The returned sequence can be ranged over any number of times.
func Split(text string, limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if limit < 2 || utf8.RuneCountInString(text) < limit {
			yield(text)
			return
		}

		var (
			current    strings.Builder
			currentLen int
		)
		flush := func() bool {
			if currentLen == 0 {
				return true
			}
			piece := current.String()
			current.Reset()
			currentLen = 0
			return yield(piece)
		}

		for _, word := range strings.Fields(text) {
			wordLen := utf8.RuneCountInString(word)

			if wordLen >= limit {
				if !flush() {
					return
				}
				for _, part := range hardSplit(word, limit-1) {
					if utf8.RuneCountInString(part) == limit-1 {
						if !yield(part) {
							return
						}
						continue
					}
					current.WriteString(part)
					currentLen = utf8.RuneCountInString(part)
				}
				continue
			}

			if currentLen > 0 && currentLen+1+wordLen >= limit {
				if !flush() {
					return
				}
			}
			if currentLen > 0 {
				current.WriteByte(' ')
				currentLen++
			}
			current.WriteString(word)
			currentLen += wordLen
		}
		flush()
	}
}

// Collect is a convenience for callers that need the pieces as a slice.
func Collect(text string, limit int) []string {
	var out []string
	for piece := range Split(text, limit) {
		out = append(out, piece)
	}
	return out
}

func hardSplit(word string, size int) []string {
	var parts []string
	runes := []rune(word)
	for len(runes) > 0 {
		n := min(size, len(runes))
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}
