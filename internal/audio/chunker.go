package audio

import (
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
)

const (
	DefaultChunkDuration = 20 * time.Second
	DefaultSearchWindow  = 5 * time.Second

	// searchHop is the step used when walking back from a nominal cut.
	searchHop = 100 * time.Millisecond
)

// Chunker splits a buffer into pieces of at most ChunkDuration, preferring to
// cut where the preceding window is silent.
type Chunker struct {
	ChunkDuration time.Duration
	SearchWindow  time.Duration
	Silence       SilenceOptions
}

func NewChunker(chunk, search time.Duration, silence SilenceOptions) *Chunker {
	if chunk <= 0 {
		chunk = DefaultChunkDuration
	}
	if search < 0 {
		search = 0
	}
	return &Chunker{ChunkDuration: chunk, SearchWindow: search, Silence: silence.withDefaults()}
}

// Split covers buf with contiguous, non-empty chunks. A buffer no longer than
// one chunk comes back as a single chunk.
func (c *Chunker) Split(buf Buffer) ([]Chunk, error) {
	if len(buf.Samples) == 0 {
		return nil, apperr.Errorf(apperr.InvalidInput, "split audio", "empty audio buffer")
	}
	if buf.SampleRate <= 0 {
		return nil, apperr.Errorf(apperr.InvalidInput, "split audio", "invalid sample rate %d", buf.SampleRate)
	}

	size := buf.SamplesFor(c.ChunkDuration)
	if size < 1 {
		size = 1
	}

	var chunks []Chunk
	start := 0
	for len(buf.Samples)-start > size {
		cut, err := c.findCut(buf, start, start+size)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Buffer: buf.Slice(start, cut)})
		start = cut
	}
	chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Buffer: buf.Slice(start, len(buf.Samples))})
	return chunks, nil
}

// findCut walks back from nominal in searchHop steps, no further than
// SearchWindow, and returns the first point whose trailing window is silent.
func (c *Chunker) findCut(buf Buffer, start, nominal int) (int, error) {
	win := c.Silence.windowSamples(buf.SampleRate)
	hop := buf.SamplesFor(searchHop)
	if hop < 1 {
		hop = 1
	}

	lowest := nominal - buf.SamplesFor(c.SearchWindow)
	if lowest < start+win {
		lowest = start + win
	}

	for cand := nominal; cand >= lowest; cand -= hop {
		silent, _, err := DetectSilence(buf.Slice(cand-win, cand), c.Silence)
		if err != nil {
			return 0, err
		}
		if silent > 0 {
			return cand, nil
		}
	}
	return nominal, nil
}
