// Package audio holds decoded mono audio and the silence-aware chunking applied
// to it before transcription.
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Buffer is mono PCM normalised to [-1, 1]. It is not mutated after decode;
// slices of it share the backing array.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

func (b Buffer) Len() int { return len(b.Samples) }

func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Slice returns the [start, end) sample range without copying.
func (b Buffer) Slice(start, end int) Buffer {
	return Buffer{Samples: b.Samples[start:end], SampleRate: b.SampleRate}
}

// SamplesFor converts a duration to a sample count at the buffer's rate.
func (b Buffer) SamplesFor(d time.Duration) int {
	return int(int64(d) * int64(b.SampleRate) / int64(time.Second))
}

// PCM16 encodes the samples as signed 16-bit little-endian PCM.
func (b Buffer) PCM16() []byte {
	out := make([]byte, 2*len(b.Samples))
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(toInt16(s)))
	}
	return out
}

func toInt16(s float32) int16 {
	v := math.Round(float64(s) * 32767)
	if v > math.MaxInt16 {
		v = math.MaxInt16
	}
	if v < math.MinInt16 {
		v = math.MinInt16
	}
	return int16(v)
}

// Chunk is a contiguous part of a parent buffer. Start is the offset in samples
// into the parent.
type Chunk struct {
	Index int
	Start int
	Buffer
}

// Offset is the chunk's position in the parent as a duration.
func (c Chunk) Offset() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Start) * time.Second / time.Duration(c.SampleRate)
}
