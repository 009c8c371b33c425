package audio

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// EncodeWAV renders the buffer as a 16-bit mono RIFF WAV file.
func EncodeWAV(buf Buffer) ([]byte, error) {
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(toInt16(s))
	}

	out := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(out, buf.SampleRate, 16, 1, 1)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return nil, fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return io.ReadAll(out.Reader())
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

// wavFormatPCM is the fmt chunk tag of integer PCM. Float (3) and extensible
// (0xFFFE) files are left to ffmpeg.
const wavFormatPCM = 1

// IsPCMWAV reports whether data is a WAV file holding integer PCM samples,
// the only kind DecodeWAV reads.
func IsPCMWAV(data []byte) bool {
	if !IsWAV(data) {
		return false
	}
	d := wav.NewDecoder(bytes.NewReader(data))
	return d.IsValidFile() && d.WavAudioFormat == wavFormatPCM
}

// DecodeWAV reads a PCM WAV file and downmixes it to mono at its native rate.
func DecodeWAV(data []byte) (Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return Buffer{}, fmt.Errorf("invalid wav file")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return Buffer{}, fmt.Errorf("unsupported wav format tag %d", d.WavAudioFormat)
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("read wav samples: %w", err)
	}

	channels := ib.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	depth := ib.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	scale := float32(int64(1) << (depth - 1))

	frames := len(ib.Data) / channels
	samples := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			v := ib.Data[f*channels+c]
			if depth == 8 {
				// 8-bit WAV is unsigned
				v -= 128
			}
			sum += float32(v) / scale
		}
		samples[f] = sum / float32(channels)
	}
	return Buffer{Samples: samples, SampleRate: ib.Format.SampleRate}, nil
}
