package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/leonardotrapani/scribebot/internal/apperr"
)

// Decoder turns encoded audio into a mono buffer at sampleRate.
type Decoder interface {
	Decode(ctx context.Context, data []byte, sampleRate int) (Buffer, error)
}

// FFmpegDecoder turns arbitrary container bytes into a mono buffer at the
// requested rate. Integer PCM WAV input is decoded natively; everything else,
// float WAV included, goes through ffmpeg.
type FFmpegDecoder struct {
	Path string
}

func NewFFmpegDecoder(path string) *FFmpegDecoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegDecoder{Path: path}
}

func (d *FFmpegDecoder) Decode(ctx context.Context, data []byte, sampleRate int) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, apperr.Errorf(apperr.Decode, "decode audio", "no audio data")
	}
	if sampleRate <= 0 {
		return Buffer{}, apperr.Errorf(apperr.InvalidInput, "decode audio", "invalid target sample rate %d", sampleRate)
	}

	var (
		buf Buffer
		err error
	)
	if IsPCMWAV(data) {
		buf, err = DecodeWAV(data)
		if err == nil {
			buf = Resample(buf, sampleRate)
		}
	} else {
		buf, err = d.runFFmpeg(ctx, data, sampleRate)
	}
	if err != nil {
		return Buffer{}, apperr.New(apperr.Decode, "decode audio", err)
	}
	if len(buf.Samples) == 0 {
		return Buffer{}, apperr.Errorf(apperr.Decode, "decode audio", "no audio samples decoded")
	}
	return buf, nil
}

func (d *FFmpegDecoder) runFFmpeg(ctx context.Context, data []byte, sampleRate int) (Buffer, error) {
	cmd := exec.CommandContext(ctx, d.Path,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "f32le", "-ac", "1", "-ar", strconv.Itoa(sampleRate),
		"pipe:1")
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return Buffer{}, fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
		}
		return Buffer{}, fmt.Errorf("ffmpeg failed: %w", err)
	}
	return Buffer{Samples: parseFloat32LE(stdout.Bytes()), SampleRate: sampleRate}, nil
}

func parseFloat32LE(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}

// Resample converts buf to rate with linear interpolation.
func Resample(buf Buffer, rate int) Buffer {
	if buf.SampleRate == rate || buf.SampleRate <= 0 || len(buf.Samples) == 0 {
		return Buffer{Samples: buf.Samples, SampleRate: rate}
	}
	n := int(int64(len(buf.Samples)) * int64(rate) / int64(buf.SampleRate))
	if n < 1 {
		n = 1
	}
	out := make([]float32, n)
	step := float64(buf.SampleRate) / float64(rate)
	last := len(buf.Samples) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = buf.Samples[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = buf.Samples[j]*(1-frac) + buf.Samples[j+1]*frac
	}
	return Buffer{Samples: out, SampleRate: rate}
}
