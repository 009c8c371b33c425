package audio

import (
	"math"
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

const (
	// DefaultSilenceWindow is the analysis window length. Energy thresholds are
	// expressed per window of this size.
	DefaultSilenceWindow = time.Second
	// DefaultSilenceThreshold is the sum of |sample| below which a window is silent.
	DefaultSilenceThreshold = 70.0
)

type SilenceOptions struct {
	Window    time.Duration
	Threshold float64
}

func (o SilenceOptions) withDefaults() SilenceOptions {
	if o.Window <= 0 {
		o.Window = DefaultSilenceWindow
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultSilenceThreshold
	}
	return o
}

func (o SilenceOptions) windowSamples(rate int) int {
	n := int(int64(o.Window) * int64(rate) / int64(time.Second))
	if n < 1 {
		n = 1
	}
	return n
}

// DetectSilence counts the consecutive silent windows at the end of buf and
// returns that count together with the buffer's total duration.
//
// Windows are aligned to the end of the buffer, so the last window ends on the
// last sample and a leading remainder shorter than one window is not analysed.
func DetectSilence(buf Buffer, opts SilenceOptions) (int, time.Duration, error) {
	if len(buf.Samples) == 0 {
		err := apperr.Errorf(apperr.InvalidInput, "detect silence", "empty audio buffer")
		l := logging.WithComponent("audio")
		l.Error().Err(err).Msg("silence detection failed")
		return 0, 0, err
	}
	if buf.SampleRate <= 0 {
		err := apperr.Errorf(apperr.InvalidInput, "detect silence", "invalid sample rate %d", buf.SampleRate)
		l := logging.WithComponent("audio")
		l.Error().Err(err).Msg("silence detection failed")
		return 0, 0, err
	}

	opts = opts.withDefaults()
	win := opts.windowSamples(buf.SampleRate)

	silent := 0
	for end := len(buf.Samples); end-win >= 0; end -= win {
		if windowEnergy(buf.Samples[end-win:end]) >= opts.Threshold {
			break
		}
		silent++
	}
	return silent, buf.Duration(), nil
}

func windowEnergy(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += math.Abs(float64(s))
	}
	return sum
}
