package audio

import "math"

const testRate = 16000

// tone returns seconds of a 440 Hz sine at amplitude 0.5.
func tone(seconds float64) []float32 {
	n := int(seconds * testRate)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/testRate))
	}
	return out
}

func silence(seconds float64) []float32 {
	return make([]float32, int(seconds*testRate))
}

func concat(parts ...[]float32) Buffer {
	var all []float32
	for _, p := range parts {
		all = append(all, p...)
	}
	return Buffer{Samples: all, SampleRate: testRate}
}
