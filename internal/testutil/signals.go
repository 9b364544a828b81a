// Package testutil holds deterministic signal generators shared by tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a sine wave starting at phase 0.
func Sine(freqHz float64, sampleRate int, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates uniform white noise in [-amplitude, amplitude] with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Zeros returns a silent buffer.
func Zeros(length int) []float64 {
	return make([]float64, length)
}
