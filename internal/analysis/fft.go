package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// NextPow2 returns the smallest power of two >= n, or 1 for n <= 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFT zero-pads data to the next power of two and transforms it.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return []complex128{}
	}
	padded := make([]float64, NextPow2(len(data)))
	copy(padded, data)
	return fft.FFTReal(padded)
}

func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// Detrend returns data with its mean removed.
func Detrend(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// DominantFrequency returns the frequency (in cycles per unit of dt) and
// magnitude of the strongest non-DC bin of the detrended series. Series
// shorter than 4 samples or with dt <= 0 yield zeros.
func DominantFrequency(series []float64, dt float64) (freq, power float64) {
	if len(series) < 4 || dt <= 0 {
		return 0, 0
	}
	ps := PowerSpectrum(Detrend(series))
	n := NextPow2(len(series))

	if len(ps) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) / (float64(n) * dt), ps[best]
}
