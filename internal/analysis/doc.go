// Package analysis provides spectral tools for recorded run series.
//
//   - [FFT]: radix-2 transform, input zero-padded to a power of two
//   - [PowerSpectrum]: magnitude of the non-negative frequency bins
//   - [DominantFrequency]: strongest non-DC frequency of a sampled series
//
// A pressure series sampled every TimeScale seconds:
//
//	freq, power := analysis.DominantFrequency(series.Pressure, cfg.TimeScale)
package analysis
