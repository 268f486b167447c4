// Package analysis inspects recorded run series.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral peak of an evenly sampled series
//   - [UpCrossings] and [Period]: periodicity from threshold crossings
//   - [TrailToASCII]: quick terminal plot of a tracked body's path
//
// # Orbit Period
//
// The tracked body's x coordinate in the orbit scene oscillates once per revolution:
//
//	f := analysis.DominantFrequency(xs, sampleDt)
//	period := 1 / f
package analysis
