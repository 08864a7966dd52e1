// Package analysis characterizes the periodicity of simulated glacial cycles.
//
//   - [Spectrum]: power spectrum of a uniformly sampled series
//   - [Dominant]: strongest band, optionally restricted to a period range
//   - [Terminations]: steps where a full glacial ends
//   - [Cycles]: statistics of the spacing between terminations
//
// # Example
//
//	bands := analysis.Spectrum(result.Series("v"), 1)
//	fmt.Println(analysis.Dominant(bands, 10, 200).Period)
package analysis
