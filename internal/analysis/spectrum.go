package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Band is one frequency bin of a spectrum. Period is in the sampling unit.
type Band struct {
	Frequency float64
	Period    float64
	Power     float64
}

// Spectrum returns the one-sided power spectrum of values sampled every dt,
// after removing the mean. The zero-frequency bin is dropped.
func Spectrum(values []float64, dt float64) []Band {
	n := len(values)
	if n < 2 || dt <= 0 {
		return nil
	}

	mean := stat.Mean(values, nil)
	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	bands := make([]Band, 0, n/2)
	for k := 1; k <= n/2; k++ {
		freq := float64(k) / (float64(n) * dt)
		amp := cmplx.Abs(coeffs[k])
		bands = append(bands, Band{
			Frequency: freq,
			Period:    1 / freq,
			Power:     amp * amp / float64(n),
		})
	}
	return bands
}

// Dominant returns the band with the most power whose period lies in
// [minPeriod, maxPeriod]. A zero maxPeriod means no upper bound.
func Dominant(bands []Band, minPeriod, maxPeriod float64) Band {
	if maxPeriod <= 0 {
		maxPeriod = math.Inf(1)
	}
	var best Band
	for _, b := range bands {
		if b.Period < minPeriod || b.Period > maxPeriod {
			continue
		}
		if b.Power > best.Power {
			best = b
		}
	}
	return best
}

// Powers extracts the power column, e.g. for plotting.
func Powers(bands []Band) []float64 {
	out := make([]float64, len(bands))
	for i, b := range bands {
		out[i] = b.Power
	}
	return out
}
