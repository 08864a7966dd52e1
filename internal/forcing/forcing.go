// Package forcing builds and preprocesses the insolation series that drive
// the glacial models.
package forcing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrConstant = errors.New("forcing: series has zero variance")

// Series is a forcing signal sampled at Times.
type Series struct {
	Times  []float64
	Values []float64
}

func (s Series) Len() int { return len(s.Times) }

func (s Series) Validate() error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("forcing: %d times but %d values", len(s.Times), len(s.Values))
	}
	if len(s.Times) == 0 {
		return errors.New("forcing: empty series")
	}
	for i := range s.Times {
		if !finite(s.Times[i]) || !finite(s.Values[i]) {
			return fmt.Errorf("forcing: non-finite sample at index %d", i)
		}
	}
	return nil
}

// Truncate applies the smooth rectifier f(x) = (x + sqrt(4a^2 + x^2)) / 2,
// which damps negative excursions while leaving large positive ones nearly
// untouched.
func Truncate(x, a float64) float64 {
	return 0.5 * (x + math.Sqrt(4*a*a+x*x))
}

// TruncateAll returns a truncated copy of values.
func TruncateAll(values []float64, a float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Truncate(v, a)
	}
	return out
}

// Normalize returns the z-score of values using the population standard
// deviation.
func Normalize(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 || !finite(std) {
		return nil, ErrConstant
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out, nil
}

// Prepare runs the optional truncation then normalization on s.Values,
// returning a new series that shares s.Times.
func Prepare(s Series, truncate bool, a float64, normalize bool) (Series, error) {
	values := append([]float64(nil), s.Values...)
	if truncate {
		values = TruncateAll(values, a)
	}
	if normalize {
		var err error
		if values, err = Normalize(values); err != nil {
			return Series{}, err
		}
	}
	return Series{Times: s.Times, Values: values}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
