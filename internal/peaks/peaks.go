// Package peaks locates local maxima of a forcing series and answers
// "most recent peak before step t" queries against them.
package peaks

import (
	"fmt"
	"sort"
)

// PlateauMode selects how flat tops are treated.
type PlateauMode int

const (
	// PlateauStrict only reports samples strictly above both neighbours, so
	// a flat top wider than one sample yields no peak.
	PlateauStrict PlateauMode = iota
	// PlateauMidpoint reports one peak in the middle of a flat top whose
	// outer neighbours are both lower, rounding down for even widths.
	PlateauMidpoint
)

func (m PlateauMode) String() string {
	switch m {
	case PlateauStrict:
		return "strict"
	case PlateauMidpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("PlateauMode(%d)", int(m))
	}
}

func ParsePlateauMode(s string) (PlateauMode, error) {
	switch s {
	case "", "strict":
		return PlateauStrict, nil
	case "midpoint":
		return PlateauMidpoint, nil
	default:
		return 0, fmt.Errorf("unknown plateau mode: %s", s)
	}
}

// Locate returns the indices of the local maxima of series in ascending
// order, paired with their values. Endpoints are never peaks.
func Locate(series []float64, mode PlateauMode) ([]int, []float64) {
	n := len(series)
	indices := make([]int, 0)
	values := make([]float64, 0)

	for i := 1; i < n-1; i++ {
		if !(series[i-1] < series[i]) {
			continue
		}

		ahead := i + 1
		if mode == PlateauMidpoint {
			for ahead < n-1 && series[ahead] == series[i] {
				ahead++
			}
		}

		if series[ahead] < series[i] {
			k := i
			if mode == PlateauMidpoint {
				k = (i + ahead - 1) / 2
			}
			indices = append(indices, k)
			values = append(values, series[k])
			i = ahead - 1
		}
	}

	return indices, values
}

// Index is an immutable peak table for one forcing series.
type Index struct {
	indices []int
	values  []float64
}

func New(series []float64, mode PlateauMode) *Index {
	idx, vals := Locate(series, mode)
	return &Index{indices: idx, values: vals}
}

func (x *Index) Len() int { return len(x.indices) }

// Indices returns a copy of the peak positions.
func (x *Index) Indices() []int {
	out := make([]int, len(x.indices))
	copy(out, x.indices)
	return out
}

// Values returns a copy of the peak values.
func (x *Index) Values() []float64 {
	out := make([]float64, len(x.values))
	copy(out, x.values)
	return out
}

// LatestBefore returns the greatest peak index strictly less than t.
func (x *Index) LatestBefore(t int) (int, bool) {
	k := LatestBefore(t, x.indices)
	if k < 0 {
		return 0, false
	}
	return k, true
}

// LatestBefore returns the greatest element of the ascending slice indices
// that is strictly less than t, or -1 if there is none.
func LatestBefore(t int, indices []int) int {
	k := sort.SearchInts(indices, t)
	if k == 0 {
		return -1
	}
	return indices[k-1]
}
