package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

// checkParam rejects non-finite values, and non-positive values for the
// step size and the time constants.
func checkParam(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrNonFinite, name, v)
	}
	if mustBePositive(name) && v <= 0 {
		return fmt.Errorf("%w: %s=%v must be positive", dynamo.ErrInvalidParam, name, v)
	}
	return nil
}

func mustBePositive(name string) bool {
	return name == "dt" || name == "tau_f" || strings.HasPrefix(name, "tau_r.")
}

func checkParams(params map[string]float64) error {
	for name, v := range params {
		if err := checkParam(name, v); err != nil {
			return err
		}
	}
	return nil
}
