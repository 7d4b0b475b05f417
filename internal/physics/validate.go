package physics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requirePositive(name string, v float64) error {
	if !finite(v) || v <= 0 {
		return dynamo.InvalidParam(name, v)
	}
	return nil
}

func requireNonNegative(name string, v float64) error {
	if !finite(v) || v < 0 {
		return dynamo.InvalidParam(name, v)
	}
	return nil
}
