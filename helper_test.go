package sailprop

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const testε = 1e-6

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !scalar.EqualWithinAbs(a[i], b[i], 1e-7) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in radians are equal modulo 2π.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(a - b)
	if diff < testε || math.Abs(diff-2*math.Pi) < testε {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}

func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}
