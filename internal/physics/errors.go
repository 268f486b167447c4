package physics

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for body construction.
var (
	// ErrInvalidParameter indicates a mass or radius that is not strictly positive and finite.
	ErrInvalidParameter = errors.New("physics: invalid parameter")
)

// ParameterError names the rejected parameter and its value.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s must be positive and finite, got %g", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func checkPositive(name string, v float64) error {
	if v > 0 && !math.IsInf(v, 1) {
		return nil
	}
	return &ParameterError{Name: name, Value: v}
}
