// SPDX-License-Identifier: MIT

package solver

import "fmt"

// Status is the terminal state of a solve.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusMaxIterations
	StatusNumericalError
)

var statusNames = [...]string{
	StatusUnknown:        "unknown",
	StatusOptimal:        "optimal",
	StatusInfeasible:     "infeasible",
	StatusUnbounded:      "unbounded",
	StatusMaxIterations:  "max_iterations",
	StatusNumericalError: "numerical_error",
}

// String returns the wire name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return fmt.Sprintf("Status(%d)", uint8(s))
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}

	return StatusUnknown, solverErrorf("ParseStatus", fmt.Errorf("%q: %w", name, ErrUnknownStatus))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}
