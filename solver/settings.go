// SPDX-License-Identifier: MIT

package solver

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Defaults of the settings object.
const (
	// DefaultMaxIter caps solver iterations.
	DefaultMaxIter = 100

	// DefaultTolGap is the default absolute and relative duality-gap tolerance.
	DefaultTolGap = 1e-8

	// WireTimeLimit encodes an infinite time limit on the wire (seconds).
	WireTimeLimit = 1e10
)

// Settings are backend-independent solver settings.
type Settings struct {
	Verbose   bool    `json:"verbose"`
	MaxIter   int     `json:"max_iter"`
	TimeLimit float64 `json:"time_limit"` // seconds, +Inf for none
	TolGapAbs float64 `json:"tol_gap_abs"`
	TolGapRel float64 `json:"tol_gap_rel"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIter:   DefaultMaxIter,
		TimeLimit: math.Inf(1),
		TolGapAbs: DefaultTolGap,
		TolGapRel: DefaultTolGap,
	}
}

// Deadline returns the time limit as a duration; ok is false when unlimited.
func (s Settings) Deadline() (d time.Duration, ok bool) {
	if math.IsInf(s.TimeLimit, 1) || s.TimeLimit >= WireTimeLimit {
		return 0, false
	}

	return time.Duration(s.TimeLimit * float64(time.Second)), true
}

// Validate rejects non-positive limits and tolerances.
func (s Settings) Validate() error {
	switch {
	case s.MaxIter <= 0:
		return solverErrorf("Settings", fmt.Errorf("max_iter %d: %w", s.MaxIter, ErrInvalidProblem))
	case !(s.TimeLimit > 0):
		return solverErrorf("Settings", fmt.Errorf("time_limit %g: %w", s.TimeLimit, ErrInvalidProblem))
	case !(s.TolGapAbs > 0) || !(s.TolGapRel > 0):
		return solverErrorf("Settings", fmt.Errorf("tolerances %g/%g: %w", s.TolGapAbs, s.TolGapRel, ErrInvalidProblem))
	}

	return nil
}

type settingsWire Settings

// MarshalJSON writes an infinite time limit as WireTimeLimit.
func (s Settings) MarshalJSON() ([]byte, error) {
	w := settingsWire(s)
	if math.IsInf(w.TimeLimit, 1) {
		w.TimeLimit = WireTimeLimit
	}

	return json.Marshal(w)
}

// UnmarshalJSON fills missing fields from DefaultSettings.
func (s *Settings) UnmarshalJSON(b []byte) error {
	w := settingsWire(DefaultSettings())
	if err := json.Unmarshal(b, &w); err != nil {
		return solverErrorf("Settings", err)
	}
	*s = Settings(w)

	return nil
}
