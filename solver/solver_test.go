// SPDX-License-Identifier: MIT
package solver_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/solver"
	"github.com/katalvlaran/convex/sparse"
	"github.com/katalvlaran/convex/stuffing"
	"github.com/stretchr/testify/require"
)

// TestStatus_Text round-trips every wire name.
func TestStatus_Text(t *testing.T) {
	names := []string{"unknown", "optimal", "infeasible", "unbounded", "max_iterations", "numerical_error"}
	for _, name := range names {
		s, err := solver.ParseStatus(name)
		require.NoError(t, err)
		require.Equal(t, name, s.String())

		raw, err := json.Marshal(s)
		require.NoError(t, err)
		require.Equal(t, `"`+name+`"`, string(raw))

		var back solver.Status
		require.NoError(t, json.Unmarshal(raw, &back))
		require.Equal(t, s, back)
	}

	_, err := solver.ParseStatus("solved")
	require.ErrorIs(t, err, solver.ErrUnknownStatus)
	require.Equal(t, "Status(42)", solver.Status(42).String())
}

// TestStatusError maps statuses onto sentinels.
func TestStatusError(t *testing.T) {
	require.NoError(t, solver.StatusError(solver.StatusOptimal))
	require.ErrorIs(t, solver.StatusError(solver.StatusInfeasible), solver.ErrInfeasible)
	require.ErrorIs(t, solver.StatusError(solver.StatusUnbounded), solver.ErrUnbounded)
	for _, s := range []solver.Status{solver.StatusMaxIterations, solver.StatusNumericalError, solver.StatusUnknown} {
		err := solver.StatusError(s)
		require.ErrorIs(t, err, solver.ErrSolver)
		require.ErrorContains(t, err, s.String())
	}
}

// TestSettings_JSON checks defaults, the infinite time limit and partial input.
func TestSettings_JSON(t *testing.T) {
	def := solver.DefaultSettings()
	require.NoError(t, def.Validate())
	_, limited := def.Deadline()
	require.False(t, limited)

	raw, err := json.Marshal(def)
	require.NoError(t, err)
	require.JSONEq(t, `{"verbose":false,"max_iter":100,"time_limit":1e10,"tol_gap_abs":1e-8,"tol_gap_rel":1e-8}`, string(raw))

	var s solver.Settings
	require.NoError(t, json.Unmarshal([]byte(`{"max_iter": 500, "time_limit": 2.5}`), &s))
	require.Equal(t, 500, s.MaxIter)
	require.Equal(t, solver.DefaultTolGap, s.TolGapAbs)
	d, limited := s.Deadline()
	require.True(t, limited)
	require.Equal(t, 2500*time.Millisecond, d)

	require.Error(t, json.Unmarshal([]byte(`{"max_iter": "x"}`), &s))

	bad := solver.DefaultSettings()
	bad.MaxIter = 0
	require.ErrorIs(t, bad.Validate(), solver.ErrInvalidProblem)
	bad = solver.DefaultSettings()
	bad.TolGapRel = math.NaN()
	require.ErrorIs(t, bad.Validate(), solver.ErrInvalidProblem)
}

func smallProblem(t *testing.T) *stuffing.Problem {
	t.Helper()
	x, err := expr.NewVariable(expr.Shape{2})
	require.NoError(t, err)
	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x}, nil)
	require.NoError(t, err)
	P, err := sparse.FromDense([]float64{2, 0, 1, 4}, 2, 2)
	require.NoError(t, err)

	return &stuffing.Problem{
		P:      P,
		Q:      []float64{1, -1},
		A:      sparse.Identity(2).Scale(-1),
		B:      []float64{0, 0},
		Dims:   stuffing.ConeDims{Nonneg: 2},
		VarMap: vm,
	}
}

// TestCheckProblem flags inconsistent dimensions.
func TestCheckProblem(t *testing.T) {
	p := smallProblem(t)
	require.NoError(t, solver.CheckProblem(p))

	p.Q = []float64{1}
	require.ErrorIs(t, solver.CheckProblem(p), solver.ErrInvalidProblem)

	p = smallProblem(t)
	p.Dims.Nonneg = 3
	require.ErrorIs(t, solver.CheckProblem(p), solver.ErrInvalidProblem)

	p = smallProblem(t)
	p.P = sparse.Ones(2, 2)
	require.ErrorIs(t, solver.CheckProblem(p), solver.ErrInvalidProblem)

	require.ErrorIs(t, solver.CheckProblem(nil), solver.ErrInvalidProblem)
}

// TestObjective reads P as an upper triangle.
func TestObjective(t *testing.T) {
	p := smallProblem(t)
	// (1/2)(2·1 + 4·4) + 1·1·2 + (1 − 2) = 9 + 2 − 1
	v, err := solver.Objective(p, []float64{1, 2})
	require.NoError(t, err)
	require.InDelta(t, 10, v, 1e-12)

	_, err = solver.Objective(p, []float64{1})
	require.ErrorIs(t, err, solver.ErrInvalidProblem)
}

// TestFunc adapts a closure.
func TestFunc(t *testing.T) {
	var s solver.Solver = solver.Func(func(_ context.Context, p *stuffing.Problem) (*solver.Result, error) {
		return &solver.Result{Status: solver.StatusOptimal, X: make([]float64, p.Columns())}, nil
	})
	res, err := s.Solve(context.Background(), smallProblem(t))
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, res.Status)
	require.Len(t, res.X, 2)
}
