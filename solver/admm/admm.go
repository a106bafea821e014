// SPDX-License-Identifier: MIT

package admm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/convex/matrix"
	"github.com/katalvlaran/convex/solver"
	"github.com/katalvlaran/convex/sparse"
	"github.com/katalvlaran/convex/stuffing"
)

const (
	rhoMin        = 1e-6
	rhoMax        = 1e6
	adaptFactor   = 5.0
	progressEvery = 50
	tiny          = 1e-30
)

// Solver is the ADMM backend. It is safe for concurrent use: every Solve
// owns its workspace.
type Solver struct {
	opts Options
}

var _ solver.Solver = (*Solver)(nil)

// New returns a Solver configured by opts.
func New(opts ...Option) *Solver {
	return &Solver{opts: gatherOptions(opts...)}
}

// Options returns the effective configuration.
func (s *Solver) Options() Options { return s.opts }

func admmErrorf(op string, err error) error {
	return fmt.Errorf("admm: %s: %w", op, err)
}

// workspace holds the per-solve state.
type workspace struct {
	opts   Options
	n, m   int
	pFull  *sparse.CSC // symmetric P
	a, at  *sparse.CSC
	q, b   []float64
	blocks []block
	rho    []float64
	factor *matrix.Dense

	x, s, y []float64
}

func newWorkspace(p *stuffing.Problem, opts Options) (*workspace, error) {
	blocks, err := layout(p.Dims)
	if err != nil {
		return nil, err
	}
	for _, a := range p.VarMap.ColumnAttrs() {
		if a.Has(stuffing.AttrInteger) || a.Has(stuffing.AttrBinary) {
			return nil, solver.ErrInteger
		}
	}
	w := &workspace{
		opts:   opts,
		n:      p.Columns(),
		m:      p.Rows(),
		a:      p.A,
		at:     p.A.Transpose(),
		q:      p.Q,
		b:      p.B,
		blocks: blocks,
	}
	if w.pFull, err = symmetric(p.P); err != nil {
		return nil, err
	}
	w.rho = make([]float64, w.m)
	for i := range w.rho {
		w.rho[i] = opts.Rho
		if i < p.Dims.Zero {
			w.rho[i] *= EqualityScale
		}
	}
	w.x = make([]float64, w.n)
	w.s = make([]float64, w.m)
	w.y = make([]float64, w.m)

	return w, w.refactor()
}

// symmetric rebuilds the full matrix from its upper triangle.
func symmetric(u *sparse.CSC) (*sparse.CSC, error) {
	full, err := u.Add(u.Transpose())
	if err != nil {
		return nil, err
	}
	diag := make([]float64, u.Cols())
	for j := range diag {
		if diag[j], err = u.At(j, j); err != nil {
			return nil, err
		}
	}

	return full.Sub(sparse.Diag(diag))
}

// refactor factors P + σI + AᵀRA.
func (w *workspace) refactor() error {
	ra, err := sparse.Diag(w.rho).MulMat(w.a)
	if err != nil {
		return err
	}
	atra, err := w.a.MulMatTransposeLeft(ra)
	if err != nil {
		return err
	}
	k, err := w.pFull.Add(atra)
	if err != nil {
		return err
	}
	if k, err = k.Add(sparse.Identity(w.n).Scale(w.opts.Sigma)); err != nil {
		return err
	}
	d, err := k.Dense()
	if err != nil {
		return err
	}
	w.factor, err = matrix.Cholesky(d)

	return err
}

// iterate runs one ADMM step and returns δx and δy.
func (w *workspace) iterate() (dx, dy []float64, err error) {
	o := w.opts
	v := make([]float64, w.m)
	for i := range v {
		v[i] = w.rho[i]*(w.b[i]-w.s[i]) + w.y[i]
	}
	atv, err := w.at.MulVec(v)
	if err != nil {
		return nil, nil, err
	}
	rhs := make([]float64, w.n)
	for j := range rhs {
		rhs[j] = o.Sigma*w.x[j] - w.q[j] + atv[j]
	}
	xt, err := matrix.CholeskySolve(w.factor, rhs)
	if err != nil {
		return nil, nil, err
	}
	axt, err := w.a.MulVec(xt)
	if err != nil {
		return nil, nil, err
	}

	dx = make([]float64, w.n)
	for j := range w.x {
		next := o.Alpha*xt[j] + (1-o.Alpha)*w.x[j]
		dx[j] = next - w.x[j]
		w.x[j] = next
	}
	relaxed := make([]float64, w.m)
	sNew := make([]float64, w.m)
	for i := range relaxed {
		relaxed[i] = o.Alpha*(w.b[i]-axt[i]) + (1-o.Alpha)*w.s[i]
		sNew[i] = relaxed[i] + w.y[i]/w.rho[i]
	}
	project(w.blocks, sNew)
	dy = make([]float64, w.m)
	for i := range w.y {
		dy[i] = w.rho[i] * (relaxed[i] - sNew[i])
		w.y[i] += dy[i]
	}
	w.s = sNew

	return dx, dy, nil
}

// residuals are the scaled quantities behind the stopping rules.
type residuals struct {
	primal, dual           float64
	primalScale, dualScale float64
}

func (w *workspace) residuals() (residuals, error) {
	ax, err := w.a.MulVec(w.x)
	if err != nil {
		return residuals{}, err
	}
	px, err := w.pFull.MulVec(w.x)
	if err != nil {
		return residuals{}, err
	}
	aty, err := w.at.MulVec(w.y)
	if err != nil {
		return residuals{}, err
	}
	rp := make([]float64, w.m)
	for i := range rp {
		rp[i] = ax[i] + w.s[i] - w.b[i]
	}
	rd := make([]float64, w.n)
	for j := range rd {
		rd[j] = px[j] + w.q[j] - aty[j]
	}

	return residuals{
		primal:      normInf(rp),
		dual:        normInf(rd),
		primalScale: math.Max(normInf(ax), math.Max(normInf(w.s), normInf(w.b))),
		dualScale:   math.Max(normInf(px), math.Max(normInf(w.q), normInf(aty))),
	}, nil
}

func (w *workspace) converged(r residuals) bool {
	o := w.opts
	return r.primal <= o.EpsAbs+o.EpsRel*r.primalScale &&
		r.dual <= o.EpsAbs+o.EpsRel*r.dualScale
}

// primalInfeasible tests δy as a Farkas certificate: −δy ∈ K*, Aᵀδy ≈ 0, bᵀδy > 0.
func (w *workspace) primalInfeasible(dy []float64) (bool, error) {
	nrm := normInf(dy)
	if nrm < tiny {
		return false, nil
	}
	eps := w.opts.EpsInf * nrm
	atdy, err := w.at.MulVec(dy)
	if err != nil {
		return false, err
	}
	if normInf(atdy) > eps || dot(w.b, dy) <= eps {
		return false, nil
	}
	neg := make([]float64, len(dy))
	for i, v := range dy {
		neg[i] = -v
	}

	return dualDistance(w.blocks, neg) <= eps, nil
}

// dualInfeasible tests δx as a ray of descent: Pδx ≈ 0, qᵀδx < 0, −Aδx ∈ K.
func (w *workspace) dualInfeasible(dx []float64) (bool, error) {
	nrm := normInf(dx)
	if nrm < tiny {
		return false, nil
	}
	eps := w.opts.EpsInf * nrm
	if dot(w.q, dx) >= -eps {
		return false, nil
	}
	pdx, err := w.pFull.MulVec(dx)
	if err != nil {
		return false, err
	}
	if normInf(pdx) > eps {
		return false, nil
	}
	adx, err := w.a.MulVec(dx)
	if err != nil {
		return false, err
	}
	for i := range adx {
		adx[i] = -adx[i]
	}

	return distance(w.blocks, adx) <= eps, nil
}

// adapt rescales ρ by the balance of the scaled residuals and reports
// whether the KKT matrix was refactored.
func (w *workspace) adapt(r residuals) (bool, error) {
	if w.m == 0 {
		return false, nil
	}
	p := r.primal / math.Max(r.primalScale, tiny)
	d := r.dual / math.Max(r.dualScale, tiny)
	if d < tiny {
		return false, nil
	}
	ratio := math.Sqrt(p / d)
	if ratio < adaptFactor && ratio > 1/adaptFactor {
		return false, nil
	}
	for i := range w.rho {
		w.rho[i] = math.Min(math.Max(w.rho[i]*ratio, rhoMin), rhoMax*EqualityScale)
	}

	return true, w.refactor()
}

// Solve runs ADMM on p.
//
// Errors: solver.ErrInvalidProblem, solver.ErrUnsupportedCone, solver.ErrInteger,
// and ctx.Err() when the context ends first. Non-optimal terminations are
// reported through Result.Status with a nil error.
func (s *Solver) Solve(ctx context.Context, p *stuffing.Problem) (*solver.Result, error) {
	const op = "Solve"
	if err := solver.CheckProblem(p); err != nil {
		return nil, admmErrorf(op, err)
	}
	o := s.opts
	log := o.Logger.WithName("admm")
	progress := log.V(2)
	if o.Verbose {
		progress = log
	}
	start := time.Now()
	w, err := newWorkspace(p, o)
	if err != nil {
		return nil, admmErrorf(op, err)
	}
	log.Info("solve started", "columns", w.n, "rows", w.m, "cones", p.Dims.String(), "quadratic", p.IsQuadratic())

	res := &solver.Result{Status: solver.StatusMaxIterations}
	finish := func() (*solver.Result, error) {
		res.SolveTime = time.Since(start)
		log.Info("solve finished", "status", res.Status, "iterations", res.Iterations, "elapsed", res.SolveTime)

		return res, nil
	}
	numerical := func(err error) (*solver.Result, error) {
		log.Error(err, "numerical failure", "iteration", res.Iterations)
		res.Status = solver.StatusNumericalError

		return finish()
	}

	for k := 1; k <= o.MaxIter; k++ {
		if err := ctx.Err(); err != nil {
			return nil, admmErrorf(op, err)
		}
		if o.TimeLimit > 0 && time.Since(start) > o.TimeLimit {
			return finish()
		}
		res.Iterations = k
		dx, dy, err := w.iterate()
		if err != nil {
			return numerical(err)
		}
		r, err := w.residuals()
		if err != nil {
			return numerical(err)
		}
		if math.IsNaN(r.primal) || math.IsNaN(r.dual) {
			return numerical(fmt.Errorf("residual is NaN"))
		}
		if k%progressEvery == 0 {
			progress.Info("iteration", "k", k, "primal", r.primal, "dual", r.dual)
		}
		if w.converged(r) {
			res.Status = solver.StatusOptimal
			res.X = append([]float64(nil), w.x...)
			res.Z = make([]float64, w.m)
			for i, v := range w.y {
				res.Z[i] = -v
			}
			v, err := solver.Objective(p, res.X)
			if err != nil {
				return nil, admmErrorf(op, err)
			}
			res.ObjVal = &v

			return finish()
		}
		if k > 1 {
			if bad, err := w.primalInfeasible(dy); err != nil {
				return numerical(err)
			} else if bad {
				res.Status = solver.StatusInfeasible
				return finish()
			}
			if bad, err := w.dualInfeasible(dx); err != nil {
				return numerical(err)
			} else if bad {
				res.Status = solver.StatusUnbounded
				return finish()
			}
		}
		if o.AdaptiveRho && k%o.AdaptInterval == 0 {
			changed, err := w.adapt(r)
			if err != nil {
				return numerical(err)
			}
			if changed {
				progress.Info("rho updated", "k", k, "rho", w.rho[w.m-1])
			}
		}
	}

	return finish()
}
