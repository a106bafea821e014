// SPDX-License-Identifier: MIT

package expr

// Kind tags every expression node. Consumers switch on it and must reject
// kinds they do not handle with ErrUnknownKind.
type Kind uint8

// Leaf kinds.
const (
	KindVariable Kind = iota
	KindConstant

	// Affine operators.
	KindAdd
	KindNeg
	KindMul
	KindDiv
	KindMatMul
	KindSum
	KindReshape
	KindIndex
	KindVStack
	KindHStack
	KindTranspose
	KindTrace
	KindDiag
	KindCumsum

	// Convex atoms.
	KindNorm1
	KindNorm2
	KindNormInf
	KindAbs
	KindPos
	KindNegPart
	KindMaximum
	KindSumSquares
	KindQuadForm
	KindQuadOverLin
	KindExp

	// Concave atoms (power depends on its exponent, see dcp).
	KindMinimum
	KindLog
	KindEntropy
	KindSqrt
	KindPower

	kindCount
)

var kindNames = [kindCount]string{
	KindVariable:    "variable",
	KindConstant:    "constant",
	KindAdd:         "add",
	KindNeg:         "neg",
	KindMul:         "mul",
	KindDiv:         "div",
	KindMatMul:      "matmul",
	KindSum:         "sum",
	KindReshape:     "reshape",
	KindIndex:       "index",
	KindVStack:      "vstack",
	KindHStack:      "hstack",
	KindTranspose:   "transpose",
	KindTrace:       "trace",
	KindDiag:        "diag",
	KindCumsum:      "cumsum",
	KindNorm1:       "norm1",
	KindNorm2:       "norm2",
	KindNormInf:     "normInf",
	KindAbs:         "abs",
	KindPos:         "pos",
	KindNegPart:     "negPart",
	KindMaximum:     "maximum",
	KindSumSquares:  "sumSquares",
	KindQuadForm:    "quadForm",
	KindQuadOverLin: "quadOverLin",
	KindExp:         "exp",
	KindMinimum:     "minimum",
	KindLog:         "log",
	KindEntropy:     "entropy",
	KindSqrt:        "sqrt",
	KindPower:       "power",
}

// String returns the operator name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return "unknown"
}

// IsLeaf reports variable/constant kinds.
func (k Kind) IsLeaf() bool { return k == KindVariable || k == KindConstant }

// IsAffineOp reports the affine operator kinds (add … cumsum).
func (k Kind) IsAffineOp() bool { return k >= KindAdd && k <= KindCumsum }

// IsAtom reports the nonlinear atom kinds.
func (k Kind) IsAtom() bool { return k >= KindNorm1 && k < kindCount }

// IsElementwise reports atoms and operators whose output has the argument's shape
// and whose i-th output depends only on the i-th input.
func (k Kind) IsElementwise() bool {
	switch k {
	case KindNeg, KindAbs, KindPos, KindNegPart, KindExp, KindLog, KindEntropy, KindSqrt, KindPower:
		return true
	}

	return false
}

// Kinds lists every defined kind in declaration order (used by exhaustiveness tests).
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}

	return out
}
