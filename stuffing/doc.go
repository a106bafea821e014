// SPDX-License-Identifier: MIT

// Package stuffing materializes canonical pieces into the flat standard form
// of a conic solver:
//
//	minimize    (1/2)·xᵀPx + qᵀx
//	subject to  A·x + s = b,  s ∈ K
//
// Column layout:
//
//	BuildVariableMap assigns contiguous columns to the original variables in
//	discovery order, then to auxiliary variables in creation order.
//
// Row layout:
//
//	Rows are grouped by cone kind in the order zero, nonneg, soc, exp, power,
//	which is the order ConeDims describes them in. Within a kind, cones keep
//	their emission order. Exponential and power cones contribute one 3-row
//	cone per element, rows interleaved as (xᵢ, yᵢ, zᵢ).
//
// Sign convention:
//
//	A zero cone a·x + c = 0 becomes A = a, b = −c. Every other cone slice
//	a·x + c ∈ K becomes A = −a, b = c, so that the slack s = b − A·x equals
//	the cone argument exactly.
//
// P is stored as its upper triangle.
package stuffing
