// SPDX-License-Identifier: MIT

// Package expr is the expression model of the modeling layer: an immutable DAG
// of typed nodes over vector/matrix variables and constants, with eager shape
// inference.
//
// What & Why:
//
//	Every later stage (DCP analysis, canonicalization, stuffing) walks these
//	trees. Nodes are never mutated after construction, so a subexpression can
//	be shared by many parents and read from many goroutines at once.
//
// Shapes:
//
//	[] is a scalar, [n] a vector, [m n] a matrix. Data is always flattened in
//	column-major order. Two shapes broadcast when they are equal, when either
//	is a scalar, or when, aligned from the right, every dimension pair is equal
//	or contains a 1.
//
// Identity:
//
//	Variables and constants carry an ID from a process-wide atomic counter.
//	ResetIDs rewinds it for test isolation; an explicit *Allocator can be
//	passed instead when several independent problems are built concurrently.
//
// Errors:
//
//	Shape violations are reported eagerly by the constructors as *ShapeError
//	(matching ErrShape), naming the operation and the expected vs. actual shape.
package expr
