// SPDX-License-Identifier: MIT

// Package affine holds the canonical affine form A·x + c produced by the
// canonicalizer.
//
// An Expr has a fixed number of rows and maps variable ids to sparse
// coefficient blocks (rows × variable size) in insertion order, next to a
// dense constant vector of length rows. The insertion order is the only
// order used when iterating, so two identical lowering passes yield identical
// layouts.
//
// Expressions are values: every operation returns a new Expr and leaves its
// operands untouched.
package affine
