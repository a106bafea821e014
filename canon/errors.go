// SPDX-License-Identifier: MIT

package canon

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/convex/dcp"
)

// ErrUnsupported is matched by every construct the canonicalizer refuses.
// Such errors also match dcp.ErrDCP.
var ErrUnsupported = errors.New("canon: unsupported construct")

type unsupportedError struct {
	op, msg string
}

func (e *unsupportedError) Error() string {
	return fmt.Sprintf("canon: %s: %s", e.op, e.msg)
}

func (e *unsupportedError) Unwrap() []error { return []error{ErrUnsupported, dcp.ErrDCP} }

func unsupportedf(op, format string, args ...any) error {
	return &unsupportedError{op: op, msg: fmt.Sprintf(format, args...)}
}

// canonErrorf wraps err with the operation tag. Call only with err != nil.
func canonErrorf(op string, err error) error {
	return fmt.Errorf("canon: %s: %w", op, err)
}
