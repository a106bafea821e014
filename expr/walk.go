// SPDX-License-Identifier: MIT

package expr

// Walk visits e and its descendants in pre-order (node before children,
// children left to right). Shared subexpressions are visited once per
// reference. Returning false from fn skips the node's children.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, a := range e.Args() {
		Walk(a, fn)
	}
}

// Variables returns the distinct variables referenced by e in first-seen
// pre-order. The order fixes the column layout downstream.
func Variables(exprs ...Expr) []*Variable {
	seen := make(map[ID]struct{})
	var out []*Variable
	for _, e := range exprs {
		Walk(e, func(n Expr) bool {
			if v, ok := n.(*Variable); ok {
				if _, dup := seen[v.id]; !dup {
					seen[v.id] = struct{}{}
					out = append(out, v)
				}
			}

			return true
		})
	}

	return out
}

// Constants returns the distinct constants referenced by e in first-seen
// pre-order.
func Constants(e Expr) []*Constant {
	seen := make(map[ID]struct{})
	var out []*Constant
	Walk(e, func(n Expr) bool {
		if c, ok := n.(*Constant); ok {
			if _, dup := seen[c.id]; !dup {
				seen[c.id] = struct{}{}
				out = append(out, c)
			}
		}

		return true
	})

	return out
}

// IsConstantTree reports whether e references no variables.
func IsConstantTree(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if found {
			return false
		}
		if n.Kind() == KindVariable {
			found = true
		}

		return !found
	})

	return !found
}
