package resolve

import "github.com/lakequery/hogql/pkg/qltype"

// scopeStack is the resolver's LIFO binding environment: one frame per
// currently-open SELECT or lambda, mirrored exactly against the AST
// sub-tree currently being walked (spec.md §3 invariant 7, §4.2).
//
// Name-resolution reads (table alias, column alias, field lookup)
// consult only the top frame; CTE lookup is the one exception and walks
// the whole stack top-to-bottom, since a CTE declared by an enclosing
// query is visible to every nested SELECT (spec.md §4.2).
type scopeStack struct {
	frames []*qltype.SelectQuery
}

// push creates a fresh SelectQuery frame with the given parent (the
// enclosing frame, or nil at the outermost query) and pushes it as the
// new top. Parent is set the same way for an ordinary nested SELECT and
// for a lambda; only IsLambda (set by pushLambda) decides whether
// seedForName's fallthrough actually walks past the frame being
// checked, so a non-lambda frame's Parent link is inert - present for
// uniformity, never consulted for field-lookup fallthrough.
func (s *scopeStack) push(parent *qltype.SelectQuery) *qltype.SelectQuery {
	sq := qltype.NewSelectQuery(parent)
	s.frames = append(s.frames, sq)
	return sq
}

// pushLambda creates a fresh frame exactly like push, but flagged so
// field lookup falls through to parent on a miss (spec.md §4.2: "field
// lookup inside a lambda chains to the parent chain up to the nearest
// SELECT").
func (s *scopeStack) pushLambda(parent *qltype.SelectQuery) *qltype.SelectQuery {
	sq := s.push(parent)
	sq.IsLambda = true
	return sq
}

// pushExisting pushes an already-built frame (used when resolve_types
// is called with pre-seeded scopes to resolve a fragment against an
// outer query, spec.md §6 "scopes").
func (s *scopeStack) pushExisting(sq *qltype.SelectQuery) {
	s.frames = append(s.frames, sq)
}

// pop removes and returns the top frame. Popping an empty stack is a
// caller bug (ImpossibleAST territory) and panics, since it can only
// happen if push/pop calls in the resolver are mismatched.
func (s *scopeStack) pop() *qltype.SelectQuery {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return top
}

// current returns the top frame, or nil if the stack is empty.
func (s *scopeStack) current() *qltype.SelectQuery {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// lookupCTE walks the stack from top to bottom looking for name,
// per spec.md §4.2: CTEs defined in an enclosing query are visible to
// inner queries, so a nested SELECT's own (empty) CTE map never shadows
// an outer WITH clause unless it redeclares the same name.
func (s *scopeStack) lookupCTE(name string) (*qltype.CTEDef, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if def, ok := s.frames[i].CTEs[name]; ok {
			return def, true
		}
	}
	return nil, false
}

// depth reports how many frames are currently open, for logging.
func (s *scopeStack) depth() int { return len(s.frames) }
