package resolve

import (
	"strconv"

	"github.com/lakequery/hogql/pkg/catalog"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/qltype"
	"github.com/lakequery/hogql/pkg/token"
)

func strKey(s string) qltype.PropertyKey { return qltype.PropertyKey{Str: s} }

func stringKeys(ss []string) []qltype.PropertyKey {
	out := make([]qltype.PropertyKey, len(ss))
	for i, s := range ss {
		out[i] = strKey(s)
	}
	return out
}

// getChild implements the per-step "get_child(segment)" call of the
// chain-traversal algorithm (spec.md §4.6): given the type reached so
// far and the next chain segment, return the type one step further in,
// or (nil, nil) if the step has nothing to resolve against - the
// chain-walk loop (walkChain) turns that into a ResolutionError with
// the segment's span, per spec.md §4.6 "a null result fails cannot
// resolve type".
func (rv *Resolver) getChild(base qltype.Type, key qltype.PropertyKey, span token.Span) (qltype.Type, error) {
	switch t := base.(type) {
	case *qltype.TableAlias:
		return rv.getChild(t.Inner, key, span)
	case *qltype.Table:
		return rv.getChildFromDescriptor(t, t.Descriptor, key, span)
	case *qltype.LazyTable:
		cols, err := t.Descriptor.ResolveColumns(rv.ctx.stdCtx())
		if err != nil {
			return nil, qlerr.NewQueryError(span, "resolving lazy table %q: %v", t.Descriptor.Name, err)
		}
		t.Descriptor.Columns = cols
		return rv.getChildFromDescriptor(t, t.Descriptor, key, span)
	case *qltype.SelectQuery:
		if key.IsInt {
			return nil, nil
		}
		col, ok := t.Column(key.Str)
		if !ok {
			return nil, nil
		}
		return &qltype.Field{Name: key.Str, Owner: t, IsJSON: qltype.IsJSONPath(col)}, nil
	case *qltype.SelectUnion:
		if len(t.Branches) == 0 {
			return nil, nil
		}
		return rv.getChild(t.Branches[0], key, span)
	case *qltype.SelectQueryAlias:
		return rv.getChild(t.Inner, key, span)
	case *qltype.SelectView:
		return rv.getChild(t.Inner, key, span)
	case *qltype.Field:
		if !t.IsJSON {
			return nil, nil
		}
		return &qltype.Property{Chain: []qltype.PropertyKey{key}, Base: t}, nil
	case *qltype.Property:
		chain := make([]qltype.PropertyKey, len(t.Chain)+1)
		copy(chain, t.Chain)
		chain[len(t.Chain)] = key
		return &qltype.Property{Chain: chain, Base: t.Base}, nil
	case *qltype.FieldTraverser:
		// Transparent: ordinarily spliced into the remaining segments by
		// walkChain itself. Reaching here means some caller applied
		// get_child to a traverser directly (e.g. the tail of a chain
		// landed on one); resolve the traverser's own chain against its
		// owner first, then continue with key.
		cur, err := rv.walkChain(t.Owner, stringKeys(t.Chain), span)
		if err != nil {
			return nil, err
		}
		return rv.getChild(cur, key, span)
	default:
		return nil, nil
	}
}

// getChildFromDescriptor resolves one name against a catalog
// descriptor's plain columns, then its schema-declared expression
// fields, then its traversers, in that order (spec.md §4.6 step 3's
// priority list, restricted to the "within one table" part of it).
func (rv *Resolver) getChildFromDescriptor(owner qltype.TableKind, desc *catalog.TableDescriptor, key qltype.PropertyKey, span token.Span) (qltype.Type, error) {
	if key.IsInt {
		return nil, nil
	}
	if col, ok := desc.Column(key.Str); ok {
		return &qltype.Field{Name: key.Str, Owner: owner, IsJSON: col.Kind == catalog.ColumnJSON}, nil
	}
	if _, ok := desc.ExpressionField(key.Str); ok {
		return &qltype.ExpressionField{Name: key.Str, Owner: owner}, nil
	}
	if tr, ok := desc.Traverser(key.Str); ok {
		return &qltype.FieldTraverser{Chain: tr.Chain, Owner: owner}, nil
	}
	return nil, nil
}

// walkChain performs the chain-traversal loop of spec.md §4.6: starting
// from seed, consume each segment of chain in turn, special-casing the
// transparent FieldTraverser splice and the ".." walk-back (documented
// as "one level" but, per spec.md §9's open question, implemented
// exactly as the original: it unwinds two steps of history before
// resuming).
func (rv *Resolver) walkChain(seed qltype.Type, chain []qltype.PropertyKey, span token.Span) (qltype.Type, error) {
	history := []qltype.Type{seed}
	cur := seed
	usedDotDotBack := false

	for i := 0; i < len(chain); i++ {
		seg := chain[i]

		if !seg.IsInt && seg.Str == ".." {
			if usedDotDotBack {
				return nil, qlerr.NewResolutionError(span, "only one '..' step is supported per chain")
			}
			usedDotDotBack = true
			if len(history) < 3 {
				return nil, qlerr.NewResolutionError(span, "'..' has no prior type to resume from")
			}
			history = history[:len(history)-2]
			cur = history[len(history)-1]
			continue
		}

		if trav, ok := cur.(*qltype.FieldTraverser); ok {
			spliced := make([]qltype.PropertyKey, 0, len(trav.Chain)+(len(chain)-i))
			spliced = append(spliced, stringKeys(trav.Chain)...)
			spliced = append(spliced, chain[i:]...)
			chain = spliced
			i = -1
			cur = trav.Owner
			history = append(history, cur)
			continue
		}

		next, err := rv.getChild(cur, seg, span)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, qlerr.NewResolutionError(span, "cannot resolve type for %q", keyString(seg))
		}
		cur = next
		history = append(history, cur)
	}

	if trav, ok := cur.(*qltype.FieldTraverser); ok {
		return rv.walkChain(trav.Owner, stringKeys(trav.Chain), span)
	}
	return cur, nil
}

func keyString(k qltype.PropertyKey) string {
	if k.IsInt {
		return strconv.Itoa(k.Int)
	}
	return k.Str
}
