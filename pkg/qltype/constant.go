package qltype

import (
	"time"

	"github.com/google/uuid"
	"github.com/lakequery/hogql/pkg/qlerr"
	"github.com/lakequery/hogql/pkg/token"
)

// ClassifyConstant maps a literal Go value to its concrete constant
// type variant, per spec.md §4.1. Booleans are tested before integers
// since Go's untyped-constant parsing never confuses the two, but a
// classifier ported from a dynamically typed host language must.
func ClassifyConstant(value any, span token.Span) (Type, error) {
	switch v := value.(type) {
	case nil:
		return &Unknown{}, nil
	case bool:
		return &Boolean{}, nil
	case int, int32, int64:
		return &Integer{}, nil
	case float32, float64:
		return &Float{}, nil
	case string:
		return &String{}, nil
	case time.Time:
		return &DateTime{}, nil
	case uuid.UUID:
		return &UUID{}, nil
	case []any:
		return classifyArray(v, span)
	case ConstantTuple:
		items := make([]Type, 0, len(v))
		for _, e := range v {
			t, err := ClassifyConstant(e, span)
			if err != nil {
				return nil, err
			}
			items = append(items, t)
		}
		return &Tuple{Items: items}, nil
	case ConstantDate:
		return &Date{}, nil
	default:
		return nil, qlerr.NewImpossibleAST(span, "unclassifiable constant value of type %T", value)
	}
}

// ConstantTuple marks a literal as tuple-shaped rather than array-shaped
// when the source AST distinguishes the two (HogQL's array and tuple
// literals share a Go slice representation otherwise).
type ConstantTuple []any

// ConstantDate marks a literal as a bare date rather than a full
// datetime.
type ConstantDate time.Time

func classifyArray(items []any, span token.Span) (Type, error) {
	if len(items) == 0 {
		return &Array{Item: &Unknown{}}, nil
	}
	first, err := ClassifyConstant(items[0], span)
	if err != nil {
		return nil, err
	}
	item := first
	for _, v := range items[1:] {
		t, err := ClassifyConstant(v, span)
		if err != nil {
			return nil, err
		}
		if !sameConstantShape(item, t) {
			item = &Unknown{}
			break
		}
	}
	return &Array{Item: item}, nil
}

// sameConstantShape reports whether two scalar constant types are the
// same variant, for the purpose of deciding an array literal's common
// item type.
func sameConstantShape(a, b Type) bool {
	switch a.(type) {
	case *Unknown:
		_, ok := b.(*Unknown)
		return ok
	case *Boolean:
		_, ok := b.(*Boolean)
		return ok
	case *Integer:
		_, ok := b.(*Integer)
		return ok
	case *Float:
		_, ok := b.(*Float)
		return ok
	case *String:
		_, ok := b.(*String)
		return ok
	case *Date:
		_, ok := b.(*Date)
		return ok
	case *DateTime:
		_, ok := b.(*DateTime)
		return ok
	case *UUID:
		_, ok := b.(*UUID)
		return ok
	default:
		return false
	}
}
