// Package qlerr defines the three error kinds the resolver raises.
//
// ImpossibleAST marks a resolver invariant violation - a bug in the
// resolver itself, never a user-facing condition. QueryError marks a
// query that is invalid or uses a construct the dialect does not
// support. ResolutionError marks a broken contract between resolution
// phases, such as a chain-walk step that expected an earlier phase to
// have already annotated a node.
package qlerr

import (
	"fmt"

	"github.com/lakequery/hogql/pkg/token"
)

// ImpossibleAST indicates the resolver encountered an AST shape its own
// invariants say cannot occur. Callers should treat this as a bug
// report, not a diagnostic to show the query author.
type ImpossibleAST struct {
	Msg  string
	Span token.Span
}

func (e *ImpossibleAST) Error() string {
	return fmt.Sprintf("impossible ast: %s", e.Msg)
}

// NewImpossibleAST builds an ImpossibleAST with a formatted message.
func NewImpossibleAST(span token.Span, format string, args ...any) *ImpossibleAST {
	return &ImpossibleAST{Msg: fmt.Sprintf(format, args...), Span: span}
}

// QueryError indicates the query itself is invalid, ambiguous, or uses
// a construct unsupported by the active dialect. Safe to surface to the
// query author.
type QueryError struct {
	Msg   string
	Span  token.Span
	Start int // optional character offset into original query text, -1 if unset
	End   int
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %s", e.Msg)
}

// NewQueryError builds a QueryError with a formatted message and no
// explicit character range.
func NewQueryError(span token.Span, format string, args ...any) *QueryError {
	return &QueryError{Msg: fmt.Sprintf(format, args...), Span: span, Start: -1, End: -1}
}

// NewQueryErrorRange builds a QueryError carrying an explicit character
// range into the original query text, as the resolver does when it can
// point at exactly the offending identifier.
func NewQueryErrorRange(span token.Span, start, end int, format string, args ...any) *QueryError {
	return &QueryError{Msg: fmt.Sprintf(format, args...), Span: span, Start: start, End: end}
}

// ResolutionError indicates an internal contract between resolution
// phases was broken: a node that a later phase expects to already carry
// type/scope annotations does not.
type ResolutionError struct {
	Msg  string
	Span token.Span
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution error: %s", e.Msg)
}

// NewResolutionError builds a ResolutionError with a formatted message.
func NewResolutionError(span token.Span, format string, args ...any) *ResolutionError {
	return &ResolutionError{Msg: fmt.Sprintf(format, args...), Span: span}
}
