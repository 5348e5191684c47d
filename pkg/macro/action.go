package macro

import "github.com/lakequery/hogql/pkg/qlast"

// ActionExpander implements resolve.ActionMatcher: `matchesAction(event,
// action_id)` expands into the boolean expression stored against that
// action id, grounded on the original's functions.action.matches_action
// (referenced from resolver.py:412's visit_call dispatch).
type ActionExpander struct {
	Parser  Parser
	Actions ActionLookup
}

// NewActionExpander builds an ActionExpander over the given action
// lookup and parser.
func NewActionExpander(parser Parser, actions ActionLookup) *ActionExpander {
	return &ActionExpander{Parser: parser, Actions: actions}
}

// ExpandMatchesAction resolves call's action-id argument against
// Actions and parses the stored expression text, substituting it for
// the matchesAction(...) call entirely (same textual-substitution
// strategy as expression-field inlining, spec.md §4.6's "Post-processing
// of the resolved leaf").
func (e *ActionExpander) ExpandMatchesAction(teamID string, call *qlast.Call) (qlast.Expr, error) {
	if e.Actions == nil {
		return nil, actionLookupNotConfigured{}
	}
	if len(call.Args) < 2 {
		return nil, wrongArity{name: "matchesAction", want: 2, got: len(call.Args)}
	}
	src, err := e.Actions.ActionExpr(teamID, call.Args[1])
	if err != nil {
		return nil, err
	}
	return e.Parser.ParseExpr(src)
}

type actionLookupNotConfigured struct{}

func (actionLookupNotConfigured) Error() string {
	return "macro: matchesAction() used but no action lookup is configured"
}

type wrongArity struct {
	name string
	want int
	got  int
}

func (e wrongArity) Error() string {
	return "macro: " + e.name + "() wrong arity"
}
