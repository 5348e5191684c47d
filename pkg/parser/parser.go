// Package parser turns HogQL source text into an unresolved pkg/qlast
// tree, following the teacher's pkg/lineage parser structure: a small
// recursive-descent parser with a precedence-climbing expression
// routine, built directly on pkg/lexer and pkg/token.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lakequery/hogql/pkg/lexer"
	"github.com/lakequery/hogql/pkg/qlast"
	"github.com/lakequery/hogql/pkg/token"
)

// Parser parses one HogQL statement from a token stream.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
}

// New returns a Parser over src.
func New(src string) *Parser {
	p := &Parser{l: lexer.New(src)}
	p.advance()
	p.advance()
	return p
}

// ParseSelect parses a SELECT statement, including a trailing
// UNION/UNION ALL/INTERSECT/EXCEPT chain, and returns either a
// *qlast.SelectQuery or a *qlast.SelectUnionQuery.
func ParseSelect(src string) (qlast.Node, error) {
	p := New(src)
	node, err := p.parseSelectOrUnion()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing token %s", p.cur.Type)
	}
	return node, nil
}

// ParseExpr parses a single standalone expression, such as the stored
// text of a schema-declared expression field (`end - start`). Used by
// pkg/resolve when inlining an ExpressionField.
func ParseExpr(src string) (qlast.Expr, error) {
	p := New(src)
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing token %s", p.cur.Type)
	}
	return e, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) at(tt token.TokenType) bool { return p.cur.Type == tt }

func (p *Parser) expect(tt token.TokenType) (token.Token, error) {
	if p.cur.Type != tt {
		return token.Token{}, fmt.Errorf("parser: expected %s, got %s (%q) at line %d",
			tt, p.cur.Type, p.cur.Literal, p.cur.Pos.Line)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

func (p *Parser) span(start token.Position) token.Span {
	return token.Span{Start: start, End: p.cur.Pos}
}

// --- statements ---

func (p *Parser) parseSelectOrUnion() (qlast.Node, error) {
	start := p.cur.Pos
	first, err := p.parseSelectQuery()
	if err != nil {
		return nil, err
	}
	if !p.at(token.UNION) && !p.at(token.INTERSECT) && !p.at(token.EXCEPT) {
		return first, nil
	}

	branches := []*qlast.SelectQuery{first}
	combinator := ""
	for p.at(token.UNION) || p.at(token.INTERSECT) || p.at(token.EXCEPT) {
		kw := p.cur.Type
		p.advance()
		combinator = tokenKeyword(kw)
		if kw == token.UNION && p.at(token.ALL) {
			p.advance()
			combinator = "UNION ALL"
		}
		branch, err := p.parseSelectQuery()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return qlast.NewSelectUnionQuery(p.span(start), combinator, branches), nil
}

func tokenKeyword(tt token.TokenType) string {
	switch tt {
	case token.UNION:
		return "UNION"
	case token.INTERSECT:
		return "INTERSECT"
	case token.EXCEPT:
		return "EXCEPT"
	default:
		return tt.String()
	}
}

func (p *Parser) parseSelectQuery() (*qlast.SelectQuery, error) {
	start := p.cur.Pos
	q := qlast.NewSelectQuery(token.Span{Start: start})

	if p.at(token.WITH) {
		p.advance()
		entries, err := p.parseWithEntries()
		if err != nil {
			return nil, err
		}
		q.With = entries
	}

	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	if p.at(token.DISTINCT) {
		q.Distinct = true
		p.advance()
	}

	selectList, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	q.Select = selectList

	if p.at(token.FROM) {
		p.advance()
		from, err := p.parseJoinChain()
		if err != nil {
			return nil, err
		}
		q.From = from
	}

	if err := p.parseOptionalArrayJoin(q); err != nil {
		return nil, err
	}

	if p.at(token.WHERE) {
		p.advance()
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		q.Where = e
	}

	if p.at(token.GROUP) {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = list
	}

	if p.at(token.HAVING) {
		p.advance()
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		q.Having = e
	}

	if p.at(token.ORDER) {
		p.advance()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		list, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		q.OrderBy = list
	}

	if p.at(token.LIMIT) {
		p.advance()
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		q.Limit = e
		if p.at(token.WITH) {
			p.advance()
			if _, err := p.expect(token.TIES); err != nil {
				return nil, err
			}
			q.LimitWithTies = true
		}
		if p.at(token.OFFSET) {
			p.advance()
			off, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			q.Offset = off
		}
	}

	return q, nil
}

func (p *Parser) parseWithEntries() ([]qlast.WithEntry, error) {
	var entries []qlast.WithEntry
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.AS); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		var entry qlast.WithEntry
		entry.Name = name.Literal
		if p.at(token.SELECT) || p.at(token.WITH) {
			body, err := p.parseSelectOrUnion()
			if err != nil {
				return nil, err
			}
			entry.Kind = qlast.CTETable
			entry.Body = body
		} else {
			body, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			entry.Kind = qlast.CTEColumn
			entry.Body = body
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return entries, nil
}

func (p *Parser) parseSelectList() ([]qlast.Expr, error) {
	var list []qlast.Expr
	for {
		e, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return list, nil
}

func (p *Parser) parseSelectItem() (qlast.Expr, error) {
	start := p.cur.Pos
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if p.at(token.AS) {
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return qlast.NewAlias(p.span(start), nameTok.Literal, e, false), nil
	}
	return e, nil
}

func (p *Parser) parseExprList() ([]qlast.Expr, error) {
	var list []qlast.Expr
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return list, nil
}

func (p *Parser) parseOrderList() ([]qlast.OrderExpr, error) {
	var list []qlast.OrderExpr
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		desc := false
		if p.at(token.ASC) {
			p.advance()
		} else if p.at(token.DESC) {
			desc = true
			p.advance()
		}
		list = append(list, qlast.OrderExpr{Expr: e, Desc: desc})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return list, nil
}

func (p *Parser) parseOptionalArrayJoin(q *qlast.SelectQuery) error {
	// ARRAY is not an ANSI core keyword; dialects register it dynamically
	// via token.Register. Detect it as an IDENT with this literal, case
	// insensitively, immediately followed by JOIN.
	if p.at(token.IDENT) && strings.EqualFold(p.cur.Literal, "array") && p.peek.Type == token.JOIN {
		left := false
		p.advance() // ARRAY
		p.advance() // JOIN
		cols, err := p.parseExprList()
		if err != nil {
			return err
		}
		q.ArrayJoin = &qlast.ArrayJoin{Left: left, Columns: cols}
	}
	return nil
}

// --- FROM / JOIN ---

func (p *Parser) parseJoinChain() (*qlast.JoinExpr, error) {
	first, err := p.parseJoinSource()
	if err != nil {
		return nil, err
	}
	head := first
	cur := first
	for p.isJoinStart() {
		joinType, err := p.parseJoinType()
		if err != nil {
			return nil, err
		}
		next, err := p.parseJoinSource()
		if err != nil {
			return nil, err
		}
		next.JoinType = joinType
		if p.at(token.USING) {
			p.advance()
			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}
			cols, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			next.Using = cols
		}
		if p.at(token.ON) {
			p.advance()
			on, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			next.On = on
		}
		cur.NextJoin = next
		cur = next
	}
	return head, nil
}

func (p *Parser) isJoinStart() bool {
	switch p.cur.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS:
		return true
	default:
		return false
	}
}

func (p *Parser) parseJoinType() (string, error) {
	var parts []string
	for {
		switch p.cur.Type {
		case token.INNER:
			parts = append(parts, "INNER")
			p.advance()
		case token.LEFT:
			parts = append(parts, "LEFT")
			p.advance()
		case token.RIGHT:
			parts = append(parts, "RIGHT")
			p.advance()
		case token.FULL:
			parts = append(parts, "FULL")
			p.advance()
		case token.OUTER:
			parts = append(parts, "OUTER")
			p.advance()
		case token.CROSS:
			parts = append(parts, "CROSS")
			p.advance()
		case token.JOIN:
			parts = append(parts, "JOIN")
			p.advance()
			return strings.Join(parts, " "), nil
		default:
			return "", fmt.Errorf("parser: expected JOIN, got %s", p.cur.Type)
		}
	}
}

func (p *Parser) parseJoinSource() (*qlast.JoinExpr, error) {
	start := p.cur.Pos

	if p.at(token.LPAREN) {
		p.advance()
		inner, err := p.parseSelectOrUnion()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		j := qlast.NewJoinExpr(p.span(start), qlast.TableSubquery, inner)
		p.parseOptionalAlias(j)
		return j, nil
	}

	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	chain := []string{nameTok.Literal}
	for p.at(token.DOT) {
		p.advance()
		part, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		chain = append(chain, part.Literal)
	}

	if p.at(token.LPAREN) {
		p.advance()
		var args []qlast.Expr
		if !p.at(token.RPAREN) {
			args, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		j := qlast.NewJoinExpr(p.span(start), qlast.TableFunctionArgs, qlast.NewField(p.span(start), chain))
		j.TableArgs = args
		p.parseOptionalAlias(j)
		return j, nil
	}

	j := qlast.NewJoinExpr(p.span(start), qlast.TableIdentifier, qlast.NewField(p.span(start), chain))
	p.parseOptionalAlias(j)
	return j, nil
}

func (p *Parser) parseOptionalAlias(j *qlast.JoinExpr) {
	if p.at(token.AS) {
		p.advance()
		if p.at(token.IDENT) {
			j.Alias = p.cur.Literal
			p.advance()
		}
		return
	}
	if p.at(token.IDENT) {
		j.Alias = p.cur.Literal
		p.advance()
	}
}

// --- expressions ---

type precedence int

const (
	precLowest precedence = iota
	precOr
	precAnd
	precNot
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func (p *Parser) parseExpr(min precedence) (qlast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opPrec, ok := p.binaryPrecedence()
		if !ok || opPrec < min {
			return left, nil
		}
		left, err = p.parseBinaryRHS(left, opPrec)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) binaryPrecedence() (precedence, bool) {
	switch p.cur.Type {
	case token.OR:
		return precOr, true
	case token.AND:
		return precAnd, true
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE, token.LIKE, token.IN:
		return precCompare, true
	case token.NOT:
		if p.peek.Type == token.IN || p.peek.Type == token.LIKE {
			return precCompare, true
		}
		return 0, false
	case token.PLUS, token.MINUS, token.DPIPE:
		return precAdditive, true
	case token.STAR, token.SLASH, token.MOD:
		return precMultiplicative, true
	default:
		return 0, false
	}
}

func (p *Parser) parseBinaryRHS(left qlast.Expr, prec precedence) (qlast.Expr, error) {
	start := left.Pos()

	switch p.cur.Type {
	case token.OR:
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		return qlast.NewLogical(p.span(start), qlast.LogicalOr, []qlast.Expr{left, right}), nil
	case token.AND:
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		return qlast.NewLogical(p.span(start), qlast.LogicalAnd, []qlast.Expr{left, right}), nil
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.MOD, token.DPIPE:
		opName := p.cur.Type.String()
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		return qlast.NewCall(p.span(start), opName, []qlast.Expr{left, right}, nil), nil
	case token.NOT:
		p.advance()
		if p.at(token.IN) {
			p.advance()
			op := qlast.CompareNotIn
			if p.atCohortKeyword() {
				p.advance()
				op = qlast.CompareNotInCohort
			}
			right, err := p.parseExpr(prec + 1)
			if err != nil {
				return nil, err
			}
			return qlast.NewCompareOperation(p.span(start), op, left, right), nil
		}
		if _, err := p.expect(token.LIKE); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		return qlast.NewCompareOperation(p.span(start), qlast.CompareNotLike, left, right), nil
	default:
		op, err := p.compareOp()
		if err != nil {
			return nil, err
		}
		p.advance()
		if op == qlast.CompareIn && p.atCohortKeyword() {
			p.advance()
			op = qlast.CompareInCohort
		}
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		return qlast.NewCompareOperation(p.span(start), op, left, right), nil
	}
}

// atCohortKeyword detects the soft keyword COHORT immediately after IN
// / NOT IN, the same IDENT-literal-match technique parseOptionalArrayJoin
// uses for ARRAY JOIN: COHORT is not an ANSI core keyword.
func (p *Parser) atCohortKeyword() bool {
	return p.at(token.IDENT) && strings.EqualFold(p.cur.Literal, "cohort")
}

func (p *Parser) compareOp() (qlast.CompareOp, error) {
	switch p.cur.Type {
	case token.EQ:
		return qlast.CompareEq, nil
	case token.NE:
		return qlast.CompareNotEq, nil
	case token.LT:
		return qlast.CompareLt, nil
	case token.GT:
		return qlast.CompareGt, nil
	case token.LE:
		return qlast.CompareLtEq, nil
	case token.GE:
		return qlast.CompareGtEq, nil
	case token.LIKE:
		return qlast.CompareLike, nil
	case token.IN:
		return qlast.CompareIn, nil
	default:
		return 0, fmt.Errorf("parser: unexpected comparison operator %s", p.cur.Type)
	}
}

func (p *Parser) parseUnary() (qlast.Expr, error) {
	start := p.cur.Pos
	if p.at(token.NOT) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return qlast.NewLogical(p.span(start), qlast.LogicalNot, []qlast.Expr{operand}), nil
	}
	if p.at(token.MINUS) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return qlast.NewCall(p.span(start), "negate", []qlast.Expr{operand}, nil), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (qlast.Expr, error) {
	start := p.cur.Pos
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			e = qlast.NewAccess(p.span(start), qlast.AccessArray, e, idx)
		case token.ARROW:
			p.advance()
			body, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			params := lambdaParamsFrom(e)
			e = qlast.NewLambda(p.span(start), params, body)
		default:
			return e, nil
		}
	}
}

// lambdaParamsFrom extracts parameter names from whatever the parser
// built on the left of `->`: a single bare identifier, or a tuple
// literal of bare identifiers (`(x, y) -> ...`).
func lambdaParamsFrom(e qlast.Expr) []string {
	switch v := e.(type) {
	case *qlast.Field:
		if len(v.Chain) == 1 {
			return []string{v.Chain[0]}
		}
	case *qlast.Constant:
		if names, ok := v.Value.([]string); ok {
			return names
		}
	}
	return nil
}

func (p *Parser) parsePrimary() (qlast.Expr, error) {
	start := p.cur.Pos

	switch p.cur.Type {
	case token.NUMBER:
		lit := p.cur.Literal
		p.advance()
		if strings.ContainsAny(lit, ".eE") {
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, err
			}
			return qlast.NewConstant(p.span(start), v), nil
		}
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, err
		}
		return qlast.NewConstant(p.span(start), v), nil
	case token.STRING:
		lit := p.cur.Literal
		p.advance()
		return qlast.NewConstant(p.span(start), lit), nil
	case token.TRUE:
		p.advance()
		return qlast.NewConstant(p.span(start), true), nil
	case token.FALSE:
		p.advance()
		return qlast.NewConstant(p.span(start), false), nil
	case token.NULL:
		p.advance()
		return qlast.NewConstant(p.span(start), nil), nil
	case token.STAR:
		p.advance()
		return qlast.NewAsterisk(p.span(start), ""), nil
	case token.LPAREN:
		return p.parseParenOrTuple(start)
	case token.LBRACKET:
		return p.parseArrayLiteral(start)
	case token.IDENT:
		return p.parseIdentOrCall(start)
	default:
		return nil, fmt.Errorf("parser: unexpected token %s (%q) at line %d", p.cur.Type, p.cur.Literal, p.cur.Pos.Line)
	}
}

func (p *Parser) parseParenOrTuple(start token.Position) (qlast.Expr, error) {
	p.advance() // consume '('
	if p.at(token.SELECT) || p.at(token.WITH) {
		inner, err := p.parseSelectOrUnion()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		expr, ok := inner.(qlast.Expr)
		if !ok {
			return nil, fmt.Errorf("parser: subquery is not a valid expression")
		}
		return expr, nil
	}

	first, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}

	items := []qlast.Expr{first}
	for p.at(token.COMMA) {
		p.advance()
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if allBareIdents(items) {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.(*qlast.Field).Chain[0]
		}
		return qlast.NewConstant(p.span(start), names), nil
	}

	return qlast.NewCall(p.span(start), "tuple", items, nil), nil
}

func allBareIdents(items []qlast.Expr) bool {
	for _, it := range items {
		f, ok := it.(*qlast.Field)
		if !ok || len(f.Chain) != 1 {
			return false
		}
	}
	return true
}

func (p *Parser) parseArrayLiteral(start token.Position) (qlast.Expr, error) {
	p.advance()
	var items []qlast.Expr
	if !p.at(token.RBRACKET) {
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		items = list
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return qlast.NewCall(p.span(start), "array", items, nil), nil
}

func (p *Parser) parseIdentOrCall(start token.Position) (qlast.Expr, error) {
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	chain := []string{first.Literal}
	for p.at(token.DOT) {
		p.advance()
		if p.at(token.STAR) {
			p.advance()
			return qlast.NewAsterisk(p.span(start), strings.Join(chain, ".")), nil
		}
		if p.at(token.NUMBER) {
			idxTok := p.cur
			p.advance()
			idx, err := strconv.Atoi(idxTok.Literal)
			if err != nil {
				return nil, err
			}
			base := qlast.Expr(qlast.NewField(p.span(start), chain))
			idxSpan := token.Span{Start: idxTok.Pos, End: idxTok.Pos}
			return qlast.NewAccess(p.span(start), qlast.AccessTuple, base, qlast.NewConstant(idxSpan, idx)), nil
		}
		part, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		chain = append(chain, part.Literal)
	}

	if p.at(token.LPAREN) {
		return p.parseCallTail(start, strings.Join(chain, "."))
	}

	return qlast.NewField(p.span(start), chain), nil
}

func (p *Parser) parseCallTail(start token.Position, name string) (qlast.Expr, error) {
	p.advance() // '('
	distinct := false
	if p.at(token.DISTINCT) {
		distinct = true
		p.advance()
	}
	var args []qlast.Expr
	if !p.at(token.RPAREN) {
		var err error
		args, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	// Parametrised aggregate call: name(params)(args).
	if p.at(token.LPAREN) {
		p.advance()
		var callArgs []qlast.Expr
		if !p.at(token.RPAREN) {
			var err error
			callArgs, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		call := qlast.NewCall(p.span(start), name, callArgs, args)
		call.Distinct = distinct
		return call, nil
	}

	call := qlast.NewCall(p.span(start), name, args, nil)
	call.Distinct = distinct
	return call, nil
}
