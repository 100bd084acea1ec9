// Package search implements the field-scoped outline query language and its
// evaluation against a snapshot (spec.md §4.9, C9): tokenizer, recursive
// descent parser, and the match/visible/partial edge-set computation used to
// drive search-mode pane filtering.
package search

import (
	"strings"
	"unicode"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/snapshot"
)

// ParseError carries the offending query range so a caller can highlight it
// (spec.md §7: SearchParseError is returned in-band, never thrown).
type ParseError struct {
	Message string
	Start   int
	End     int
}

// Field names a field-scoped clause may target.
type Field string

const (
	FieldText Field = "text"
	FieldTag  Field = "tag"
	FieldPath Field = "path"
	FieldType Field = "type"
)

// DefaultFields is the accepted field set used when RunSearch is called
// with a nil/empty fields list, matching pkg/config.DefaultConfig's
// Search.Fields (spec.md §4.9 leaves the exact set open; this is where a
// caller that hasn't loaded a config still gets a sensible default).
var DefaultFields = []string{"text", "tag", "path", "type"}

// fieldSet builds the lowercased lookup table isKnownField consults,
// falling back to DefaultFields when fields is empty so a caller that
// never loaded pkg/config.SearchConfig still gets the built-in grammar.
func fieldSet(fields []string) map[string]bool {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[strings.ToLower(f)] = true
	}
	return set
}

// ExprKind discriminates the node kinds of a parsed query expression.
type ExprKind int

const (
	ExprAnd ExprKind = iota
	ExprOr
	ExprNot
	ExprTerm
)

// Expr is a node of the parsed query expression tree. Term nodes carry
// Field (empty for a bare token) and Value; And/Or/Not carry Children.
type Expr struct {
	Kind     ExprKind
	Field    Field
	Value    string
	Children []*Expr
}

// evaluate reports whether text/tags/path satisfy e. text is the node's
// plain text already lowercased by the caller's cache; matching is always
// case-insensitive.
func (e *Expr) evaluate(ctx *evalContext) bool {
	switch e.Kind {
	case ExprAnd:
		for _, c := range e.Children {
			if !c.evaluate(ctx) {
				return false
			}
		}
		return true
	case ExprOr:
		for _, c := range e.Children {
			if c.evaluate(ctx) {
				return true
			}
		}
		return false
	case ExprNot:
		return !e.Children[0].evaluate(ctx)
	case ExprTerm:
		return ctx.matchTerm(e)
	default:
		return false
	}
}

type evalContext struct {
	text string
	tags []string
	path string
	typ  string
}

func (c *evalContext) matchTerm(e *Expr) bool {
	needle := strings.ToLower(e.Value)
	switch e.Field {
	case FieldTag:
		for _, t := range c.tags {
			if strings.ToLower(t) == needle {
				return true
			}
		}
		return false
	case FieldPath:
		return strings.Contains(strings.ToLower(c.path), needle)
	case FieldType:
		return strings.ToLower(c.typ) == needle
	case FieldText, "":
		return strings.Contains(c.text, needle)
	default:
		return false
	}
}

// --- tokenizer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokQuoted
	tokOr
	tokLParen
	tokRParen
	tokMinus
	tokColon
)

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func tokenize(query string) ([]token, *ParseError) {
	runes := []rune(query)
	var tokens []token
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, start: i, end: i + 1})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, start: i, end: i + 1})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus, start: i, end: i + 1})
			i++
		case r == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '"' {
					closed = true
					i++
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, &ParseError{Message: "unterminated quoted string", Start: start, End: i}
			}
			tokens = append(tokens, token{kind: tokQuoted, text: sb.String(), start: start, end: i})
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' && runes[i] != '"' {
				i++
			}
			word := string(runes[start:i])
			if word == "OR" {
				tokens = append(tokens, token{kind: tokOr, text: word, start: start, end: i})
				continue
			}
			// A bare colon inside a word splits into field:value at the
			// first colon, letting the parser build a field-scoped term.
			if idx := strings.IndexRune(word, ':'); idx > 0 {
				tokens = append(tokens, token{kind: tokWord, text: word[:idx], start: start, end: start + idx})
				tokens = append(tokens, token{kind: tokColon, start: start + idx, end: start + idx + 1})
				rest := word[idx+1:]
				if rest != "" {
					tokens = append(tokens, token{kind: tokWord, text: rest, start: start + idx + 1, end: i})
				}
				continue
			}
			tokens = append(tokens, token{kind: tokWord, text: word, start: start, end: i})
		}
	}
	tokens = append(tokens, token{kind: tokEOF, start: len(runes), end: len(runes)})
	return tokens, nil
}

// --- recursive descent parser ---
//
// expr    := orExpr
// orExpr  := andExpr (OR andExpr)*
// andExpr := unary+
// unary   := '-' unary | '(' expr ')' | term
// term    := [field ':'] (word | quoted)

type parser struct {
	tokens []token
	pos    int
	fields map[string]bool
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func parseQuery(query string, fields []string) (*Expr, *ParseError) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &Expr{Kind: ExprAnd}, nil
	}

	tokens, tErr := tokenize(query)
	if tErr != nil {
		return nil, tErr
	}
	p := &parser{tokens: tokens, fields: fieldSet(fields)}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		t := p.peek()
		return nil, &ParseError{Message: "unexpected token '" + t.text + "'", Start: t.start, End: t.end}
	}
	return expr, nil
}

func (p *parser) parseOr() (*Expr, *ParseError) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Expr{first}
	for p.peek().kind == tokOr {
		p.next()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Expr{Kind: ExprOr, Children: children}, nil
}

func (p *parser) parseAnd() (*Expr, *ParseError) {
	var children []*Expr
	for {
		k := p.peek().kind
		if k == tokEOF || k == tokOr || k == tokRParen {
			break
		}
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 0 {
		t := p.peek()
		return nil, &ParseError{Message: "expected a clause", Start: t.start, End: t.end}
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Expr{Kind: ExprAnd, Children: children}, nil
}

func (p *parser) parseUnary() (*Expr, *ParseError) {
	if p.peek().kind == tokMinus {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprNot, Children: []*Expr{inner}}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			t := p.peek()
			return nil, &ParseError{Message: "expected ')'", Start: t.start, End: t.end}
		}
		p.next()
		return inner, nil
	}
	return p.parseTerm()
}

func (p *parser) parseTerm() (*Expr, *ParseError) {
	t := p.peek()
	if t.kind != tokWord && t.kind != tokQuoted {
		return nil, &ParseError{Message: "expected a search term", Start: t.start, End: t.end}
	}

	if t.kind == tokWord && p.tokens[p.pos+1].kind == tokColon && p.isKnownField(t.text) {
		field := Field(strings.ToLower(t.text))
		p.next() // field word
		p.next() // colon
		valTok := p.peek()
		if valTok.kind != tokWord && valTok.kind != tokQuoted {
			return nil, &ParseError{Message: "expected a value after '" + string(field) + ":'", Start: valTok.start, End: valTok.end}
		}
		p.next()
		return &Expr{Kind: ExprTerm, Field: field, Value: valTok.text}, nil
	}

	p.next()
	return &Expr{Kind: ExprTerm, Value: t.text}, nil
}

// isKnownField reports whether name is one of the field:value clause names
// this parse accepted (pkg/config.SearchConfig.Fields, or DefaultFields
// when none was supplied to RunSearch).
func (p *parser) isKnownField(name string) bool {
	return p.fields[strings.ToLower(name)]
}

// OutlineSearchExecution is the result of RunSearch (spec.md §4.9).
type OutlineSearchExecution struct {
	Query                   string
	Expression              *Expr
	Errors                  []ParseError
	MatchedEdgeIDs          map[ids.EdgeID]bool
	VisibleEdgeIDs          map[ids.EdgeID]bool
	PartiallyVisibleEdgeIds map[ids.EdgeID]bool
}

// RunSearch parses query and evaluates it against snap, restricted to the
// subtree rooted at scopeRootEdgeID (nil scopes to the whole document).
// fields is the accepted field:value clause name set — pass
// cfg.Search.Fields from a loaded pkg/config.Config, or nil/empty to fall
// back to DefaultFields.
func RunSearch(snap *snapshot.Snapshot, query string, scopeRootEdgeID *ids.EdgeID, fields []string) *OutlineSearchExecution {
	result := &OutlineSearchExecution{
		Query:                   query,
		MatchedEdgeIDs:          map[ids.EdgeID]bool{},
		VisibleEdgeIDs:          map[ids.EdgeID]bool{},
		PartiallyVisibleEdgeIds: map[ids.EdgeID]bool{},
	}

	expr, parseErr := parseQuery(query, fields)
	if parseErr != nil {
		result.Errors = []ParseError{*parseErr}
		return result
	}
	result.Expression = expr

	var scopeEdges []ids.EdgeID
	if scopeRootEdgeID != nil {
		scopeEdges = snap.ChildEdgeIdsByParentEdge[*scopeRootEdgeID]
	} else {
		scopeEdges = snap.RootEdgeIDs
	}

	parentOf := map[ids.EdgeID]ids.EdgeID{}

	var walk func(edgeID ids.EdgeID, parent *ids.EdgeID)
	walk = func(edgeID ids.EdgeID, parent *ids.EdgeID) {
		if parent != nil {
			parentOf[edgeID] = *parent
		}
		e := snap.Edges[edgeID]
		if e == nil {
			return
		}
		n := snap.Nodes[e.ChildNodeID]
		ctx := &evalContext{}
		if n != nil {
			if n.Text != nil {
				ctx.text = strings.ToLower(n.Text.PlainText())
			}
			ctx.tags = n.Metadata.Tags
		}
		if expr.evaluate(ctx) {
			result.MatchedEdgeIDs[edgeID] = true
		}
		for _, c := range snap.ChildEdgeIdsByParentEdge[edgeID] {
			self := edgeID
			walk(c, &self)
		}
	}
	for _, e := range scopeEdges {
		walk(e, nil)
	}

	for edgeID := range result.MatchedEdgeIDs {
		result.VisibleEdgeIDs[edgeID] = true
		cur := edgeID
		for {
			p, ok := parentOf[cur]
			if !ok {
				break
			}
			result.VisibleEdgeIDs[p] = true
			cur = p
		}
	}
	for edgeID := range result.VisibleEdgeIDs {
		if !result.MatchedEdgeIDs[edgeID] {
			result.PartiallyVisibleEdgeIds[edgeID] = true
		}
	}

	return result
}
