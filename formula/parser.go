// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xlcore/xlcore"
)

// MaxFormulaLength is the longest formula source this parser accepts,
// per §4.7.
const MaxFormulaLength = 8192

// ParseError reports a formula that could not be parsed.
type ParseError struct {
	Pos     int
	Detail  string
	Suggestions []string
}

func (e *ParseError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("formula: parse error at %d: %s (did you mean: %s?)", e.Pos, e.Detail, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("formula: parse error at %d: %s", e.Pos, e.Detail)
}

// token kinds produced by the lexer.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent  // bare word: function name, TRUE/FALSE, AND/OR, or a cell/range ref candidate
	tokOp     // + - * / ^ & = <> < <= > >=
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokBang // !
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer tokenizes formula source. It is deliberately simple: identifiers
// (which include cell references, quoted sheet names joined with !, and
// function names) are split on operator/punctuation boundaries and
// re-assembled by the parser's primary-expression production.
type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: []rune(src)} }

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) next() token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case c == ':':
		l.pos++
		return token{kind: tokColon, text: ":", pos: start}
	case c == '!':
		l.pos++
		return token{kind: tokBang, text: "!", pos: start}
	case c == '"':
		return l.lexString(start)
	case c == '\'':
		return l.lexQuotedSheet(start)
	case c == '+' || c == '-' || c == '*' || c == '/' || c == '^' || c == '&':
		l.pos++
		return token{kind: tokOp, text: string(c), pos: start}
	case c == '=':
		l.pos++
		return token{kind: tokOp, text: "=", pos: start}
	case c == '<':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: "<=", pos: start}
		}
		if l.peekRune() == '>' {
			l.pos++
			return token{kind: tokOp, text: "<>", pos: start}
		}
		return token{kind: tokOp, text: "<", pos: start}
	case c == '>':
		l.pos++
		if l.peekRune() == '=' {
			l.pos++
			return token{kind: tokOp, text: ">=", pos: start}
		}
		return token{kind: tokOp, text: ">", pos: start}
	case c >= '0' && c <= '9' || c == '.':
		return l.lexNumber(start)
	default:
		return l.lexIdent(start)
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
}

func (l *lexer) lexString(start int) token {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		if l.src[l.pos] == '"' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				b.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}
		}
		b.WriteRune(l.src[l.pos])
		l.pos++
	}
	return token{kind: tokString, text: b.String(), pos: start}
}

// lexQuotedSheet lexes a 'Quoted Sheet Name' token, including the
// trailing ! if present, returning it as an ident so the parser's
// primary production can split sheet from address uniformly.
func (l *lexer) lexQuotedSheet(start int) token {
	l.pos++
	var b strings.Builder
	b.WriteByte('\'')
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\'' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				b.WriteString("''")
				l.pos += 2
				continue
			}
			l.pos++
			b.WriteByte('\'')
			break
		}
		b.WriteRune(l.src[l.pos])
		l.pos++
	}
	return token{kind: tokIdent, text: b.String(), pos: start}
}

func (l *lexer) lexNumber(start int) token {
	for l.pos < len(l.src) && (l.src[l.pos] >= '0' && l.src[l.pos] <= '9' || l.src[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		digitsStart := l.pos
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		if l.pos == digitsStart {
			l.pos = save
		}
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), pos: start}
}

func (l *lexer) lexIdent(start int) token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '$' || c == '.' {
			l.pos++
			continue
		}
		break
	}
	if l.pos == start {
		l.pos++ // consume one unrecognized rune to make progress
	}
	return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}
}

// parser is the recursive-descent parser driving §4.7's grammar.
type parser struct {
	lex  *lexer
	tok  token
	next token
	src  string
}

// Parse parses formula source into an Expr with PolyRef/PolyRange nodes
// still unresolved. The leading "=" is optional; empty input and input
// over MaxFormulaLength are rejected.
func Parse(source string) (Expr, error) {
	if len(source) > MaxFormulaLength {
		return nil, &ParseError{Detail: "formula exceeds maximum length"}
	}
	trimmed := strings.TrimPrefix(source, "=")
	if strings.TrimSpace(trimmed) == "" {
		return nil, &ParseError{Detail: "empty formula"}
	}
	p := &parser{lex: newLexer(trimmed), src: trimmed}
	p.advance()
	p.advance()
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &ParseError{Pos: p.tok.pos, Detail: "unexpected trailing input"}
	}
	return expr, nil
}

func (p *parser) advance() {
	p.tok = p.next
	p.next = p.lex.next()
}

func (p *parser) isIdent(s string) bool {
	return p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, s)
}

// parseOr: level 1, logical OR via the reserved name "OR" used infix is
// NOT Excel syntax (OR is itself a function); §4.7 lists it as the
// lowest-precedence binary level solely to fix this grammar's relative
// ordering against AND/comparison when OR/AND appear as function calls
// feeding into comparisons. Since this grammar has no infix "OR"/"AND"
// token, parseOr simply delegates to parseComparison; the
// OR/AND *functions* are registered FunctionSpecs handled by
// parsePrimary's call production.
func (p *parser) parseOr() (Expr, error) { return p.parseComparison() }

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && isComparisonOp(p.tok.text) {
		op := p.tok.text
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return BinOp{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && p.tok.text == "&" {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = BinOp{Op: "&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseExponent: right-associative "^".
func (p *parser) parseExponent() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && p.tok.text == "^" {
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return BinOp{Op: "^", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryMinus{X: x}, nil
	}
	if p.tok.kind == tokOp && p.tok.text == "+" {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		// A bare digit run followed by ":" is a full-row endpoint
		// ("1:1"), not a number literal; the lexer has no way to tell
		// these apart since both are digit runs, so parsePrimary checks
		// the lookahead itself before committing to either reading.
		if p.next.kind == tokColon {
			return p.parseReferenceOrRange("")
		}
		text := p.tok.text
		p.advance()
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &ParseError{Pos: p.tok.pos, Detail: "invalid number"}
		}
		return Lit{Value: xlcore.NumberFromFloat(f)}, nil
	case tokString:
		text := p.tok.text
		p.advance()
		return Lit{Value: xlcore.Text(text)}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, &ParseError{Pos: p.tok.pos, Detail: "unbalanced parenthesis"}
		}
		p.advance()
		return inner, nil
	case tokIdent:
		return p.parseIdentPrimary()
	default:
		return nil, &ParseError{Pos: p.tok.pos, Detail: "unexpected token"}
	}
}

func (p *parser) parseIdentPrimary() (Expr, error) {
	if p.isIdent("TRUE") {
		p.advance()
		return Lit{Value: xlcore.Bool(true)}, nil
	}
	if p.isIdent("FALSE") {
		p.advance()
		return Lit{Value: xlcore.Bool(false)}, nil
	}
	// function call: ident immediately followed by '('
	if p.next.kind == tokLParen {
		return p.parseCall()
	}
	return p.parseReferenceOrRange("")
}

// parseReferenceOrRange consumes [Sheet!]Ref[:Ref] starting at the
// current ident token. sheetPrefix, if non-empty, was already consumed
// by the caller (used when a quoted-sheet ident was already read).
func (p *parser) parseReferenceOrRange(sheetPrefix string) (Expr, error) {
	sheet := sheetPrefix
	hasSheet := sheetPrefix != ""
	text := p.tok.text
	if strings.HasPrefix(text, "'") {
		sheet = strings.ReplaceAll(strings.Trim(text, "'"), "''", "'")
		hasSheet = true
		p.advance()
		if p.tok.kind != tokBang {
			return nil, &ParseError{Pos: p.tok.pos, Detail: "expected ! after quoted sheet name"}
		}
		p.advance()
		text = p.tok.text
	} else if p.next.kind == tokBang {
		sheet = text
		hasSheet = true
		p.advance()
		p.advance()
		text = p.tok.text
	}
	// A full-column ("A") or full-row ("1") endpoint only parses as an
	// ARef when paired with its mate across a colon; try the range form
	// first by reconstructing the original "left:right" text and handing
	// it to xlcore.ParseCellRange, which already knows how to saturate
	// the unbounded axis (ref.go's isFullColumnToken/isFullRowToken). A
	// plain cell reference falls through to parseRefToken below.
	pos := p.tok.pos
	firstText := text
	p.advance()
	if p.tok.kind == tokColon {
		p.advance()
		secondText := p.tok.text
		p.advance()
		rng, err := xlcore.ParseCellRange(firstText + ":" + secondText)
		if err != nil {
			return nil, &ParseError{Pos: pos, Detail: err.Error()}
		}
		return PolyRange{Sheet: sheet, HasSheet: hasSheet, Range: rng}, nil
	}
	first, err := parseRefToken(firstText)
	if err != nil {
		return nil, &ParseError{Pos: pos, Detail: err.Error()}
	}
	return PolyRef{Sheet: sheet, HasSheet: hasSheet, Ref: first}, nil
}

func parseRefToken(text string) (xlcore.ARef, error) {
	return xlcore.ParseARef(text)
}

func (p *parser) parseCall() (Expr, error) {
	name := p.tok.text
	p.advance() // consume ident
	p.advance() // consume '('
	var args []Arg
	for p.tok.kind != tokRParen {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.tok.kind != tokRParen {
		return nil, &ParseError{Pos: p.tok.pos, Detail: "unbalanced parenthesis in call to " + name}
	}
	p.advance()
	return buildCall(name, args)
}

// parseArg parses one call argument as a full expression and classifies
// a bare range result (Sheet!A1:B2 / A:A) as a range argument; this lets a
// single slot accept either shape, matching §4.7's "driven by the
// FunctionSpec's shape descriptor" note while keeping the grammar
// context-free (the shape is validated after parsing, in buildCall /
// Typecheck).
func (p *parser) parseArg() (Arg, error) {
	expr, err := p.parseOr()
	if err != nil {
		return Arg{}, err
	}
	if rng, ok := expr.(PolyRange); ok {
		return Arg{Kind: ArgRange, Range: RangeLocation{Sheet: rng.Sheet, CrossSheet: rng.HasSheet, Range: rng.Range}}, nil
	}
	return Arg{Kind: ArgExpr, Expr: expr}, nil
}

// buildCall looks up name in the Registry (aggregates get their own
// Aggregate node; everything else becomes a Call) and validates arity
// against the spec's ArgShape.
func buildCall(name string, args []Arg) (Expr, error) {
	upper := strings.ToUpper(name)
	if isAggregateName(upper) {
		return buildAggregate(upper, args)
	}
	spec, ok := Lookup(upper)
	if !ok {
		suggestions := suggest(upper, Names(), 3, 3)
		return nil, &ParseError{Detail: fmt.Sprintf("unknown function %s", name), Suggestions: suggestions}
	}
	if err := validateShape(spec, args); err != nil {
		return nil, err
	}
	return Call{Spec: spec, Args: args}, nil
}

func validateShape(spec *FunctionSpec, args []Arg) error {
	if len(args) < spec.Shape.Min {
		return &ParseError{Detail: fmt.Sprintf("%s expects at least %d arguments, got %d", spec.Name, spec.Shape.Min, len(args))}
	}
	if spec.Shape.Max >= 0 && len(args) > spec.Shape.Max {
		return &ParseError{Detail: fmt.Sprintf("%s expects at most %d arguments, got %d", spec.Name, spec.Shape.Max, len(args))}
	}
	if spec.Shape.ExprOrRange {
		return nil
	}
	for i, a := range args {
		var expected ArgKind
		if i < len(spec.Shape.Kinds) {
			expected = spec.Shape.Kinds[i]
		} else {
			expected = spec.Shape.VariadicKind
		}
		if !spec.AcceptsRanges && a.Kind == ArgRange && expected == ArgExpr {
			return &ParseError{Detail: fmt.Sprintf("%s does not accept a range in argument %d", spec.Name, i+1)}
		}
	}
	return nil
}

var aggregateNames = map[string]bool{
	"SUM": true, "COUNT": true, "COUNTA": true, "COUNTBLANK": true,
	"AVERAGE": true, "MIN": true, "MAX": true,
	"SUMIF": true, "COUNTIF": true, "AVERAGEIF": true,
	"SUMIFS": true, "COUNTIFS": true, "AVERAGEIFS": true,
}

func isAggregateName(name string) bool { return aggregateNames[name] }

func buildAggregate(name string, args []Arg) (Expr, error) {
	switch name {
	case "SUM", "COUNT", "COUNTA", "COUNTBLANK", "AVERAGE", "MIN", "MAX":
		if len(args) == 0 {
			return nil, &ParseError{Detail: name + " requires at least 1 argument"}
		}
		locs := make([]RangeLocation, len(args))
		for i := range args {
			loc, err := argToRangeLocation(args, i)
			if err != nil {
				return nil, err
			}
			locs[i] = loc
		}
		return Aggregate{Name: name, Loc: locs[0], Locs: locs}, nil
	case "SUMIF", "COUNTIF", "AVERAGEIF":
		if len(args) < 2 {
			return nil, &ParseError{Detail: name + " requires at least 2 arguments"}
		}
		loc, err := argToRangeLocation(args, 0)
		if err != nil {
			return nil, err
		}
		if args[1].Kind != ArgExpr {
			return nil, &ParseError{Detail: name + " criteria must be an expression"}
		}
		agg := Aggregate{Name: name, Loc: loc, Criteria: []Expr{args[1].Expr}}
		if len(args) >= 3 {
			avgLoc, err := argToRangeLocation(args, 2)
			if err != nil {
				return nil, err
			}
			agg.AvgRange = &avgLoc
		}
		return agg, nil
	case "SUMIFS", "COUNTIFS", "AVERAGEIFS":
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, &ParseError{Detail: name + " requires an odd number of arguments >= 3"}
		}
		targetLoc, err := argToRangeLocation(args, 0)
		if err != nil {
			return nil, err
		}
		agg := Aggregate{Name: name, Loc: targetLoc}
		for i := 1; i+1 < len(args); i += 2 {
			critLoc, err := argToRangeLocation(args, i)
			if err != nil {
				return nil, err
			}
			if args[i+1].Kind != ArgExpr {
				return nil, &ParseError{Detail: name + " criteria must be an expression"}
			}
			agg.CritRanges = append(agg.CritRanges, critLoc)
			agg.Criteria = append(agg.Criteria, args[i+1].Expr)
		}
		return agg, nil
	}
	return nil, &ParseError{Detail: "unknown aggregate " + name}
}

func argToRangeLocation(args []Arg, i int) (RangeLocation, error) {
	if i >= len(args) {
		return RangeLocation{}, &ParseError{Detail: "missing range argument"}
	}
	a := args[i]
	if a.Kind == ArgRange {
		return a.Range, nil
	}
	if ref, ok := a.Expr.(PolyRef); ok {
		return RangeLocation{Sheet: ref.Sheet, CrossSheet: ref.HasSheet, Range: xlcore.CellRange{Start: ref.Ref, End: ref.Ref}}, nil
	}
	return RangeLocation{}, &ParseError{Detail: "expected a range or cell reference"}
}
