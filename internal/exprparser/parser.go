// Package exprparser implements the guard-expression grammar of spec
// §4.2: recursive-descent over the or/and/eq/cmp/unary/atom precedence
// ladder, each level a direct transcription of the spec's BNF.
//
// Grounded on github.com/funvibe/funxy/internal/parser/processor.go and
// expressions_core.go: a Parser cursor holding curToken/peekToken with
// nextToken advancing both, and a ParseError slice collected as parsing
// proceeds rather than panicking on the first problem.
package exprparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/archctl/internal/exprast"
	"github.com/funvibe/archctl/internal/exprlex"
	"github.com/funvibe/archctl/internal/token"
)

// ParseError carries the offending source slice for diagnostics, per
// spec §4.2/§7.
type ParseError struct {
	Message string
	Slice   string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expression parse error at %d:%d: %s (near %q)", e.Line, e.Column, e.Message, e.Slice)
}

// Parser turns guard-expression source into an exprast.Node tree.
type Parser struct {
	l    *exprlex.Lexer
	src  string
	cur  token.Token
	peek token.Token
	errs []error
}

// New constructs a Parser over src.
func New(src string) *Parser {
	p := &Parser{l: exprlex.New(src), src: src}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Slice:   p.cur.Lexeme,
		Line:    p.cur.Line,
		Column:  p.cur.Column,
	})
}

// Parse parses a complete expression and returns the AST root. Returns
// a joined error built from every ParseError collected along the way.
func Parse(src string) (exprast.Node, error) {
	p := New(src)
	node := p.parseOr()
	if p.cur.Type != token.EOF {
		p.errorf("unexpected trailing token %s", p.cur.Type)
	}
	if len(p.errs) > 0 {
		msgs := make([]string, len(p.errs))
		for i, e := range p.errs {
			msgs[i] = e.Error()
		}
		return node, fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return node, nil
}

// or := and ('||' and)*
func (p *Parser) parseOr() exprast.Node {
	left := p.parseAnd()
	for p.cur.Type == token.OR {
		tok := p.cur
		p.next()
		right := p.parseAnd()
		left = &exprast.Binary{Token: tok, Op: exprast.OpOr, Left: left, Right: right}
	}
	return left
}

// and := eq ('&&' eq)*
func (p *Parser) parseAnd() exprast.Node {
	left := p.parseEq()
	for p.cur.Type == token.AND {
		tok := p.cur
		p.next()
		right := p.parseEq()
		left = &exprast.Binary{Token: tok, Op: exprast.OpAnd, Left: left, Right: right}
	}
	return left
}

// eq := cmp (('=='|'!=') cmp)*
func (p *Parser) parseEq() exprast.Node {
	left := p.parseCmp()
	for p.cur.Type == token.EQ || p.cur.Type == token.NOT_EQ {
		tok := p.cur
		op := exprast.OpEq
		if tok.Type == token.NOT_EQ {
			op = exprast.OpNotEq
		}
		p.next()
		right := p.parseCmp()
		left = &exprast.Binary{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

// cmp := unary ('contains' unary)?
// contains is explicitly non-associative: a second 'contains' in the
// same cmp position is a parse error (spec §4.2 "chaining is a parse
// error").
func (p *Parser) parseCmp() exprast.Node {
	left := p.parseUnary()
	if p.cur.Type == token.CONTAINS {
		tok := p.cur
		p.next()
		right := p.parseUnary()
		node := &exprast.Binary{Token: tok, Op: exprast.OpContains, Left: left, Right: right}
		if p.cur.Type == token.CONTAINS {
			p.errorf("'contains' is non-associative; chained 'contains' is not allowed")
			p.next()
			p.parseUnary()
		}
		return node
	}
	return left
}

// unary := '!' unary | atom
func (p *Parser) parseUnary() exprast.Node {
	if p.cur.Type == token.BANG {
		tok := p.cur
		p.next()
		if p.cur.Type == token.BANG {
			// '!!x' is legal (double negation); '!==' style sequences are
			// caught at the eq level since BANG+EQ never forms a single
			// token in the lexer.
		}
		child := p.parseUnary()
		return &exprast.Unary{Token: tok, Op: exprast.OpNot, Child: child}
	}
	return p.parseAtom()
}

// atom := literal | variable | '(' expr ')'
func (p *Parser) parseAtom() exprast.Node {
	switch p.cur.Type {
	case token.LPAREN:
		p.next()
		inner := p.parseOr()
		if p.cur.Type != token.RPAREN {
			p.errorf("unmatched parenthesis")
			return inner
		}
		p.next()
		markIsolated(inner)
		return inner
	case token.VARIABLE:
		tok := p.cur
		p.next()
		return &exprast.Variable{Token: tok, Name: tok.Literal}
	case token.STRING:
		tok := p.cur
		p.next()
		return &exprast.Literal{Token: tok, Kind: exprast.LitString, Raw: tok.Lexeme, Str: tok.Literal}
	case token.BOOLEAN:
		tok := p.cur
		p.next()
		b, _ := strconv.ParseBool(tok.Lexeme)
		return &exprast.Literal{Token: tok, Kind: exprast.LitBool, Raw: tok.Lexeme, Bool: b}
	case token.INT:
		tok := p.cur
		p.next()
		i, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorf("malformed integer literal %q", tok.Lexeme)
		}
		return &exprast.Literal{Token: tok, Kind: exprast.LitInt, Raw: tok.Lexeme, Int: i}
	case token.LBRACKET:
		return p.parseListLiteral()
	default:
		p.errorf("unexpected token %s", p.cur.Type)
		node := &exprast.Literal{Token: p.cur, Kind: exprast.LitString}
		p.next()
		return node
	}
}

// markIsolated sets Isolated on the outermost Binary of a parenthesized
// group so the printer can re-associate it faithfully.
func markIsolated(n exprast.Node) {
	if b, ok := n.(*exprast.Binary); ok {
		b.Isolated = true
	}
}

func (p *Parser) parseListLiteral() exprast.Node {
	tok := p.cur
	p.next() // consume '['
	var items []string
	for p.cur.Type != token.RBRACKET {
		if p.cur.Type != token.STRING {
			p.errorf("list literal elements must be quoted strings")
			break
		}
		items = append(items, p.cur.Literal)
		p.next()
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type != token.RBRACKET {
		p.errorf("unterminated list literal")
	} else {
		p.next()
	}
	return &exprast.Literal{Token: tok, Kind: exprast.LitList, List: items}
}
