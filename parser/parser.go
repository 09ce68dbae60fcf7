// Package parser parses expressions such as
//
//	Filter([Product].[Item].Members, KeyIn([Product], 'apple') OR NOT IsCalculated([Product]))
//
// Names are bound using a Resolver and functions using a validator.
package parser

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/leftmike/cubist/mdx"
	"github.com/leftmike/cubist/parser/scanner"
	"github.com/leftmike/cubist/parser/token"
)

// Resolver binds a name, such as [Product].[Fruit].[Apple], split into its parts, to a
// dimension, hierarchy, level, or member.
type Resolver interface {
	Resolve(names []string) (mdx.Exp, error)
}

type Parser struct {
	scanner   scanner.Scanner
	sctx      scanner.ScanCtx
	unscanned bool
	resolver  Resolver
	validator mdx.Validator
}

func NewParser(rr io.RuneReader, fn string, r Resolver, v mdx.Validator) *Parser {
	if v == nil {
		v = mdx.DefaultValidator()
	}
	p := &Parser{
		resolver:  r,
		validator: v,
	}
	p.scanner.Init(rr, fn)
	return p
}

// ParseExpr parses s, which must hold exactly one expression.
func ParseExpr(s string, r Resolver) (mdx.Exp, error) {
	return NewParser(strings.NewReader(s), "", r, nil).ParseExpr()
}

func (p *Parser) ParseExpr() (e mdx.Exp, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
			e = nil
		}
	}()

	if p.scan() == token.EOF {
		return nil, io.EOF
	}
	p.unscan()

	e = p.parseOr()
	p.expectEOF()
	return
}

func (p *Parser) error(msg string) {
	panic(fmt.Errorf("parser: %s: %s", p.sctx.Position, msg))
}

func (p *Parser) scan() rune {
	if p.unscanned {
		p.unscanned = false
		return p.sctx.Token
	}

	p.scanner.Scan(&p.sctx)
	if p.sctx.Token == token.Error {
		p.error(p.sctx.Error.Error())
	}
	return p.sctx.Token
}

func (p *Parser) unscan() {
	p.unscanned = true
}

func (p *Parser) got() string {
	switch p.sctx.Token {
	case token.EOF:
		return "end of input"
	case token.Identifier:
		if p.sctx.Quoted {
			return fmt.Sprintf("identifier [%s]", p.sctx.Identifier)
		}
		return fmt.Sprintf("identifier %s", p.sctx.Identifier)
	case token.String:
		return fmt.Sprintf("string %q", p.sctx.String)
	case token.Integer:
		return fmt.Sprintf("integer %d", p.sctx.Integer)
	case token.Float:
		return fmt.Sprintf("float %f", p.sctx.Float)
	}

	return fmt.Sprintf("rune %c", p.sctx.Token)
}

func (p *Parser) expectToken(r rune) {
	if p.scan() != r {
		p.error(fmt.Sprintf("expected %s got %s", token.Format(r), p.got()))
	}
}

func (p *Parser) maybeToken(r rune) bool {
	if p.scan() == r {
		return true
	}
	p.unscan()
	return false
}

func (p *Parser) maybeKeyword(kw string) bool {
	if p.scan() == token.Identifier && !p.sctx.Quoted &&
		strings.EqualFold(p.sctx.Identifier, kw) {
		return true
	}
	p.unscan()
	return false
}

func (p *Parser) expectEOF() {
	if p.scan() != token.EOF {
		p.error(fmt.Sprintf("expected the end of the expression got %s", p.got()))
	}
}

func (p *Parser) call(name string, syntax mdx.Syntax, args ...mdx.Exp) mdx.Exp {
	c, err := mdx.NewCall(p.validator, name, syntax, args...)
	if err != nil {
		p.error(err.Error())
	}
	return c
}

// parseAs parses expr [AS name], which names a set.
func (p *Parser) parseAs() mdx.Exp {
	e := p.parseOr()
	if p.maybeKeyword("AS") {
		p.expectToken(token.Identifier)
		e = p.call("AS", mdx.FunctionSyntax, e, &mdx.Literal{Value: p.sctx.Identifier})
	}
	return e
}

func (p *Parser) parseOr() mdx.Exp {
	e := p.parseAnd()
	for p.maybeKeyword("OR") {
		e = p.call("Or", mdx.FunctionSyntax, e, p.parseAnd())
	}
	return e
}

func (p *Parser) parseAnd() mdx.Exp {
	e := p.parseNot()
	for p.maybeKeyword("AND") {
		e = p.call("And", mdx.FunctionSyntax, e, p.parseNot())
	}
	return e
}

func (p *Parser) parseNot() mdx.Exp {
	if p.maybeKeyword("NOT") {
		return p.call("Not", mdx.FunctionSyntax, p.parseNot())
	}
	return p.parsePrimary()
}

// parseList parses expressions separated by commas up to end.
func (p *Parser) parseList(end rune) []mdx.Exp {
	var exps []mdx.Exp
	if p.maybeToken(end) {
		return exps
	}
	for {
		exps = append(exps, p.parseAs())
		if p.maybeToken(end) {
			return exps
		}
		p.expectToken(token.Comma)
	}
}

func (p *Parser) parsePrimary() mdx.Exp {
	switch p.scan() {
	case token.LBrace:
		return p.parseProperties(p.call("{}", mdx.BracesSyntax, p.parseList(token.RBrace)...))
	case token.LParen:
		e := p.parseOr()
		p.expectToken(token.RParen)
		return p.parseProperties(e)
	case token.String:
		return &mdx.Literal{Value: p.sctx.String}
	case token.Integer:
		return &mdx.Literal{Value: p.sctx.Integer}
	case token.Float:
		return &mdx.Literal{Value: p.sctx.Float}
	case token.Identifier:
		id := p.sctx.Identifier
		if p.sctx.Quoted {
			return p.parseNames([]string{id})
		}
		if strings.EqualFold(id, "TRUE") {
			return &mdx.Literal{Value: true}
		} else if strings.EqualFold(id, "FALSE") {
			return &mdx.Literal{Value: false}
		}
		if p.maybeToken(token.LParen) {
			return p.parseProperties(p.call(id, mdx.FunctionSyntax,
				p.parseList(token.RParen)...))
		} else if strings.EqualFold(id, "EXISTING") {
			return p.call("Existing", mdx.FunctionSyntax, p.parsePrimary())
		}
		return p.parseNames([]string{id})
	}

	p.error(fmt.Sprintf("expected an expression got %s", p.got()))
	return nil
}

func isProperty(name string) bool {
	fd, ok := mdx.Lookup(name)
	return ok && fd.Syntax() == mdx.PropertySyntax
}

// parseNames collects the parts of a dotted name until it reaches a property, such as
// Members, or the end of the name.
func (p *Parser) parseNames(names []string) mdx.Exp {
	for p.maybeToken(token.Dot) {
		p.expectToken(token.Identifier)
		if !p.sctx.Quoted && isProperty(p.sctx.Identifier) {
			e := p.call(p.sctx.Identifier, mdx.PropertySyntax, p.resolve(names))
			return p.parseProperties(e)
		}
		names = append(names, p.sctx.Identifier)
	}
	return p.resolve(names)
}

func (p *Parser) parseProperties(e mdx.Exp) mdx.Exp {
	for p.maybeToken(token.Dot) {
		p.expectToken(token.Identifier)
		if p.sctx.Quoted || !isProperty(p.sctx.Identifier) {
			p.error(fmt.Sprintf("expected a property got %s", p.got()))
		}
		e = p.call(p.sctx.Identifier, mdx.PropertySyntax, e)
	}
	return e
}

func (p *Parser) resolve(names []string) mdx.Exp {
	if p.resolver == nil {
		p.error(fmt.Sprintf("unable to resolve [%s]", strings.Join(names, "].[")))
	}
	e, err := p.resolver.Resolve(names)
	if err != nil {
		p.error(err.Error())
	}
	return e
}
