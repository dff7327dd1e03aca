package parser

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/lexer"
	"kua/interpreter-go/pkg/runtime"
)

// parseValueLiteral converts a number or string token.
func (p *Parser) parseValueLiteral() (ast.Expression, error) {
	tok := p.tok
	var lit ast.Expression
	switch v := tok.Value.(type) {
	case runtime.NumberValue:
		lit = ast.NewNumberLiteral(v.Val)
	case runtime.StringValue:
		lit = ast.NewStringLiteral(v.Val)
	default:
		return nil, diagnostics.InvalidTerminal(tok.String(), tok.Context)
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	return ast.At(lit, tok.Context), nil
}

// parseKeywordLiteral converts true, false and nil.
func (p *Parser) parseKeywordLiteral() (ast.Expression, error) {
	tok := p.tok
	var lit ast.Expression
	switch tok.Literal {
	case lexer.LiteralTrue:
		lit = ast.NewBooleanLiteral(true)
	case lexer.LiteralFalse:
		lit = ast.NewBooleanLiteral(false)
	default:
		lit = ast.NewNilLiteral()
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	return ast.At(lit, tok.Context), nil
}
