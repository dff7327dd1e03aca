package parser

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/lexer"
)

// Binary operator levels from loosest to tightest. Concatenation and power are
// right associative and handled separately.
var (
	equalityOperators       = []lexer.Symbol{lexer.SymbolEqual, lexer.SymbolNotEqual}
	relationalOperators     = []lexer.Symbol{lexer.SymbolLess, lexer.SymbolGreater, lexer.SymbolLessEqual, lexer.SymbolGreaterEqual}
	additiveOperators       = []lexer.Symbol{lexer.SymbolPlus, lexer.SymbolMinus}
	multiplicativeOperators = []lexer.Symbol{lexer.SymbolMultiply, lexer.SymbolDivide, lexer.SymbolFloorDivide, lexer.SymbolModulo}
)

func (p *Parser) parseExpressionList() ([]ast.Expression, error) {
	var exprs []ast.Expression
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		ok, err := p.acceptSymbol(lexer.SymbolComma)
		if err != nil {
			return nil, err
		}
		if !ok {
			return exprs, nil
		}
	}
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseKeywordLevel(lexer.KeywordOr, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseKeywordLevel(lexer.KeywordAnd, p.parseEquality)
}

func (p *Parser) parseKeywordLevel(kw lexer.Keyword, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.checkKeyword(kw) {
		if err := p.step(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression(string(kw), left, right), ast.Range(left.Span(), right.Span()))
	}
	return left, nil
}

// parseSymbolLevel parses a left-associative run of the given operators.
func (p *Parser) parseSymbolLevel(ops []lexer.Symbol, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchSymbol(ops)
		if !ok {
			return left, nil
		}
		if err := p.step(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.At(ast.NewBinaryExpression(string(op), left, right), ast.Range(left.Span(), right.Span()))
	}
}

func (p *Parser) matchSymbol(ops []lexer.Symbol) (lexer.Symbol, bool) {
	if p.tok.Kind != lexer.KindSymbol {
		return "", false
	}
	for _, op := range ops {
		if p.tok.Symbol == op {
			return op, true
		}
	}
	return "", false
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseSymbolLevel(equalityOperators, p.parseRelational)
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseSymbolLevel(relationalOperators, p.parseConcat)
}

func (p *Parser) parseConcat() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.checkSymbol(lexer.SymbolConcat) {
		return left, nil
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	right, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewBinaryExpression(string(lexer.SymbolConcat), left, right), ast.Range(left.Span(), right.Span())), nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseSymbolLevel(additiveOperators, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseSymbolLevel(multiplicativeOperators, p.parseUnary)
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	start := p.tok.Context
	var op string
	switch {
	case p.checkSymbol(lexer.SymbolMinus):
		op = string(lexer.SymbolMinus)
	case p.checkSymbol(lexer.SymbolLength):
		op = string(lexer.SymbolLength)
	case p.checkKeyword(lexer.KeywordNot):
		op = string(lexer.KeywordNot)
	default:
		return p.parsePower()
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewUnaryExpression(op, operand), ast.Range(start, operand.Span())), nil
}

// parsePower binds tighter than unary operators on its left, so -2^2 is -(2^2),
// while its right operand may itself be unary: 2^-1.
func (p *Parser) parsePower() (ast.Expression, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.checkSymbol(lexer.SymbolPower) {
		return base, nil
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewBinaryExpression(string(lexer.SymbolPower), base, exponent), ast.Range(base.Span(), exponent.Span())), nil
}

// parsePostfix applies member access, indexing and calls to any terminal. A
// bare string or number after an expression is a one-argument call.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parseTerminal()
	if err != nil {
		return nil, err
	}
	for {
		start := expr.Span()
		switch {
		case p.checkSymbol(lexer.SymbolDot):
			if err := p.step(); err != nil {
				return nil, err
			}
			member, err := p.expectName()
			if err != nil {
				return nil, err
			}
			expr = ast.At(ast.NewGetMember(expr, member), ast.Range(start, member.Span()))
		case p.checkSymbol(lexer.SymbolLeftBracket):
			if err := p.step(); err != nil {
				return nil, err
			}
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(lexer.SymbolRightBracket); err != nil {
				return nil, err
			}
			expr = ast.At(ast.NewGetIndex(expr, index), p.contextFrom(start))
		case p.checkSymbol(lexer.SymbolLeftParen), p.checkSymbol(lexer.SymbolLeftBrace), p.tok.Kind == lexer.KindValue:
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			expr = ast.At(ast.NewInvokeExpression(expr, args), p.contextFrom(start))
		default:
			return expr, nil
		}
	}
}

// parseCallArguments accepts `(explist)`, a single table constructor, or a single literal.
func (p *Parser) parseCallArguments() ([]ast.Expression, error) {
	switch {
	case p.checkSymbol(lexer.SymbolLeftBrace):
		table, err := p.parseTable()
		if err != nil {
			return nil, err
		}
		return []ast.Expression{table}, nil
	case p.tok.Kind == lexer.KindValue:
		lit, err := p.parseValueLiteral()
		if err != nil {
			return nil, err
		}
		return []ast.Expression{lit}, nil
	}
	if err := p.expectSymbol(lexer.SymbolLeftParen); err != nil {
		return nil, err
	}
	if ok, err := p.acceptSymbol(lexer.SymbolRightParen); err != nil || ok {
		return nil, err
	}
	args, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(lexer.SymbolRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseTerminal() (ast.Expression, error) {
	start := p.tok.Context
	switch p.tok.Kind {
	case lexer.KindValue:
		return p.parseValueLiteral()
	case lexer.KindLiteral:
		return p.parseKeywordLiteral()
	case lexer.KindName:
		return p.expectName()
	case lexer.KindKeyword:
		if p.checkKeyword(lexer.KeywordFunction) {
			if err := p.step(); err != nil {
				return nil, err
			}
			body, err := p.parseFunctionBody()
			if err != nil {
				return nil, err
			}
			return ast.At(ast.NewLambdaExpression(body), p.contextFrom(start)), nil
		}
	case lexer.KindSymbol:
		switch p.tok.Symbol {
		case lexer.SymbolLeftBrace:
			return p.parseTable()
		case lexer.SymbolLeftParen:
			if err := p.step(); err != nil {
				return nil, err
			}
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(lexer.SymbolRightParen); err != nil {
				return nil, err
			}
			return ast.At(ast.NewParenExpression(inner), p.contextFrom(start)), nil
		}
	}
	return nil, diagnostics.InvalidTerminal(p.tok.String(), p.tok.Context)
}

// parseTable reads a table constructor. `name = v` and `[k] = v` entries go to
// the map part, everything else to the list part.
func (p *Parser) parseTable() (ast.Expression, error) {
	start := p.tok.Context
	if err := p.expectSymbol(lexer.SymbolLeftBrace); err != nil {
		return nil, err
	}
	var list []ast.Expression
	var fields []ast.TableField
	for !p.checkSymbol(lexer.SymbolRightBrace) {
		if p.checkSymbol(lexer.SymbolLeftBracket) {
			if err := p.step(); err != nil {
				return nil, err
			}
			key, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(lexer.SymbolRightBracket); err != nil {
				return nil, err
			}
			if err := p.expectSymbol(lexer.SymbolAssign); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.TableField{Key: key, Value: value})
		} else {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if p.checkSymbol(lexer.SymbolAssign) {
				name, ok := expr.(*ast.Name)
				if !ok {
					return nil, diagnostics.InvalidTableKey(expr.Span())
				}
				if err := p.step(); err != nil {
					return nil, err
				}
				value, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				fields = append(fields, ast.TableField{Key: name.ToStringLiteral(), Value: value})
			} else {
				list = append(list, expr)
			}
		}
		if p.checkSymbol(lexer.SymbolComma) || p.checkSymbol(lexer.SymbolSemicolon) {
			if err := p.step(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectSymbol(lexer.SymbolRightBrace); err != nil {
		return nil, err
	}
	return ast.At(ast.NewTableConstructor(list, fields), p.contextFrom(start)), nil
}
