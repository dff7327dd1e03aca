package parser

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/lexer"
)

// parseBlock reads statements until a block terminator, which is left unconsumed.
func (p *Parser) parseBlock() (*ast.Block, error) {
	start := p.tok.Context
	var stmts []ast.Statement
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.blockEnd() {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if _, ok := stmt.(*ast.ReturnStatement); ok {
			if err := p.skipSemicolons(); err != nil {
				return nil, err
			}
			if !p.blockEnd() {
				return nil, diagnostics.InvalidReturn(stmt.Span())
			}
			break
		}
	}
	ctx := start
	if len(stmts) > 0 {
		ctx = ast.Range(stmts[0].Span(), stmts[len(stmts)-1].Span())
	}
	return ast.At(ast.NewBlock(stmts), ctx), nil
}

func (p *Parser) skipSemicolons() error {
	for p.checkSymbol(lexer.SymbolSemicolon) {
		if err := p.step(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	if p.tok.Kind == lexer.KindKeyword {
		switch p.tok.Keyword {
		case lexer.KeywordDo:
			return p.parseDoBlock()
		case lexer.KeywordIf:
			return p.parseIf()
		case lexer.KeywordWhile:
			return p.parseWhile()
		case lexer.KeywordRepeat:
			return p.parseRepeat()
		case lexer.KeywordFor:
			return p.parseFor()
		case lexer.KeywordBreak:
			return p.parseBreak()
		case lexer.KeywordFunction:
			return p.parseFunctionStatement()
		case lexer.KeywordReturn:
			return p.parseReturn()
		case lexer.KeywordLocal:
			return p.parseLocal()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseDoBlock() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	ast.SetContext(body, p.contextFrom(start))
	return body, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.tok.Context
	var branches []ast.IfBranch
	for {
		// current token is `if` or `elseif`
		if err := p.step(); err != nil {
			return nil, err
		}
		test, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword(lexer.KeywordThen); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		branches = append(branches, ast.IfBranch{Test: test, Body: body})
		if !p.checkKeyword(lexer.KeywordElseif) {
			break
		}
	}
	var elseBlock *ast.Block
	if p.checkKeyword(lexer.KeywordElse) {
		if err := p.step(); err != nil {
			return nil, err
		}
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		elseBlock = block
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return ast.At(ast.NewIfStatement(branches, elseBlock), p.contextFrom(start)), nil
}

// parseLoopBody parses a block in which break is allowed.
func (p *Parser) parseLoopBody() (*ast.Block, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseBlock()
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordDo); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return ast.At(ast.NewWhileStatement(test, body), p.contextFrom(start)), nil
}

func (p *Parser) parseRepeat() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordUntil); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.At(ast.NewRepeatStatement(body, test), p.contextFrom(start)), nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	first, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if p.checkSymbol(lexer.SymbolAssign) {
		return p.parseNumericFor(start, first)
	}
	if p.checkSymbol(lexer.SymbolComma) || p.checkKeyword(lexer.KeywordIn) {
		return p.parseGenericFor(start, first)
	}
	return nil, p.unexpected("= or in")
}

func (p *Parser) parseNumericFor(start ast.Context, variable *ast.Name) (ast.Statement, error) {
	if err := p.step(); err != nil {
		return nil, err
	}
	from, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(lexer.SymbolComma); err != nil {
		return nil, err
	}
	limit, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	var step ast.Expression = ast.NewNoneExpression()
	if ok, err := p.acceptSymbol(lexer.SymbolComma); err != nil {
		return nil, err
	} else if ok {
		if step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword(lexer.KeywordDo); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return ast.At(ast.NewForStatement(variable, from, limit, step, body), p.contextFrom(start)), nil
}

func (p *Parser) parseGenericFor(start ast.Context, first *ast.Name) (ast.Statement, error) {
	names := []*ast.Name{first}
	for p.checkSymbol(lexer.SymbolComma) {
		if err := p.step(); err != nil {
			return nil, err
		}
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := p.expectKeyword(lexer.KeywordIn); err != nil {
		return nil, err
	}
	exprs, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordDo); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return ast.At(ast.NewForInStatement(names, exprs, body), p.contextFrom(start)), nil
}

func (p *Parser) parseBreak() (ast.Statement, error) {
	ctx := p.tok.Context
	if p.loopDepth == 0 {
		return nil, diagnostics.InvalidBreak(ctx)
	}
	if err := p.step(); err != nil {
		return nil, err
	}
	return ast.At(ast.NewBreakStatement(), ctx), nil
}

// parseFunctionStatement handles `function f() end` and `function a.b.f() end`.
// The dotted form assigns a lambda to the last member.
func (p *Parser) parseFunctionStatement() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	var target ast.Expression
	for p.checkSymbol(lexer.SymbolDot) {
		if err := p.step(); err != nil {
			return nil, err
		}
		member, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if target == nil {
			target = name
		} else {
			target = ast.At(ast.NewGetMember(target, name), ast.Range(target.Span(), name.Span()))
		}
		name = member
	}
	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	ctx := p.contextFrom(start)
	if target == nil {
		return ast.At(ast.NewFunctionStatement(name, body, false), ctx), nil
	}
	lambda := ast.At(ast.NewLambdaExpression(body), body.Span())
	set := ast.At(ast.NewSetMember(target, name, lambda), ctx)
	return ast.At(ast.NewExpressionStatement(set), ctx), nil
}

// parseFunctionBody reads `(params) block end`. Loops outside the body do not
// make break legal inside it.
func (p *Parser) parseFunctionBody() (*ast.FunctionBody, error) {
	start := p.tok.Context
	if err := p.expectSymbol(lexer.SymbolLeftParen); err != nil {
		return nil, err
	}
	var params []*ast.Name
	if !p.checkSymbol(lexer.SymbolRightParen) {
		for {
			param, err := p.expectName()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			ok, err := p.acceptSymbol(lexer.SymbolComma)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
		}
	}
	if err := p.expectSymbol(lexer.SymbolRightParen); err != nil {
		return nil, err
	}
	savedDepth := p.loopDepth
	p.loopDepth = 0
	block, err := p.parseBlock()
	p.loopDepth = savedDepth
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(lexer.KeywordEnd); err != nil {
		return nil, err
	}
	return ast.At(ast.NewFunctionBody(params, block), p.contextFrom(start)), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	var exprs []ast.Expression
	if !p.blockEnd() && !p.checkSymbol(lexer.SymbolSemicolon) {
		list, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		exprs = list
	}
	return ast.At(ast.NewReturnStatement(exprs), p.contextFrom(start)), nil
}

func (p *Parser) parseLocal() (ast.Statement, error) {
	start := p.tok.Context
	if err := p.step(); err != nil {
		return nil, err
	}
	if p.checkKeyword(lexer.KeywordFunction) {
		if err := p.step(); err != nil {
			return nil, err
		}
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		body, err := p.parseFunctionBody()
		if err != nil {
			return nil, err
		}
		return ast.At(ast.NewFunctionStatement(name, body, true), p.contextFrom(start)), nil
	}
	var targets []ast.Expression
	for {
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		targets = append(targets, name)
		ok, err := p.acceptSymbol(lexer.SymbolComma)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	var values []ast.Expression
	if ok, err := p.acceptSymbol(lexer.SymbolAssign); err != nil {
		return nil, err
	} else if ok {
		if values, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}
	return ast.At(ast.NewAssignStatement(true, targets, values), p.contextFrom(start)), nil
}

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Name, *ast.GetIndex, *ast.GetMember:
		return true
	default:
		return false
	}
}

// parseExpressionStatement parses either an assignment or a bare expression.
// A single index or member target with a single value becomes a SetIndex or
// SetMember expression.
func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	start := p.tok.Context
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !isAssignable(first) || !(p.checkSymbol(lexer.SymbolComma) || p.checkSymbol(lexer.SymbolAssign)) {
		return ast.At(ast.NewExpressionStatement(first), p.contextFrom(start)), nil
	}
	targets := []ast.Expression{first}
	for p.checkSymbol(lexer.SymbolComma) {
		if err := p.step(); err != nil {
			return nil, err
		}
		target, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !isAssignable(target) {
			return nil, diagnostics.InvalidAssignment(target.Span())
		}
		targets = append(targets, target)
	}
	if err := p.expectSymbol(lexer.SymbolAssign); err != nil {
		return nil, err
	}
	values, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	ctx := p.contextFrom(start)
	if len(targets) == 1 && len(values) == 1 {
		switch t := first.(type) {
		case *ast.GetIndex:
			set := ast.At(ast.NewSetIndex(t.Target, t.Index, values[0]), ctx)
			return ast.At(ast.NewExpressionStatement(set), ctx), nil
		case *ast.GetMember:
			set := ast.At(ast.NewSetMember(t.Target, t.Member, values[0]), ctx)
			return ast.At(ast.NewExpressionStatement(set), ctx), nil
		}
	}
	return ast.At(ast.NewAssignStatement(false, targets, values), ctx), nil
}
