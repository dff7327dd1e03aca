// Package parser builds the AST from a token stream by recursive descent.
package parser

import (
	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/lexer"
)

// Parser consumes tokens with a single token of lookahead.
type Parser struct {
	lx   *lexer.Lexer
	tok  lexer.Token
	prev lexer.Token

	loopDepth int
}

// New primes the parser with the first token.
func New(lx *lexer.Lexer) (*Parser, error) {
	p := &Parser{lx: lx}
	if err := p.step(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseChunk lexes and parses a complete source text.
func ParseChunk(source, text string) (*ast.Chunk, error) {
	p, err := New(lexer.New(source, text))
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// Parse reads the whole token stream as one chunk.
func (p *Parser) Parse() (*ast.Chunk, error) {
	start := p.tok.Context
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lexer.KindEOF {
		return nil, p.unexpected("end of input")
	}
	return ast.At(ast.NewChunk(block), ast.Range(start, p.prev.Context)), nil
}

// step advances to the next token. Once the lexer is exhausted the EOF token stays current.
func (p *Parser) step() error {
	if !p.lx.HasNext() {
		return nil
	}
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.prev = p.tok
	p.tok = tok
	return nil
}

func (p *Parser) checkKeyword(kw lexer.Keyword) bool { return p.tok.IsKeyword(kw) }

func (p *Parser) checkSymbol(sym lexer.Symbol) bool { return p.tok.IsSymbol(sym) }

// acceptSymbol consumes sym when it is the current token.
func (p *Parser) acceptSymbol(sym lexer.Symbol) (bool, error) {
	if !p.checkSymbol(sym) {
		return false, nil
	}
	return true, p.step()
}

func (p *Parser) expectKeyword(kw lexer.Keyword) error {
	if !p.checkKeyword(kw) {
		return p.unexpected(string(kw))
	}
	return p.step()
}

func (p *Parser) expectSymbol(sym lexer.Symbol) error {
	if !p.checkSymbol(sym) {
		return p.unexpected(string(sym))
	}
	return p.step()
}

func (p *Parser) expectName() (*ast.Name, error) {
	if p.tok.Kind != lexer.KindName {
		return nil, p.unexpected("name")
	}
	name := ast.At(ast.NewName(p.tok.Name), p.tok.Context)
	return name, p.step()
}

// unexpected reports the current token as a mismatch against what the grammar wanted.
func (p *Parser) unexpected(expected string) error {
	err := diagnostics.InvalidToken(p.tok.String(), expected, p.tok.Context)
	if hint := keywordHint(p.tok, expected); hint != "" {
		err.Message += "; did you mean '" + hint + "'?"
	}
	return err
}

// blockEnd reports whether the current token closes a block.
func (p *Parser) blockEnd() bool {
	switch {
	case p.tok.Kind == lexer.KindEOF:
		return true
	case p.tok.Kind != lexer.KindKeyword:
		return false
	}
	switch p.tok.Keyword {
	case lexer.KeywordEnd, lexer.KeywordElse, lexer.KeywordElseif, lexer.KeywordUntil:
		return true
	default:
		return false
	}
}

// contextFrom spans from start to the last consumed token.
func (p *Parser) contextFrom(start ast.Context) ast.Context {
	return ast.Range(start, p.prev.Context)
}
