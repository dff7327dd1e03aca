package lexer

import (
	"fmt"
	"strconv"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/runtime"
)

// TokenKind classifies a token.
type TokenKind int

const (
	KindValue TokenKind = iota
	KindName
	KindKeyword
	KindLiteral
	KindSymbol
	KindEOF
)

func (k TokenKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindName:
		return "name"
	case KindKeyword:
		return "keyword"
	case KindLiteral:
		return "literal"
	case KindSymbol:
		return "symbol"
	case KindEOF:
		return "end of input"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

type Keyword string

const (
	KeywordAnd      Keyword = "and"
	KeywordBreak    Keyword = "break"
	KeywordDo       Keyword = "do"
	KeywordElse     Keyword = "else"
	KeywordElseif   Keyword = "elseif"
	KeywordEnd      Keyword = "end"
	KeywordFor      Keyword = "for"
	KeywordFunction Keyword = "function"
	KeywordGoto     Keyword = "goto"
	KeywordIf       Keyword = "if"
	KeywordIn       Keyword = "in"
	KeywordLocal    Keyword = "local"
	KeywordNot      Keyword = "not"
	KeywordOr       Keyword = "or"
	KeywordRepeat   Keyword = "repeat"
	KeywordReturn   Keyword = "return"
	KeywordThen     Keyword = "then"
	KeywordUntil    Keyword = "until"
	KeywordWhile    Keyword = "while"
)

// Keywords lists every reserved word that is not a literal.
var Keywords = []Keyword{
	KeywordAnd, KeywordBreak, KeywordDo, KeywordElse, KeywordElseif, KeywordEnd,
	KeywordFor, KeywordFunction, KeywordGoto, KeywordIf, KeywordIn, KeywordLocal,
	KeywordNot, KeywordOr, KeywordRepeat, KeywordReturn, KeywordThen, KeywordUntil,
	KeywordWhile,
}

var keywordSet = func() map[string]Keyword {
	out := make(map[string]Keyword, len(Keywords))
	for _, kw := range Keywords {
		out[string(kw)] = kw
	}
	return out
}()

type Literal string

const (
	LiteralTrue  Literal = "true"
	LiteralFalse Literal = "false"
	LiteralNil   Literal = "nil"
)

var literalValues = map[string]runtime.Value{
	string(LiteralTrue):  runtime.True,
	string(LiteralFalse): runtime.False,
	string(LiteralNil):   runtime.Nil,
}

type Symbol string

const (
	SymbolEllipsis     Symbol = "..."
	SymbolConcat       Symbol = ".."
	SymbolLabel        Symbol = "::"
	SymbolShiftLeft    Symbol = "<<"
	SymbolShiftRight   Symbol = ">>"
	SymbolFloorDivide  Symbol = "//"
	SymbolEqual        Symbol = "=="
	SymbolNotEqual     Symbol = "~="
	SymbolLessEqual    Symbol = "<="
	SymbolGreaterEqual Symbol = ">="
	SymbolPlus         Symbol = "+"
	SymbolMinus        Symbol = "-"
	SymbolMultiply     Symbol = "*"
	SymbolDivide       Symbol = "/"
	SymbolModulo       Symbol = "%"
	SymbolPower        Symbol = "^"
	SymbolLength       Symbol = "#"
	SymbolAmpersand    Symbol = "&"
	SymbolTilde        Symbol = "~"
	SymbolPipe         Symbol = "|"
	SymbolLess         Symbol = "<"
	SymbolGreater      Symbol = ">"
	SymbolAssign       Symbol = "="
	SymbolLeftParen    Symbol = "("
	SymbolRightParen   Symbol = ")"
	SymbolLeftBrace    Symbol = "{"
	SymbolRightBrace   Symbol = "}"
	SymbolLeftBracket  Symbol = "["
	SymbolRightBracket Symbol = "]"
	SymbolSemicolon    Symbol = ";"
	SymbolColon        Symbol = ":"
	SymbolComma        Symbol = ","
	SymbolDot          Symbol = "."
)

// symbols is ordered so that longer spellings are tried before their prefixes.
var symbols = []Symbol{
	SymbolEllipsis, SymbolConcat, SymbolLabel, SymbolShiftLeft, SymbolShiftRight,
	SymbolFloorDivide, SymbolEqual, SymbolNotEqual, SymbolLessEqual, SymbolGreaterEqual,
	SymbolPlus, SymbolMinus, SymbolMultiply, SymbolDivide, SymbolModulo, SymbolPower,
	SymbolLength, SymbolAmpersand, SymbolTilde, SymbolPipe, SymbolLess, SymbolGreater,
	SymbolAssign, SymbolLeftParen, SymbolRightParen, SymbolLeftBrace, SymbolRightBrace,
	SymbolLeftBracket, SymbolRightBracket, SymbolSemicolon, SymbolColon, SymbolComma,
	SymbolDot,
}

// Token is one lexical unit. Which of Name, Keyword, Literal, Symbol and Value
// is meaningful depends on Kind.
type Token struct {
	Context ast.Context
	Kind    TokenKind
	Name    string
	Keyword Keyword
	Literal Literal
	Symbol  Symbol
	Value   runtime.Value
}

func (t Token) IsKeyword(kw Keyword) bool {
	return t.Kind == KindKeyword && t.Keyword == kw
}

func (t Token) IsSymbol(sym Symbol) bool {
	return t.Kind == KindSymbol && t.Symbol == sym
}

func (t Token) String() string {
	switch t.Kind {
	case KindValue:
		if s, ok := t.Value.(runtime.StringValue); ok {
			return strconv.Quote(s.Val)
		}
		return runtime.ToDisplay(t.Value)
	case KindName:
		return t.Name
	case KindKeyword:
		return string(t.Keyword)
	case KindLiteral:
		return string(t.Literal)
	case KindSymbol:
		return string(t.Symbol)
	case KindEOF:
		return "<eof>"
	default:
		return "?"
	}
}
