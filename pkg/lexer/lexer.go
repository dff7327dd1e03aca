// Package lexer turns source text into tokens on demand.
package lexer

import (
	"strconv"
	"strings"

	"kua/interpreter-go/pkg/ast"
	"kua/interpreter-go/pkg/diagnostics"
	"kua/interpreter-go/pkg/runtime"
)

// Lexer is a pull-based tokenizer. HasNext stays true until the EOF token has
// been handed out exactly once.
type Lexer struct {
	source string
	text   string
	pos    int
	row    int
	col    int
	done   bool

	startPos int
	startRow int
	startCol int
}

func New(source, text string) *Lexer {
	return &Lexer{source: source, text: text, row: 1, col: 1}
}

func (l *Lexer) Source() string { return l.source }

func (l *Lexer) HasNext() bool { return !l.done }

// Tokenize runs the lexer to completion.
func Tokenize(source, text string) ([]Token, error) {
	lx := New(source, text)
	var out []Token
	for lx.HasNext() {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func (l *Lexer) Next() (Token, error) {
	if l.done {
		return l.token(KindEOF), nil
	}
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}
	l.mark()
	if l.atEnd() {
		l.done = true
		return l.token(KindEOF), nil
	}
	c := l.peek()
	switch {
	case isLetter(c):
		return l.lexIdentifier(), nil
	case isDigit(c), c == '.' && isDigit(l.peekAt(1)):
		return l.lexNumber()
	case c == '"' || c == '\'':
		return l.lexString(c)
	case c == '[' && (l.peekAt(1) == '[' || l.peekAt(1) == '='):
		return l.lexLongString()
	}
	for _, sym := range symbols {
		if strings.HasPrefix(l.text[l.pos:], string(sym)) {
			l.advanceN(len(sym))
			tok := l.token(KindSymbol)
			tok.Symbol = sym
			return tok, nil
		}
	}
	l.advance()
	return Token{}, diagnostics.IllegalCharacter(c, l.context())
}

//-----------------------------------------------------------------------------
// Cursor
//-----------------------------------------------------------------------------

func (l *Lexer) atEnd() bool { return l.pos >= len(l.text) }

func (l *Lexer) peek() byte { return l.peekAt(0) }

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.text) {
		return 0
	}
	return l.text[l.pos+offset]
}

func (l *Lexer) advance() byte {
	c := l.text[l.pos]
	l.pos++
	if c == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) advanceN(n int) {
	for ; n > 0 && !l.atEnd(); n-- {
		l.advance()
	}
}

func (l *Lexer) mark() {
	l.startPos, l.startRow, l.startCol = l.pos, l.row, l.col
}

func (l *Lexer) context() ast.Context {
	length := l.pos - l.startPos
	if l.row != l.startRow {
		length = strings.IndexByte(l.text[l.startPos:], '\n')
	}
	if length < 1 {
		length = 1
	}
	return ast.Context{Source: l.source, Row: l.startRow, Column: l.startCol, Length: length}
}

func (l *Lexer) token(kind TokenKind) Token {
	ctx := l.context()
	if kind == KindEOF {
		ctx.Length = 0
	}
	return Token{Context: ctx, Kind: kind}
}

//-----------------------------------------------------------------------------
// Trivia
//-----------------------------------------------------------------------------

func (l *Lexer) skipTrivia() error {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f':
			l.advance()
		case c == '-' && l.peekAt(1) == '-':
			l.mark()
			l.advanceN(2)
			if l.peek() == '[' {
				if level, ok := l.longBracketLevel(); ok {
					l.advanceN(level + 2)
					l.skipLongBody(level)
					continue
				}
			}
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// longBracketLevel checks for `[=*[` at the cursor without consuming it.
func (l *Lexer) longBracketLevel() (int, bool) {
	level := 0
	for l.peekAt(1+level) == '=' {
		level++
	}
	return level, l.peekAt(1+level) == '['
}

// skipLongBody consumes through the matching close bracket, or to the end of input.
func (l *Lexer) skipLongBody(level int) bool {
	closer := "]" + strings.Repeat("=", level) + "]"
	idx := strings.Index(l.text[l.pos:], closer)
	if idx < 0 {
		l.advanceN(len(l.text) - l.pos)
		return false
	}
	l.advanceN(idx + len(closer))
	return true
}

//-----------------------------------------------------------------------------
// Names
//-----------------------------------------------------------------------------

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentChar(c byte) bool { return isLetter(c) || isDigit(c) }

func (l *Lexer) lexIdentifier() Token {
	for isIdentChar(l.peek()) {
		l.advance()
	}
	word := l.text[l.startPos:l.pos]
	if kw, ok := keywordSet[word]; ok {
		tok := l.token(KindKeyword)
		tok.Keyword = kw
		return tok
	}
	if val, ok := literalValues[word]; ok {
		tok := l.token(KindLiteral)
		tok.Literal = Literal(word)
		tok.Value = val
		return tok
	}
	tok := l.token(KindName)
	tok.Name = word
	return tok
}

//-----------------------------------------------------------------------------
// Numbers
//-----------------------------------------------------------------------------

func (l *Lexer) lexNumber() (Token, error) {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		return l.lexHex()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && l.peekAt(1) != '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peek(); c == '+' || c == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return Token{}, l.invalidNumber()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if isIdentChar(l.peek()) || l.peek() == '.' && l.peekAt(1) != '.' {
		return Token{}, l.invalidNumber()
	}
	text := l.text[l.startPos:l.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return Token{}, l.invalidNumber()
		}
	}
	tok := l.token(KindValue)
	tok.Value = runtime.NumberValue{Val: f}
	return tok, nil
}

func (l *Lexer) lexHex() (Token, error) {
	l.advanceN(2)
	var f float64
	digits := 0
	for isHexDigit(l.peek()) {
		f = f*16 + float64(hexValue(l.advance()))
		digits++
	}
	if digits == 0 || isIdentChar(l.peek()) || l.peek() == '.' && l.peekAt(1) != '.' {
		return Token{}, l.invalidNumber()
	}
	tok := l.token(KindValue)
	tok.Value = runtime.NumberValue{Val: f}
	return tok, nil
}

func hexValue(c byte) int {
	switch {
	case isDigit(c):
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// invalidNumber consumes the rest of the malformed numeral so the message shows all of it.
func (l *Lexer) invalidNumber() error {
	for isIdentChar(l.peek()) || l.peek() == '.' {
		l.advance()
	}
	return diagnostics.InvalidNumber(l.text[l.startPos:l.pos], l.context())
}

//-----------------------------------------------------------------------------
// Strings
//-----------------------------------------------------------------------------

var simpleEscapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'\n': '\n',
}

func (l *Lexer) lexString(quote byte) (Token, error) {
	l.advance()
	var b strings.Builder
	for {
		if l.atEnd() || l.peek() == '\n' {
			return Token{}, diagnostics.UnfinishedString(l.context())
		}
		c := l.advance()
		if c == quote {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if err := l.lexEscape(&b); err != nil {
			return Token{}, err
		}
	}
	tok := l.token(KindValue)
	tok.Value = runtime.StringValue{Val: b.String()}
	return tok, nil
}

func (l *Lexer) lexEscape(b *strings.Builder) error {
	if l.atEnd() {
		return diagnostics.UnfinishedString(l.context())
	}
	escCtx := ast.Context{Source: l.source, Row: l.row, Column: l.col - 1, Length: 2}
	c := l.advance()
	if c == '\r' {
		if l.peek() == '\n' {
			l.advance()
		}
		b.WriteByte('\n')
		return nil
	}
	if r, ok := simpleEscapes[c]; ok {
		b.WriteByte(r)
		return nil
	}
	switch {
	case c == 'z':
		for !l.atEnd() {
			switch l.peek() {
			case ' ', '\t', '\r', '\n', '\v', '\f':
				l.advance()
				continue
			}
			break
		}
		return nil
	case c == 'x':
		if !isHexDigit(l.peek()) || !isHexDigit(l.peekAt(1)) {
			return diagnostics.InvalidEscape(c, escCtx)
		}
		hi := hexValue(l.advance())
		lo := hexValue(l.advance())
		b.WriteByte(byte(hi<<4 | lo))
		return nil
	case c == 'u':
		if l.peek() != '{' {
			return diagnostics.InvalidEscape(c, escCtx)
		}
		l.advance()
		var code int64
		digits := 0
		for isHexDigit(l.peek()) {
			code = code*16 + int64(hexValue(l.advance()))
			digits++
			if code > 0x7FFFFFFF {
				return diagnostics.InvalidEscape(c, escCtx)
			}
		}
		if digits == 0 || l.peek() != '}' {
			return diagnostics.InvalidEscape(c, escCtx)
		}
		l.advance()
		b.Write(encodeUTF8(uint32(code)))
		return nil
	case isDigit(c):
		code := int(c - '0')
		for n := 1; n < 3 && isDigit(l.peek()); n++ {
			code = code*10 + int(l.advance()-'0')
		}
		if code > 255 {
			return diagnostics.InvalidEscape(c, escCtx)
		}
		b.WriteByte(byte(code))
		return nil
	default:
		return diagnostics.InvalidEscape(c, escCtx)
	}
}

// encodeUTF8 uses the original 6-byte UTF-8 scheme so every code point up to 2^31 fits.
func encodeUTF8(code uint32) []byte {
	if code < 0x80 {
		return []byte{byte(code)}
	}
	var buf [6]byte
	n := 5
	limit := uint32(0x3f)
	for code > limit {
		buf[n] = byte(0x80 | code&0x3f)
		code >>= 6
		limit >>= 1
		n--
	}
	buf[n] = byte(^limit<<1) | byte(code)
	return buf[n:]
}

func (l *Lexer) lexLongString() (Token, error) {
	level, ok := l.longBracketLevel()
	if !ok {
		l.advanceN(level + 1)
		return Token{}, diagnostics.IllegalSequence(l.text[l.startPos:l.pos], l.context())
	}
	l.advanceN(level + 2)
	if l.peek() == '\r' && l.peekAt(1) == '\n' {
		l.advanceN(2)
	} else if l.peek() == '\n' {
		l.advance()
	}
	bodyStart := l.pos
	if !l.skipLongBody(level) {
		return Token{}, diagnostics.UnfinishedLongString(l.context())
	}
	body := l.text[bodyStart : l.pos-level-2]
	tok := l.token(KindValue)
	tok.Value = runtime.StringValue{Val: body}
	return tok, nil
}
