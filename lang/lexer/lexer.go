// Package lexer tokenizes wide-character (CJK) source for lang/compiler.
//
// The scanner operates over a decoded []rune buffer rather than raw bytes:
// this language's identifiers and punctuation are CJK by default, so
// classifying "is this an identifier-start character" on undecoded UTF-8
// bytes would mean re-decoding runes on every lookahead. Decoding once up
// front keeps the hot scanning loop simple, at the cost of an O(n) upfront
// pass.
package lexer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mna/hanyu/lang/token"
)

// Value carries the token's lexeme and any decoded literal payload.
type Value struct {
	Lexeme string // exact source text of the token
	Line   int    // 1-based source line the token starts on
	Number float64
	String string
}

// Error is a single lexical error, tied to the source line it was found on.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Msg) }

// ErrorList accumulates lexical errors, the same role go/scanner's own
// ErrorList plays for the standard library's scanner. Error formats the
// entries in the order they were added; Sort orders them by line.
type ErrorList []*Error

func (el *ErrorList) Add(line int, msg string) {
	*el = append(*el, &Error{Line: line, Msg: msg})
}

func (el ErrorList) Len() int      { return len(el) }
func (el ErrorList) Swap(i, j int) { el[i], el[j] = el[j], el[i] }
func (el ErrorList) Less(i, j int) bool { return el[i].Line < el[j].Line }

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap allows errors.Is/As to see through the list.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// Sort orders the list by source line, stably.
func (el ErrorList) Sort() { sort.Stable(el) }

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Lexer scans a rune buffer into a stream of tokens. Value.Lexeme and
// Value.String are copied out of the source, so a Value returned by Scan
// does not refer to the source slice.
type Lexer struct {
	src []rune
	err func(line int, msg string)

	start int // index of the first rune of the token being scanned
	cur   int // index of the next rune to read
	line  int
}

// Init prepares l to scan source, reporting lexical errors to errHandler (if
// non-nil).
func (l *Lexer) Init(source []rune, errHandler func(line int, msg string)) {
	l.src = source
	l.err = errHandler
	l.start = 0
	l.cur = 0
	l.line = 1
}

// NewLexer is a convenience constructor equivalent to allocating a Lexer and
// calling Init.
func NewLexer(source []rune, errHandler func(line int, msg string)) *Lexer {
	l := &Lexer{}
	l.Init(source, errHandler)
	return l
}

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) advance() rune {
	r := l.src[l.cur]
	l.cur++
	return r
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() rune {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) match(r rune) bool {
	if l.atEnd() || l.src[l.cur] != r {
		return false
	}
	l.cur++
	return true
}

func (l *Lexer) errorf(format string, args ...any) {
	if l.err != nil {
		l.err(l.line, fmt.Sprintf(format, args...))
	}
}

func (l *Lexer) lexeme() string { return string(l.src[l.start:l.cur]) }

func (l *Lexer) make(tok token.Token) (token.Token, Value) {
	return tok, Value{Lexeme: l.lexeme(), Line: l.line}
}

// Scan returns the next token and its associated value. At end of input it
// repeatedly returns token.EOF.
func (l *Lexer) Scan() (token.Token, Value) {
	l.skipWhitespaceAndComments()
	l.start = l.cur
	if l.atEnd() {
		return l.make(token.EOF)
	}

	startLine := l.line
	r := l.advance()

	switch {
	case isIdentStart(r):
		return l.identifier(startLine)
	case isDigit(r):
		return l.number(startLine)
	}

	switch r {
	// Full-width punctuation is the canonical lexical surface; the ASCII
	// equivalents below are accepted as well, since real programs freely mix
	// both forms (e.g. using ASCII '(' ')' '{' '}' ';' '.' alongside CJK
	// keywords and operators).
	case '（', '(':
		return l.make(token.LPAREN)
	case '）', ')':
		return l.make(token.RPAREN)
	case '「', '『', '{':
		return l.make(token.LBRACE)
	case '」', '』', '}':
		return l.make(token.RBRACE)
	case '【', '[':
		return l.make(token.LBRACKET)
	case '】', ']':
		return l.make(token.RBRACKET)
	case '；', ';':
		return l.make(token.SEMI)
	case '，', ',':
		return l.make(token.COMMA)
	case '。', '.':
		return l.make(token.DOT)
	case '：', ':':
		return l.make(token.COLON)
	case '+':
		if l.match('+') {
			return l.make(token.PLUS_PLUS)
		}
		if l.match('=') {
			return l.make(token.PLUS_EQ)
		}
		return l.make(token.PLUS)
	case '-':
		if l.match('-') {
			return l.make(token.MINUS_MINUS)
		}
		if l.match('=') {
			return l.make(token.MINUS_EQ)
		}
		return l.make(token.MINUS)
	case '*':
		return l.make(token.STAR)
	case '/':
		return l.make(token.SLASH)
	case '%':
		return l.make(token.PERCENT)
	case '=':
		return l.make(token.EQ)
	case '"':
		return l.stringLiteral(startLine)
	case '<':
		return l.make(token.EXTENDS)
	}

	l.errorf("illegal character %q", r)
	return l.make(token.ILLEGAL)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch r := l.peek(); {
		case r == ' ' || r == '\t' || r == '\r':
			l.cur++
		case r == '\n':
			l.cur++
			l.line++
		case r == '/' && l.peekNext() == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.cur++
			}
		default:
			return
		}
	}
}

// identifier scans a run of ident-start/digit runes and resolves it against
// the keyword table. Comparison and equality operators (不 等 大 小 and their
// two-rune combinations) are CJK ideographs too, so they end up here rather
// than in Scan's punctuation switch; token.LookupKeyword is what turns them
// into BANG/EQ_EQ/GREATER/LESS and friends instead of IDENT.
func (l *Lexer) identifier(startLine int) (token.Token, Value) {
	for !l.atEnd() && (isIdentStart(l.peek()) || isDigit(l.peek())) {
		l.cur++
	}
	lit := l.lexeme()
	tok := token.LookupKeyword(lit)
	return tok, Value{Lexeme: lit, Line: startLine}
}

func (l *Lexer) number(startLine int) (token.Token, Value) {
	for !l.atEnd() && isDigit(l.peek()) {
		l.cur++
	}
	if !l.atEnd() && l.peek() == '.' && isDigit(l.peekNext()) {
		l.cur++ // consume '.'
		for !l.atEnd() && isDigit(l.peek()) {
			l.cur++
		}
	}
	lit := l.lexeme()
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		l.errorf("invalid number literal %q", lit)
	}
	return token.NUMBER, Value{Lexeme: lit, Line: startLine, Number: n}
}

func (l *Lexer) stringLiteral(startLine int) (token.Token, Value) {
	var sb strings.Builder
	for !l.atEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			l.line++
		}
		sb.WriteRune(l.advance())
	}
	if l.atEnd() {
		l.errorf("unterminated string")
		return l.make(token.ILLEGAL)
	}
	l.cur++ // consume closing '"'
	return token.STRING, Value{Lexeme: l.lexeme(), Line: startLine, String: sb.String()}
}

// isIdentStart reports whether r may begin an identifier: a CJK ideograph
// (the common case for this language) or any other Unicode letter. Full-
// width and ASCII punctuation are excluded even when they fall in a letter-
// adjacent range.
func isIdentStart(r rune) bool {
	if r == '_' {
		return true
	}
	if isReservedPunct(r) || unicode.IsPunct(r) {
		return false
	}
	if r >= 0x4E00 && r <= 0x2FA1F {
		return true
	}
	return unicode.IsLetter(r)
}

func isReservedPunct(r rune) bool {
	switch r {
	case '（', '）', '「', '』', '『', '」', '【', '】', '；', '，', '。', '：':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
