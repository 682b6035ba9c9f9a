package formula

import (
	"strconv"
	"unicode/utf8"
)

type token struct {
	kind tokenKind
	// text is the source lexeme. Implicit multiplications have no text.
	text string
	// msg describes the problem for tokenError.
	msg string
	// fn is the builtin for tokenFunc.
	fn FuncID
	// val is the value of tokenConst.
	val float64
	// pos is the 1-based column of the token in the stripped source.
	pos int
}

func (t token) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input. The scanner returns it
	// indefinitely once the input is exhausted.
	tokenEOF
	// tokenError is an unrecognized character.
	tokenError
	// tokenNum is a number literal. Its value is parsed by the compiler.
	tokenNum
	// tokenConst is one of the named constants pi or e.
	tokenConst
	// tokenIdent is a variable name.
	tokenIdent
	// tokenFunc is a builtin function name.
	tokenFunc
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenCaret
	tokenPercent
	tokenBang
	tokenOpen
	tokenClose
	tokenComma
	numTokenKinds
)

var tokenKindNames = [numTokenKinds]string{
	tokenNone:    "None",
	tokenEOF:     "EOF",
	tokenError:   "Error",
	tokenNum:     "Num",
	tokenConst:   "Const",
	tokenIdent:   "Ident",
	tokenFunc:    "Func",
	tokenPlus:    "Plus",
	tokenMinus:   "Minus",
	tokenStar:    "Star",
	tokenSlash:   "Slash",
	tokenCaret:   "Caret",
	tokenPercent: "Percent",
	tokenBang:    "Bang",
	tokenOpen:    "Open",
	tokenClose:   "Close",
	tokenComma:   "Comma",
}

func (k tokenKind) String() string {
	if k < 0 || k >= numTokenKinds {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// opkinds maps operator and punctuation bytes to their token kinds.
var opkinds = [...]tokenKind{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'^': tokenCaret,
	'%': tokenPercent,
	'!': tokenBang,
	'(': tokenOpen,
	')': tokenClose,
	',': tokenComma,
}

// scanner produces tokens on demand from source text which has already had
// its whitespace removed.
type scanner struct {
	src string
	// cur is the byte offset of the next unread byte. start is the offset of
	// the token being scanned.
	cur, start int
	// col is the number of runes consumed before cur.
	col int
	// mult records whether the last token was a value, so that a following
	// letter or ( is an implicit multiplication.
	mult bool
	// disabled holds reserved names which scan as plain identifiers.
	disabled map[string]bool
}

func scan(src string) *scanner {
	return &scanner{src: src}
}

// next scans the next token.
func (s *scanner) next() token {
	s.start = s.cur
	pos := s.col + 1
	if s.cur >= len(s.src) {
		return token{kind: tokenEOF, pos: pos}
	}
	c := s.src[s.cur]
	switch {
	case isDigit(c):
		s.mult = true
		return s.number(pos)
	case isAlpha(c):
		if s.mult {
			s.mult = false
			return token{kind: tokenStar, pos: pos}
		}
		return s.ident(pos)
	}
	var kind tokenKind
	if int(c) < len(opkinds) {
		kind = opkinds[c]
	}
	if kind == tokenNone {
		// Consume the whole rune so the error shows the character.
		_, sz := utf8.DecodeRuneInString(s.src[s.cur:])
		s.advance(sz)
		s.mult = false
		return token{kind: tokenError, text: s.src[s.start:s.cur], msg: "Unexpected character", pos: pos}
	}
	if kind == tokenOpen && s.mult {
		// 2(x) -> 2*(x). Leave the bracket for the next call.
		s.mult = false
		return token{kind: tokenStar, pos: pos}
	}
	s.advance(1)
	s.mult = kind == tokenClose
	return token{kind: kind, text: s.src[s.start:s.cur], pos: pos}
}

// number scans digits, optionally followed by a fraction. The lexeme is only
// checked for shape.
func (s *scanner) number(pos int) token {
	for s.cur < len(s.src) && isDigit(s.src[s.cur]) {
		s.advance(1)
	}
	if s.cur+1 < len(s.src) && s.src[s.cur] == '.' && isDigit(s.src[s.cur+1]) {
		s.advance(1)
		for s.cur < len(s.src) && isDigit(s.src[s.cur]) {
			s.advance(1)
		}
	}
	return token{kind: tokenNum, text: s.src[s.start:s.cur], pos: pos}
}

// ident scans a maximal run of letters, digits, and underscores, then decides
// whether it is a builtin function, a constant, or a variable.
func (s *scanner) ident(pos int) token {
	for s.cur < len(s.src) && (isAlpha(s.src[s.cur]) || isDigit(s.src[s.cur])) {
		s.advance(1)
	}
	tok := token{kind: tokenIdent, text: s.src[s.start:s.cur], pos: pos}
	s.mult = true
	if s.disabled[tok.text] {
		return tok
	}
	if id, ok := funcnames[tok.text]; ok {
		// sin(x) must not become sin*(x).
		s.mult = false
		tok.kind = tokenFunc
		tok.fn = id
		return tok
	}
	if v, ok := constants[tok.text]; ok {
		tok.kind = tokenConst
		tok.val = v
	}
	return tok
}

// advance consumes one rune which is n bytes long.
func (s *scanner) advance(n int) {
	s.cur += n
	s.col++
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}
