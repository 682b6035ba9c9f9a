package formula

import (
	"math"
	"testing"
)

func TestScan(t *testing.T) {
	const bad = "Unexpected character"
	cases := []struct {
		src    string
		tokens []token
	}{
		{"", nil},
		// numbers
		{"0", []token{{kind: tokenNum, text: "0", pos: 1}}},
		{"9876543210", []token{{kind: tokenNum, text: "9876543210", pos: 1}}},
		{"1.5", []token{{kind: tokenNum, text: "1.5", pos: 1}}},
		{"1.", []token{{kind: tokenNum, text: "1", pos: 1}, {kind: tokenError, text: ".", msg: bad, pos: 2}}},
		{".5", []token{{kind: tokenError, text: ".", msg: bad, pos: 1}, {kind: tokenNum, text: "5", pos: 2}}},
		{"1.2.3", []token{{kind: tokenNum, text: "1.2", pos: 1}, {kind: tokenError, text: ".", msg: bad, pos: 4}, {kind: tokenNum, text: "3", pos: 5}}},
		// identifiers and keywords
		{"x", []token{{kind: tokenIdent, text: "x", pos: 1}}},
		{"_a1", []token{{kind: tokenIdent, text: "_a1", pos: 1}}},
		{"sinx", []token{{kind: tokenIdent, text: "sinx", pos: 1}}},
		{"si", []token{{kind: tokenIdent, text: "si", pos: 1}}},
		{"sin", []token{{kind: tokenFunc, text: "sin", fn: FuncSin, pos: 1}}},
		{"sinh", []token{{kind: tokenFunc, text: "sinh", fn: FuncSinh, pos: 1}}},
		{"log", []token{{kind: tokenFunc, text: "log", fn: FuncLog, pos: 1}}},
		{"exp", []token{{kind: tokenFunc, text: "exp", fn: FuncExp, pos: 1}}},
		{"pi", []token{{kind: tokenConst, text: "pi", val: math.Pi, pos: 1}}},
		{"e", []token{{kind: tokenConst, text: "e", val: math.E, pos: 1}}},
		{"e1", []token{{kind: tokenIdent, text: "e1", pos: 1}}},
		// operators
		{"+-*/^%!(),", []token{
			{kind: tokenPlus, text: "+", pos: 1},
			{kind: tokenMinus, text: "-", pos: 2},
			{kind: tokenStar, text: "*", pos: 3},
			{kind: tokenSlash, text: "/", pos: 4},
			{kind: tokenCaret, text: "^", pos: 5},
			{kind: tokenPercent, text: "%", pos: 6},
			{kind: tokenBang, text: "!", pos: 7},
			{kind: tokenOpen, text: "(", pos: 8},
			{kind: tokenClose, text: ")", pos: 9},
			{kind: tokenComma, text: ",", pos: 10},
		}},
		// implicit multiplication
		{"3x", []token{{kind: tokenNum, text: "3", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenIdent, text: "x", pos: 2}}},
		{"3(", []token{{kind: tokenNum, text: "3", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenOpen, text: "(", pos: 2}}},
		{"x(", []token{{kind: tokenIdent, text: "x", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenOpen, text: "(", pos: 2}}},
		{"2pi", []token{{kind: tokenNum, text: "2", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenConst, text: "pi", val: math.Pi, pos: 2}}},
		{"pi(", []token{{kind: tokenConst, text: "pi", val: math.Pi, pos: 1}, {kind: tokenStar, pos: 3}, {kind: tokenOpen, text: "(", pos: 3}}},
		{")x", []token{{kind: tokenClose, text: ")", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenIdent, text: "x", pos: 2}}},
		{"sin(", []token{{kind: tokenFunc, text: "sin", fn: FuncSin, pos: 1}, {kind: tokenOpen, text: "(", pos: 4}}},
		{"2sin", []token{{kind: tokenNum, text: "2", pos: 1}, {kind: tokenStar, pos: 2}, {kind: tokenFunc, text: "sin", fn: FuncSin, pos: 2}}},
		{"x+y", []token{{kind: tokenIdent, text: "x", pos: 1}, {kind: tokenPlus, text: "+", pos: 2}, {kind: tokenIdent, text: "y", pos: 3}}},
		{"x!y", []token{{kind: tokenIdent, text: "x", pos: 1}, {kind: tokenBang, text: "!", pos: 2}, {kind: tokenIdent, text: "y", pos: 3}}},
		{"32", []token{{kind: tokenNum, text: "32", pos: 1}}},
		// erroneous symbols
		{"$", []token{{kind: tokenError, text: "$", msg: bad, pos: 1}}},
		{"a$b", []token{{kind: tokenIdent, text: "a", pos: 1}, {kind: tokenError, text: "$", msg: bad, pos: 2}, {kind: tokenIdent, text: "b", pos: 3}}},
		{"π2", []token{{kind: tokenError, text: "π", msg: bad, pos: 1}, {kind: tokenNum, text: "2", pos: 2}}},
		{"$$", []token{{kind: tokenError, text: "$", msg: bad, pos: 1}, {kind: tokenError, text: "$", msg: bad, pos: 2}}},
	}
	for _, c := range cases {
		s := scan(c.src)
		for _, want := range c.tokens {
			got := s.next()
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
		}
		if got := s.next(); got.kind != tokenEOF {
			t.Errorf("scanning %q: extra token %v", c.src, got)
		}
	}
}

func TestScanEOFRepeats(t *testing.T) {
	s := scan("1")
	s.next()
	for i := 0; i < 3; i++ {
		if got := s.next(); got.kind != tokenEOF || got.pos != 2 {
			t.Errorf("scan %d past the end: want EOF@2, got %v", i, got)
		}
	}
}

func TestScanDisabled(t *testing.T) {
	s := scan("sin(pi)")
	s.disabled = map[string]bool{"sin": true, "pi": true}
	want := []token{
		{kind: tokenIdent, text: "sin", pos: 1},
		{kind: tokenStar, pos: 4},
		{kind: tokenOpen, text: "(", pos: 4},
		{kind: tokenIdent, text: "pi", pos: 5},
		{kind: tokenClose, text: ")", pos: 7},
		{kind: tokenEOF, pos: 8},
	}
	for _, w := range want {
		if got := s.next(); got != w {
			t.Errorf("want %v, got %v", w, got)
		}
	}
}
