package formula

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// Expr = num | name | const | Call | Neg | Plus | Fact | Add | Sub | Mul | Div | Mod | Pow | '(' Expr ')'
// Call = funcname '(' [ Expr { ',' Expr } ] ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Fact = Expr '!'
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr | Expr Expr
// Div = Expr '/' Expr
// Mod = Expr '%' Expr
// Pow = Expr '^' Expr

// maxArgs is the largest number of arguments a call may have.
const maxArgs = 255

// precedence is the binding strength of an operator. Higher binds tighter.
type precedence int8

const (
	precNone precedence = iota
	precTerm
	precUnary
	precFactor
	precPower
	precFactorial
	precCall
	precPrimary
)

// next returns the precedence for the right operand of a binary operator.
// Every operator is left-associative, including ^.
func (p precedence) next() precedence {
	if p >= precPrimary {
		return precPrimary
	}
	return p + 1
}

type parseFn int8

const (
	parseNone parseFn = iota
	parseUnary
	parseBinary
	parseFactorial
	parseGrouping
	parseNumber
	parseConst
	parseVariable
	parseCall
)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

// rules is the dispatch table. Token kinds without an entry cannot start or
// continue an expression.
var rules = [numTokenKinds]rule{
	tokenNum:     {prefix: parseNumber},
	tokenConst:   {prefix: parseConst},
	tokenIdent:   {prefix: parseVariable},
	tokenFunc:    {prefix: parseCall},
	tokenOpen:    {prefix: parseGrouping},
	tokenPlus:    {prefix: parseUnary, infix: parseBinary, prec: precTerm},
	tokenMinus:   {prefix: parseUnary, infix: parseBinary, prec: precTerm},
	tokenStar:    {infix: parseBinary, prec: precFactor},
	tokenSlash:   {infix: parseBinary, prec: precFactor},
	tokenPercent: {infix: parseBinary, prec: precFactor},
	tokenCaret:   {infix: parseBinary, prec: precPower},
	tokenBang:    {infix: parseFactorial, prec: precFactorial},
}

var binops = [numTokenKinds]Opcode{
	tokenPlus:    OpAdd,
	tokenMinus:   OpSub,
	tokenStar:    OpMul,
	tokenSlash:   OpDiv,
	tokenPercent: OpMod,
	tokenCaret:   OpPow,
}

// compiler holds the state of a single compilation. Code is appended to the
// output as productions are recognized; there is no syntax tree.
type compiler struct {
	scan  *scanner
	prev  token
	cur   token
	code  []Instr
	names []string
	slots map[string]int
	diags []*Diagnostic
}

// Compile compiles a formula. Whitespace in src is ignored. If the source has
// any problems, the error is a *CompileError listing all of them.
func Compile(src string, opts ...CompileOption) (*Program, error) {
	c := compiler{
		scan:  scan(stripSpace(src)),
		slots: make(map[string]int),
	}
	for _, opt := range opts {
		opt.compileOption(&c)
	}
	c.advance()
	c.expression()
	if c.cur.kind != tokenEOF {
		c.errorAt(c.cur, "Expected end of expression")
	}
	if len(c.diags) != 0 {
		log.Trace().Str("src", src).Int("errors", len(c.diags)).Msg("compile failed")
		return nil, &CompileError{Diagnostics: c.diags}
	}
	log.Trace().Str("src", src).Int("instructions", len(c.code)).Strs("vars", c.names).Msg("compiled")
	return &Program{code: c.code, names: c.names}, nil
}

// CompileOptimized compiles a formula and folds its constant subexpressions.
func CompileOptimized(src string, opts ...CompileOption) (*Program, error) {
	p, err := Compile(src, opts...)
	if err != nil {
		return nil, err
	}
	return Optimize(p)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func (c *compiler) emit(in Instr) {
	c.code = append(c.code, in)
}

// slot finds or assigns the slot for a variable name.
func (c *compiler) slot(name string) int {
	if k, ok := c.slots[name]; ok {
		return k
	}
	k := len(c.names)
	c.slots[name] = k
	c.names = append(c.names, name)
	return k
}

func (c *compiler) errorAt(tok token, msg string) {
	c.diags = append(c.diags, &Diagnostic{Col: tok.pos, Lexeme: tok.text, Msg: msg})
}

// advance moves to the next token. Unrecognized characters are recorded and
// skipped so that scanning continues past them.
func (c *compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.next()
		if c.cur.kind != tokenError {
			return
		}
		c.errorAt(c.cur, c.cur.msg)
	}
}

// match consumes the current token if it has the given kind.
func (c *compiler) match(kind tokenKind) bool {
	if c.cur.kind != kind {
		return false
	}
	c.advance()
	return true
}

// consume consumes the current token, recording msg if it is not of the
// expected kind.
func (c *compiler) consume(kind tokenKind, msg string) {
	c.advance()
	if c.prev.kind != kind {
		c.errorAt(c.prev, msg)
	}
}

func (c *compiler) expression() {
	c.parsePrecedence(precTerm)
}

// parsePrecedence compiles a prefix expression followed by any infix
// operators which bind at least as tightly as prec.
func (c *compiler) parsePrecedence(prec precedence) {
	c.advance()
	c.dispatch(rules[c.prev.kind].prefix)
	for prec <= rules[c.cur.kind].prec {
		c.advance()
		c.dispatch(rules[c.prev.kind].infix)
	}
}

func (c *compiler) dispatch(fn parseFn) {
	switch fn {
	case parseNone:
		c.errorAt(c.prev, "Expected expression")
	case parseUnary:
		c.unary()
	case parseBinary:
		c.binary()
	case parseFactorial:
		c.emit(Instr{Op: OpFact})
	case parseGrouping:
		c.expression()
		c.consume(tokenClose, "Expected ')' after expression")
	case parseNumber:
		c.number()
	case parseConst:
		c.emit(Instr{Op: OpConst, Num: c.prev.val})
	case parseVariable:
		c.emit(Instr{Op: OpGetVar, Arg: c.slot(c.prev.text)})
	case parseCall:
		c.call()
	default:
		panic("formula: invalid parse function " + strconv.Itoa(int(fn)))
	}
}

func (c *compiler) number() {
	// The scanner only checks the shape of the literal. It can still be out
	// of range.
	v, err := strconv.ParseFloat(c.prev.text, 64)
	if err != nil {
		c.errorAt(c.prev, "Invalid number")
		return
	}
	c.emit(Instr{Op: OpConst, Num: v})
}

func (c *compiler) unary() {
	op := c.prev.kind
	c.parsePrecedence(precUnary)
	if op == tokenMinus {
		c.emit(Instr{Op: OpNeg})
	}
}

func (c *compiler) binary() {
	op := c.prev.kind
	c.parsePrecedence(rules[op].prec.next())
	c.emit(Instr{Op: binops[op]})
}

func (c *compiler) call() {
	fn := c.prev.fn
	c.consume(tokenOpen, "Expected '(' after function name")
	n := c.arguments()
	c.emit(Instr{Op: OpCall, Func: fn, Arg: n})
}

// arguments compiles a comma-separated argument list through the closing
// bracket and returns the number of arguments.
func (c *compiler) arguments() int {
	n := 0
	if c.cur.kind != tokenClose {
		for {
			c.expression()
			if n == maxArgs {
				c.errorAt(c.prev, "Cannot have more than "+strconv.Itoa(maxArgs)+" arguments")
			}
			n++
			if !c.match(tokenComma) {
				break
			}
		}
	}
	c.consume(tokenClose, "Expected ')' after function argument list")
	return n
}
