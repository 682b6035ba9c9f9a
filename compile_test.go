package formula

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

// Shorthands for writing expected code.
func cnst(v float64) Instr { return Instr{Op: OpConst, Num: v} }
func getvar(k int) Instr { return Instr{Op: OpGetVar, Arg: k} }
func call(f FuncID, n int) Instr { return Instr{Op: OpCall, Func: f, Arg: n} }
func op(o Opcode) Instr { return Instr{Op: o} }

func TestCompileCode(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code []Instr
	}{
		{"num", "1", []Instr{cnst(1)}},
		{"frac", "2.25", []Instr{cnst(2.25)}},
		{"ident", "x", []Instr{getvar(0)}},
		{"neg", "-x", []Instr{getvar(0), op(OpNeg)}},
		{"plus", "+x", []Instr{getvar(0)}},
		{"add", "x+1", []Instr{getvar(0), cnst(1), op(OpAdd)}},
		{"sub-chain", "2-3-4", []Instr{cnst(2), cnst(3), op(OpSub), cnst(4), op(OpSub)}},
		{"prec", "2+3*4", []Instr{cnst(2), cnst(3), cnst(4), op(OpMul), op(OpAdd)}},
		{"div", "x/2", []Instr{getvar(0), cnst(2), op(OpDiv)}},
		{"mod", "x%2", []Instr{getvar(0), cnst(2), op(OpMod)}},
		{"pow-left", "2^3^2", []Instr{cnst(2), cnst(3), op(OpPow), cnst(2), op(OpPow)}},
		{"neg-pow", "-2^2", []Instr{cnst(2), cnst(2), op(OpPow), op(OpNeg)}},
		{"mul-neg", "2*-x", []Instr{cnst(2), getvar(0), op(OpNeg), op(OpMul)}},
		{"fact", "x!", []Instr{getvar(0), op(OpFact)}},
		{"pow-fact", "2^3!", []Instr{cnst(2), cnst(3), op(OpFact), op(OpPow)}},
		{"group", "(1+2)*3", []Instr{cnst(1), cnst(2), op(OpAdd), cnst(3), op(OpMul)}},
		{"nested", "((x))", []Instr{getvar(0)}},
		{"pi", "pi", []Instr{cnst(math.Pi)}},
		{"e", "e", []Instr{cnst(math.E)}},
		{"implicit", "3x", []Instr{cnst(3), getvar(0), op(OpMul)}},
		{"implicit-space", "2 x", []Instr{cnst(2), getvar(0), op(OpMul)}},
		{"implicit-paren", "2(x)", []Instr{cnst(2), getvar(0), op(OpMul)}},
		{"implicit-groups", "(x+1)(x-1)", []Instr{getvar(0), cnst(1), op(OpAdd), getvar(0), cnst(1), op(OpSub), op(OpMul)}},
		{"implicit-pi", "2pi", []Instr{cnst(2), cnst(math.Pi), op(OpMul)}},
		{"implicit-pow", "3x^2", []Instr{cnst(3), getvar(0), cnst(2), op(OpPow), op(OpMul)}},
		{"call", "sin(x)", []Instr{getvar(0), call(FuncSin, 1)}},
		{"call2", "log(2,x)", []Instr{cnst(2), getvar(0), call(FuncLog, 2)}},
		{"call0", "sin()", []Instr{call(FuncSin, 0)}},
		{"call-expr", "sqrt(x*x+1)", []Instr{getvar(0), getvar(0), op(OpMul), cnst(1), op(OpAdd), call(FuncSqrt, 1)}},
		{"implicit-call", "2cos(x)", []Instr{cnst(2), getvar(0), call(FuncCos, 1), op(OpMul)}},
		{"spaces", " 1 +\t2\n", []Instr{cnst(1), cnst(2), op(OpAdd)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Compile(c.src)
			if err != nil {
				t.Fatalf("%q failed to compile: %v", c.src, err)
			}
			if !reflect.DeepEqual(p.code, c.code) {
				t.Errorf("%q gave wrong code:\n\twant %v\n\tgot  %v", c.src, c.code, p.code)
			}
		})
	}
}

func TestCompileVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []CompileOption
		vars []string
		code []Instr
	}{
		{"none", "1+2", nil, nil, []Instr{cnst(1), cnst(2), op(OpAdd)}},
		{"first-seen", "b+a+b", nil, []string{"b", "a"}, []Instr{getvar(0), getvar(1), op(OpAdd), getvar(0), op(OpAdd)}},
		{"predeclare", "y+x", []CompileOption{Predeclare("x")}, []string{"x", "y"}, []Instr{getvar(1), getvar(0), op(OpAdd)}},
		{"predeclare-unused", "y", []CompileOption{Predeclare("x", "x")}, []string{"x", "y"}, []Instr{getvar(1)}},
		{"disable", "sin+e", []CompileOption{DisableFuncs("sin", "e")}, []string{"sin", "e"}, []Instr{getvar(0), getvar(1), op(OpAdd)}},
		{"disable-all", "pi*exp", []CompileOption{DisableDefaultFuncs()}, []string{"pi", "exp"}, []Instr{getvar(0), getvar(1), op(OpMul)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Compile(c.src, c.opts...)
			if err != nil {
				t.Fatalf("%q failed to compile: %v", c.src, err)
			}
			if v := p.Vars(); !reflect.DeepEqual(v, c.vars) {
				t.Errorf("%q gave wrong variables: want %q, got %q", c.src, c.vars, v)
			}
			if !reflect.DeepEqual(p.code, c.code) {
				t.Errorf("%q gave wrong code:\n\twant %v\n\tgot  %v", c.src, c.code, p.code)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msgs []string
	}{
		{"empty", "", []string{"Error: Expected expression at end"}},
		{"spaces", "   ", []string{"Error: Expected expression at end"}},
		{"close", ")", []string{"Error: Expected expression at )"}},
		{"trailing", "1)", []string{"Error: Expected end of expression at )"}},
		{"unclosed", "(1", []string{"Error: Expected ')' after expression at end"}},
		{"comma", "1,2", []string{"Error: Expected end of expression at ,"}},
		{"dangling", "1+", []string{"Error: Expected expression at end"}},
		{"ops", "2++*3", []string{"Error: Expected expression at *", "Error: Expected end of expression at 3"}},
		{"char", "2$3", []string{"Error: Unexpected character at $", "Error: Expected end of expression at 3"}},
		{"chars", "x#+@y", []string{"Error: Unexpected character at #", "Error: Unexpected character at @"}},
		{"bare-func", "sin", []string{
			"Error: Expected '(' after function name at end",
			"Error: Expected expression at end",
			"Error: Expected ')' after function argument list at end",
		}},
		{"unclosed-call", "sin(x", []string{"Error: Expected ')' after function argument list at end"}},
		{"bang", "!", []string{"Error: Expected expression at !"}},
		{"range", strings.Repeat("9", 400), []string{"Error: Invalid number at " + strings.Repeat("9", 400)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := Compile(c.src)
			if err == nil {
				t.Fatalf("%q compiled to %v", c.src, p)
			}
			if p != nil {
				t.Errorf("%q gave a program along with its error", c.src)
			}
			if got, want := err.Error(), strings.Join(c.msgs, "\n"); got != want {
				t.Errorf("%q gave wrong errors:\n\twant %q\n\tgot  %q", c.src, want, got)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("%#v is not a *CompileError", err)
			}
			if len(ce.Diagnostics) != len(c.msgs) {
				t.Errorf("%q gave %d diagnostics, want %d", c.src, len(ce.Diagnostics), len(c.msgs))
			}
			var in InputError
			if !errors.As(err, &in) {
				t.Errorf("%#v does not unwrap to an InputError", err)
			}
		})
	}
}

func TestCompileErrorPos(t *testing.T) {
	_, err := Compile("1 + (2 * $)")
	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("%#v does not unwrap to a *Diagnostic", err)
	}
	// Positions count the source with whitespace removed: 1+(2*$).
	if d.Pos() != 6 || d.Lexeme != "$" {
		t.Errorf("wrong first diagnostic: want $ at 6, got %q at %d", d.Lexeme, d.Pos())
	}
}

func TestCompileTooManyArgs(t *testing.T) {
	args := strings.TrimSuffix(strings.Repeat("1,", maxArgs), ",")
	p, err := Compile("log(" + args + ")")
	if err != nil {
		t.Fatalf("%d arguments should compile: %v", maxArgs, err)
	}
	if in := p.code[len(p.code)-1]; in != call(FuncLog, maxArgs) {
		t.Errorf("wrong call: %v", in)
	}
	_, err = Compile("log(" + args + ",1)")
	if err == nil {
		t.Fatalf("%d arguments should not compile", maxArgs+1)
	}
	if !strings.Contains(err.Error(), "Cannot have more than 255 arguments") {
		t.Errorf("wrong error for too many arguments: %v", err)
	}
}

func TestPrecedenceTable(t *testing.T) {
	for kind, o := range binops {
		if o == opNone {
			continue
		}
		if r := rules[kind]; r.infix != parseBinary || r.prec == precNone {
			t.Errorf("binary operator %v has rule %+v", tokenKind(kind), r)
		}
	}
	if precFactor.next() != precPower || precPower.next() != precFactorial {
		t.Error("operand precedences out of order")
	}
	if precPrimary.next() != precPrimary {
		t.Error("primary precedence should be the highest")
	}
}
