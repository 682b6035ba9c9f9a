package formula

import (
	"math"
	"math/big"

	"github.com/rs/zerolog/log"
	"github.com/zephyrtronium/bigfloat"
)

// folded is an entry on the optimizer's stack: either a known constant or a
// fragment of code which depends on a variable.
type folded struct {
	known bool
	v     float64
	code  []Instr
}

func (f *folded) appendTo(dst []Instr) []Instr {
	if f.known {
		return append(dst, Instr{Op: OpConst, Num: f.v})
	}
	return append(dst, f.code...)
}

// Optimize folds every subexpression of p whose operands are all constants
// into a single constant. Instructions that depend on a variable are kept
// as they are. The result shares p's variables; p itself is not modified.
// Optimizing an optimized program gives the same instructions.
func Optimize(p *Program) (*Program, error) {
	if p == nil || len(p.code) == 0 {
		return nil, ErrEmpty
	}
	stack := make([]folded, 0, 16)
	for i, in := range p.code {
		n := in.operands()
		if n < 0 {
			return nil, &OpError{Index: i, Op: in.Op}
		}
		if n > len(stack) {
			return nil, &StackError{Func: callName(in)}
		}
		switch in.Op {
		case OpConst:
			stack = append(stack, folded{known: true, v: in.Num})
			continue
		case OpGetVar:
			stack = append(stack, folded{code: []Instr{in}})
			continue
		}
		args := stack[len(stack)-n:]
		known := true
		for k := range args {
			known = known && args[k].known
		}
		var r folded
		if known {
			v, err := fold(in, args)
			if err != nil {
				return nil, err
			}
			r = folded{known: true, v: v}
		} else {
			var code []Instr
			for k := range args {
				code = args[k].appendTo(code)
			}
			r = folded{code: append(code, in)}
		}
		stack = append(stack[:len(stack)-n], r)
	}
	code := make([]Instr, 0, len(p.code))
	for k := range stack {
		code = stack[k].appendTo(code)
	}
	log.Trace().Int("before", len(p.code)).Int("after", len(code)).Msg("optimized")
	return &Program{code: code, names: p.names}, nil
}

func callName(in Instr) string {
	if in.Op != OpCall {
		return ""
	}
	return in.Func.String()
}

// fold computes an instruction over constant operands.
func fold(in Instr, args []folded) (float64, error) {
	switch in.Op {
	case OpNeg:
		return -args[0].v, nil
	case OpFact:
		return factorial(args[0].v), nil
	case OpPow:
		if r, ok := precisePow(args[0].v, args[1].v); ok {
			return r, nil
		}
		return arith(in.Op, args[0].v, args[1].v), nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return arith(in.Op, args[0].v, args[1].v), nil
	case OpCall:
		vals := make([]float64, len(args))
		for k := range args {
			vals[k] = args[k].v
		}
		if r, ok := preciseCall(in.Func, vals); ok {
			return r, nil
		}
		return Call(in.Func, vals)
	default:
		panic("formula: fold on " + in.Op.String())
	}
}

// foldPrec is the precision in bits at which transcendental constants are
// folded before rounding once to float64.
const foldPrec = 128

// expLimit bounds arguments to exp at extended precision. Anything larger
// overflows float64 anyway.
const expLimit = 700

func preciseCall(id FuncID, args []float64) (float64, bool) {
	if len(args) != id.Arity() {
		return 0, false
	}
	switch id {
	case FuncExp:
		x := args[0]
		if math.IsNaN(x) || math.Abs(x) > expLimit {
			return 0, false
		}
		return precise(func(z *big.Float) {
			bigfloat.Exp(z, bigval(x))
		})
	case FuncLn:
		x := args[0]
		if !positive(x) {
			return 0, false
		}
		return precise(func(z *big.Float) {
			bigfloat.Log(z, bigval(x))
		})
	case FuncLog:
		if !positive(args[0]) || !positive(args[1]) || args[0] == 1 {
			return 0, false
		}
		b, x := args[0], args[1]
		return precise(func(z *big.Float) {
			lb := bigfloat.Log(new(big.Float).SetPrec(foldPrec), bigval(b))
			bigfloat.Log(z, bigval(x))
			z.Quo(z, lb)
		})
	case FuncSqrt:
		x := args[0]
		if !positive(x) {
			return 0, false
		}
		return precise(func(z *big.Float) {
			z.Sqrt(bigval(x))
		})
	default:
		return 0, false
	}
}

// precisePow computes l^r at extended precision when l is positive and the
// result is in range.
func precisePow(l, r float64) (float64, bool) {
	if !positive(l) || math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, false
	}
	if math.Abs(r*math.Log(l)) > expLimit {
		return 0, false
	}
	return precise(func(z *big.Float) {
		bigfloat.Pow(z, bigval(l), bigval(r))
	})
}

// precise runs f on a new extended-precision result and rounds it to
// float64. If bigfloat panics, e.g. with big.ErrNaN, the caller falls back to
// float64 math.
func precise(f func(z *big.Float)) (r float64, ok bool) {
	defer func() {
		if recover() != nil {
			r, ok = 0, false
		}
	}()
	z := new(big.Float).SetPrec(foldPrec)
	f(z)
	r, _ = z.Float64()
	return r, true
}

func bigval(x float64) *big.Float {
	return new(big.Float).SetPrec(foldPrec).SetFloat64(x)
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
