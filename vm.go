package formula

import "math"

// StackSize is the maximum depth of the value stack during Run.
const StackSize = 64

// stack is a fixed-capacity stack of values. It never grows.
type stack struct {
	xs [StackSize]float64
	n  int
}

func (s *stack) push(v float64) bool {
	if s.n >= StackSize {
		return false
	}
	s.xs[s.n] = v
	s.n++
	return true
}

func (s *stack) pop() (float64, bool) {
	if s.n == 0 {
		return 0, false
	}
	s.n--
	return s.xs[s.n], true
}

var (
	errOverflow  = &StackError{Overflow: true}
	errUnderflow = &StackError{}
)

// Run evaluates a program with the given variable values, ordered as
// p.Vars(). Extra values are ignored; a missing value is an error only if
// the program reads it. Run keeps no state between calls and does not
// allocate unless it fails, so a program may be run concurrently.
func Run(p *Program, values []float64) (float64, error) {
	if p == nil || len(p.code) == 0 {
		return 0, ErrEmpty
	}
	var s stack
	for i, in := range p.code {
		switch in.Op {
		case OpConst:
			if !s.push(in.Num) {
				return 0, errOverflow
			}
		case OpGetVar:
			if in.Arg < 0 || in.Arg >= len(values) {
				return 0, &NameError{Name: p.name(in.Arg)}
			}
			if !s.push(values[in.Arg]) {
				return 0, errOverflow
			}
		case OpAdd, OpSub, OpMul, OpDiv, OpPow, OpMod:
			// Operands were pushed left then right.
			r, ok := s.pop()
			if !ok {
				return 0, errUnderflow
			}
			l, ok := s.pop()
			if !ok {
				return 0, errUnderflow
			}
			s.push(arith(in.Op, l, r))
		case OpNeg:
			x, ok := s.pop()
			if !ok {
				return 0, errUnderflow
			}
			s.push(-x)
		case OpFact:
			x, ok := s.pop()
			if !ok {
				return 0, errUnderflow
			}
			s.push(factorial(x))
		case OpCall:
			if in.Arg < 0 || in.Arg > s.n {
				return 0, &StackError{Func: in.Func.String()}
			}
			// The arguments are already in declaration order at the top of
			// the stack.
			r, err := Call(in.Func, s.xs[s.n-in.Arg:s.n])
			if err != nil {
				return 0, err
			}
			s.n -= in.Arg
			if !s.push(r) {
				return 0, errOverflow
			}
		default:
			return 0, &OpError{Index: i, Op: in.Op}
		}
	}
	r, ok := s.pop()
	if !ok {
		return 0, errUnderflow
	}
	return r, nil
}

// Run evaluates the program. It is a shortcut for Run(p, values).
func (p *Program) Run(values []float64) (float64, error) {
	return Run(p, values)
}

// arith applies a binary operator.
func arith(op Opcode, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	case OpPow:
		return math.Pow(l, r)
	case OpMod:
		return math.Mod(l, r)
	default:
		panic("formula: arith on " + op.String())
	}
}
