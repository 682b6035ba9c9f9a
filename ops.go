package formula

import (
	"strconv"
	"strings"
)

// Opcode is the kind of a bytecode instruction.
type Opcode uint8

const (
	opNone Opcode = iota

	OpConst  // push Num
	OpAdd    // pop r, pop l, push l+r
	OpSub    // pop r, pop l, push l-r
	OpMul    // pop r, pop l, push l*r
	OpDiv    // pop r, pop l, push l/r
	OpPow    // pop r, pop l, push l^r
	OpMod    // pop r, pop l, push remainder of l/r with the sign of l
	OpNeg    // pop x, push -x
	OpFact   // pop x, push Γ(x+1)
	OpCall   // pop Arg values, push Func(values...)
	OpGetVar // push values[Arg]

	numOpcodes
)

var opnames = [numOpcodes]string{
	opNone:   "none",
	OpConst:  "const",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpDiv:    "div",
	OpPow:    "pow",
	OpMod:    "mod",
	OpNeg:    "neg",
	OpFact:   "fact",
	OpCall:   "call",
	OpGetVar: "getvar",
}

func (op Opcode) String() string {
	if op >= numOpcodes {
		return "Opcode(" + strconv.Itoa(int(op)) + ")"
	}
	return opnames[op]
}

// Instr is a single bytecode instruction.
type Instr struct {
	Op Opcode
	// Num is the value pushed by OpConst.
	Num float64
	// Func is the function called by OpCall.
	Func FuncID
	// Arg is the argument count of OpCall or the variable slot of OpGetVar.
	Arg int
}

// operands returns the number of stack values the instruction consumes, or
// -1 if the instruction is invalid.
func (in Instr) operands() int {
	switch in.Op {
	case OpConst, OpGetVar:
		return 0
	case OpNeg, OpFact:
		return 1
	case OpAdd, OpSub, OpMul, OpDiv, OpPow, OpMod:
		return 2
	case OpCall:
		return in.Arg
	default:
		return -1
	}
}

func (in Instr) String() string {
	switch in.Op {
	case OpConst:
		return "const " + strconv.FormatFloat(in.Num, 'g', -1, 64)
	case OpCall:
		return "call " + in.Func.String() + " " + strconv.Itoa(in.Arg)
	case OpGetVar:
		return "getvar " + strconv.Itoa(in.Arg)
	default:
		return in.Op.String()
	}
}

// Program is a compiled formula: a linear instruction list plus the names of
// the variables it reads, in slot order. A Program is immutable and safe to
// run from any number of goroutines at once.
type Program struct {
	code  []Instr
	names []string
}

// Vars returns the variable names of the program in slot order. Values passed
// to Run must be ordered the same way.
func (p *Program) Vars() []string {
	return append(([]string)(nil), p.names...)
}

// Slot returns the slot of a variable name, or -1 if the program has no such
// variable.
func (p *Program) Slot(name string) int {
	for i, v := range p.names {
		if v == name {
			return i
		}
	}
	return -1
}

// Code returns a copy of the program's instructions.
func (p *Program) Code() []Instr {
	return append(([]Instr)(nil), p.code...)
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int {
	return len(p.code)
}

// name gets the variable name for a slot for use in error messages.
func (p *Program) name(slot int) string {
	if slot < 0 || slot >= len(p.names) {
		return "#" + strconv.Itoa(slot)
	}
	return p.names[slot]
}

// Bind lines up named values in slot order. Every variable of the program
// must have a value.
func (p *Program) Bind(vars map[string]float64) ([]float64, error) {
	values := make([]float64, len(p.names))
	for i, name := range p.names {
		v, ok := vars[name]
		if !ok {
			return nil, &NameError{Name: name}
		}
		values[i] = v
	}
	return values, nil
}

// String disassembles the program into a numbered instruction listing.
func (p *Program) String() string {
	var b strings.Builder
	for i, in := range p.code {
		if i < 10 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteString("| ")
		b.WriteString(in.String())
		if in.Op == OpGetVar {
			b.WriteString(" (")
			b.WriteString(p.name(in.Arg))
			b.WriteByte(')')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
