package formula

import (
	"errors"
	"strconv"
	"strings"
)

// Diagnostic is a single problem found while compiling. It implements
// InputError.
type Diagnostic struct {
	// Col is the 1-based column of the offending token, counted in runes of
	// the source with whitespace removed.
	Col int
	// Lexeme is the offending token's text. It is empty at the end of the
	// input.
	Lexeme string
	// Msg describes the problem.
	Msg string
}

func (d *Diagnostic) Error() string {
	at := d.Lexeme
	if at == "" {
		at = "end"
	}
	return "Error: " + d.Msg + " at " + at
}

func (d *Diagnostic) Pos() int {
	return d.Col
}

// CompileError is the result of compiling invalid source. It holds every
// problem the compiler found rather than only the first.
type CompileError struct {
	Diagnostics []*Diagnostic
}

// Error lists the diagnostics one per line.
func (err *CompileError) Error() string {
	var b strings.Builder
	for i, d := range err.Diagnostics {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}

func (err *CompileError) Unwrap() []error {
	r := make([]error, len(err.Diagnostics))
	for i, d := range err.Diagnostics {
		r[i] = d
	}
	return r
}

// InputError is an error with position information. Every diagnostic
// resulting from invalid source implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based column of the token that caused the error.
	Pos() int
}

var _ InputError = (*Diagnostic)(nil)

// ErrEmpty is returned when running or optimizing a program with no
// instructions.
var ErrEmpty = errors.New("no instructions provided")

// NameError is an error from running a program without a value for a
// variable it reads.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: `" + err.Name + "`"
}

// StackError is an error from exceeding the bounds of the value stack.
type StackError struct {
	// Overflow is true if a push exceeded StackSize and false for underflow.
	Overflow bool
	// Func names the function whose arguments were missing, if any.
	Func string
}

func (err *StackError) Error() string {
	switch {
	case err.Overflow:
		return "stack overflow (max " + strconv.Itoa(StackSize) + ")"
	case err.Func != "":
		return "not enough arguments for function " + err.Func + " (stack underflow)"
	default:
		return "stack underflow"
	}
}

// ArityError is an error from calling a function with the wrong number of
// arguments.
type ArityError struct {
	// Func is the function's name.
	Func string
	// Want is the number of arguments the function requires.
	Want int
	// Got is the number of arguments it was called with.
	Got int
}

func (err *ArityError) Error() string {
	return "function " + err.Func + " expects " + strconv.Itoa(err.Want) + " arguments, but " + strconv.Itoa(err.Got) + " were given"
}

// FuncError is an error from calling a function ID that does not exist.
type FuncError struct {
	ID FuncID
}

func (err *FuncError) Error() string {
	return "function with id " + strconv.Itoa(int(err.ID)) + " does not exist"
}

// OpError is an error from an instruction the optimizer or virtual machine
// does not understand.
type OpError struct {
	// Index is the position of the instruction in the program.
	Index int
	Op    Opcode
}

func (err *OpError) Error() string {
	return "invalid instruction " + err.Op.String() + " at " + strconv.Itoa(err.Index)
}
