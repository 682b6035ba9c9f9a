package formula

import (
	"math"
	"sort"
	"strconv"
)

// FuncID identifies a builtin function. The zero value and anything past the
// last builtin are not functions.
type FuncID uint8

const (
	funcNone FuncID = iota
	FuncSin
	FuncAsin
	FuncSinh
	FuncCos
	FuncAcos
	FuncCosh
	FuncTan
	FuncAtan
	FuncTanh
	FuncLn
	FuncLog
	FuncSqrt
	FuncAbs
	FuncFloor
	FuncCeil
	FuncRound
	FuncTrunc
	FuncExp
	numFuncs
)

type builtin struct {
	name  string
	arity int
	// f evaluates monadic builtins. log is the only builtin without one.
	f func(float64) float64
}

var builtins = [numFuncs]builtin{
	FuncSin:   {"sin", 1, math.Sin},
	FuncAsin:  {"asin", 1, math.Asin},
	FuncSinh:  {"sinh", 1, math.Sinh},
	FuncCos:   {"cos", 1, math.Cos},
	FuncAcos:  {"acos", 1, math.Acos},
	FuncCosh:  {"cosh", 1, math.Cosh},
	FuncTan:   {"tan", 1, math.Tan},
	FuncAtan:  {"atan", 1, math.Atan},
	FuncTanh:  {"tanh", 1, math.Tanh},
	FuncLn:    {"ln", 1, math.Log},
	FuncLog:   {"log", 2, nil},
	FuncSqrt:  {"sqrt", 1, math.Sqrt},
	FuncAbs:   {"abs", 1, math.Abs},
	FuncFloor: {"floor", 1, math.Floor},
	FuncCeil:  {"ceil", 1, math.Ceil},
	FuncRound: {"round", 1, math.Round},
	FuncTrunc: {"trunc", 1, math.Trunc},
	FuncExp:   {"exp", 1, math.Exp},
}

// constants are the reserved names which the scanner turns into literals.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var funcnames = func() map[string]FuncID {
	m := make(map[string]FuncID, numFuncs)
	for id := FuncSin; id < numFuncs; id++ {
		m[builtins[id].name] = id
	}
	return m
}()

func (id FuncID) valid() bool {
	return id != funcNone && id < numFuncs
}

func (id FuncID) String() string {
	if !id.valid() {
		return "FuncID(" + strconv.Itoa(int(id)) + ")"
	}
	return builtins[id].name
}

// Arity returns the number of arguments the function requires, or -1 if id
// is not a builtin function.
func (id FuncID) Arity() int {
	if !id.valid() {
		return -1
	}
	return builtins[id].arity
}

// LookupFunc finds a builtin function by name.
func LookupFunc(name string) (FuncID, bool) {
	id, ok := funcnames[name]
	return id, ok
}

// Builtins returns the sorted list of reserved names: every builtin function
// plus the constants pi and e.
func Builtins() []string {
	names := make([]string, 0, len(funcnames)+len(constants))
	for name := range funcnames {
		names = append(names, name)
	}
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call evaluates a builtin function. args are in declaration order, so for
// log the base comes first: log(b, x) is the base-b logarithm of x.
func Call(id FuncID, args []float64) (float64, error) {
	if !id.valid() {
		return 0, &FuncError{ID: id}
	}
	b := &builtins[id]
	if len(args) != b.arity {
		return 0, &ArityError{Func: b.name, Want: b.arity, Got: len(args)}
	}
	if id == FuncLog {
		return math.Log(args[1]) / math.Log(args[0]), nil
	}
	return b.f(args[0]), nil
}

// factorial is the generalized factorial Γ(x+1). Negative integers are poles
// and produce ±Inf or NaN rather than an error.
func factorial(x float64) float64 {
	return math.Gamma(x + 1)
}
