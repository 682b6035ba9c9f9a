// Package formula compiles real-valued formulas to bytecode and evaluates
// them many times over.
//
// The syntax is what you'd type into a plotter: "3x+sin(pi*x^2/4)" is three
// times x plus a sine. Whitespace is ignored entirely, so "2 3" is 23 and
// "sin x" is a variable named sinx. A number, variable, constant, or closing
// bracket followed by a letter or an opening bracket is a multiplication.
// Operators are, loosest first: + and -, unary - and +, * / and %, ^, and
// postfix ! (the gamma-function factorial). All binary operators are
// left-associative, so "2^3^2" is 64.
//
// Compile turns a formula into a Program once; Run evaluates it for each set
// of variable values, in the order given by Program.Vars. Optimize folds the
// constant parts of a program ahead of time. Programs are immutable, and Run
// uses only a fixed-size stack, so one Program can be sampled from many
// goroutines at once.
package formula
