package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zephyrtronium/formula"
)

// errQuit is returned by session.eval when the user asks to leave.
var errQuit = errors.New("quit")

// session holds variable bindings shared by every formula a user evaluates,
// whether from arguments, an input file, or the REPL.
type session struct {
	env map[string]float64
	// opt selects whether formulas are optimized before running.
	opt bool
	// disasm prints the bytecode of each formula before its result.
	disasm bool
	// verb is the fmt verb for results.
	verb string
}

func newSession() *session {
	return &session{env: make(map[string]float64), opt: true, verb: "%g"}
}

func (s *session) compile(src string, opts ...formula.CompileOption) (*formula.Program, error) {
	if s.opt {
		return formula.CompileOptimized(src, opts...)
	}
	return formula.Compile(src, opts...)
}

// value evaluates a formula against the session's bindings.
func (s *session) value(src string) (float64, *formula.Program, error) {
	p, err := s.compile(src)
	if err != nil {
		return 0, nil, err
	}
	values, err := p.Bind(s.env)
	if err != nil {
		return 0, p, err
	}
	r, err := p.Run(values)
	return r, p, err
}

// assign evaluates src and binds the result to name.
func (s *session) assign(name, src string) (float64, error) {
	if !isName(name) {
		return 0, fmt.Errorf("%q is not a variable name", name)
	}
	r, _, err := s.value(src)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", name, err)
	}
	log.Debug().Str("name", name).Float64("value", r).Msg("bound variable")
	s.env[name] = r
	return r, nil
}

// eval handles one line of input. A line is a formula, an assignment
// name = formula, or a command starting with a colon.
func (s *session) eval(line string) (string, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	if name, src, ok := strings.Cut(line, "="); ok {
		name = strings.TrimSpace(name)
		r, err := s.assign(name, src)
		if err != nil {
			return "", err
		}
		return name + " = " + fmt.Sprintf(s.verb, r), nil
	}
	r, p, err := s.value(line)
	var b strings.Builder
	if s.disasm && p != nil {
		b.WriteString(p.String())
	}
	if err != nil {
		return b.String(), err
	}
	fmt.Fprintf(&b, s.verb, r)
	return b.String(), nil
}

func (s *session) command(line string) (string, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case ":q", ":quit":
		return "", errQuit
	case ":dis":
		p, err := s.compile(arg)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(p.String(), "\n"), nil
	case ":vars":
		names := make([]string, 0, len(s.env))
		for name := range s.env {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for i, name := range names {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(name + " = " + fmt.Sprintf(s.verb, s.env[name]))
		}
		return b.String(), nil
	case ":builtins":
		return strings.Join(formula.Builtins(), " "), nil
	default:
		return "", fmt.Errorf("unknown command %s; try :dis, :vars, :builtins, or :quit", cmd)
	}
}

// describe renders an error for the user, suggesting a known name when a
// variable is unbound.
func (s *session) describe(err error) string {
	var ne *formula.NameError
	if errors.As(err, &ne) {
		if h := hint(ne.Name, s.names()); h != "" {
			return err.Error() + " (did you mean " + h + "?)"
		}
	}
	return err.Error()
}

// names lists the bound names and the builtins, sorted.
func (s *session) names() []string {
	names := formula.Builtins()
	for name := range s.env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isName reports whether s scans as a single variable name.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	if _, ok := formula.LookupFunc(s); ok {
		return false
	}
	return s != "pi" && s != "e"
}
