package formula

// CompileOption is an option for compiling.
type CompileOption interface {
	compileOption(*compiler)
}

type (
	predeclareopt []string
	disableopt    []string
)

// Predeclare assigns slots to variable names before compiling, in order, so
// that callers can rely on their positions in the values passed to Run. The
// names appear in Vars even if the source never uses them. Predeclaring a
// reserved name only reserves a slot unless the name is also disabled.
func Predeclare(names ...string) CompileOption {
	return predeclareopt(names)
}

func (o predeclareopt) compileOption(c *compiler) {
	for _, name := range o {
		c.slot(name)
	}
}

// DisableFuncs makes builtin function and constant names scan as variables.
func DisableFuncs(names ...string) CompileOption {
	return disableopt(names)
}

func (o disableopt) compileOption(c *compiler) {
	if c.scan.disabled == nil {
		c.scan.disabled = make(map[string]bool, len(o))
	}
	for _, name := range o {
		c.scan.disabled[name] = true
	}
}

// DisableDefaultFuncs disables every builtin function and constant. Their
// names will be compiled as variables instead.
func DisableDefaultFuncs() CompileOption {
	return disableopt(Builtins())
}
