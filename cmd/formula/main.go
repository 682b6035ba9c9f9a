package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()
	var (
		inname, plotname string
		with             [][2]string
		echo, verbose    bool
		interactive      bool
	)
	s := newSession()
	addwith := func(v string) error {
		d := strings.SplitN(v, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, v)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file with one formula per line (default stdin if no args given)")
	flag.StringVar(&s.verb, "fmt", "%g", "result formatting string")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.BoolVar(&s.opt, "O", true, "fold constants before evaluating")
	flag.BoolVar(&s.disasm, "disasm", false, "print bytecode before each result")
	flag.BoolVar(&echo, "echo", false, "print each formula before its result")
	flag.StringVar(&plotname, "plot", "", "YAML plot file to sample; writes CSV to stdout")
	flag.BoolVar(&interactive, "i", false, "start an interactive session after evaluating inputs")
	flag.BoolVar(&verbose, "v", false, "log compiler and optimizer traces")
	flag.Parse()
	setupLog(verbose)

	for _, d := range with {
		if _, err := s.assign(d[0], d[1]); err != nil {
			log.Fatal().Msg(s.describe(err))
		}
	}

	if plotname != "" {
		if err := plot(s, plotname, os.Stdout); err != nil {
			log.Fatal().Err(err).Str("file", plotname).Msg("plot failed")
		}
		return
	}

	var srcs []string
	in, err := infile(inname, flag.NArg() == 0 && !interactive)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't open input")
	}
	if in != nil {
		srcs, err = readLines(in)
		if err != nil {
			log.Fatal().Err(err).Msg("couldn't read input")
		}
	}
	srcs = append(srcs, flag.Args()...)

	failed := false
	for _, src := range srcs {
		if echo {
			fmt.Printf("%s : ", src)
		}
		out, err := s.eval(src)
		if out != "" {
			fmt.Println(out)
		}
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			if echo && out == "" {
				fmt.Println()
			}
			fmt.Fprintln(os.Stderr, s.describe(err))
			failed = true
		}
	}

	if interactive {
		if err := repl(s); err != nil {
			log.Fatal().Err(err).Msg("interactive session failed")
		}
	}
	if failed {
		os.Exit(1)
	}
}

// setupLog sends logs to stderr for people. FORMULA_LOG_LEVEL overrides the
// level chosen by -v.
func setupLog(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.TraceLevel
	}
	if v := os.Getenv("FORMULA_LOG_LEVEL"); v != "" {
		l, err := zerolog.ParseLevel(v)
		if err != nil {
			log.Warn().Str("FORMULA_LOG_LEVEL", v).Msg("unknown log level")
		} else {
			level = l
		}
	}
	zerolog.SetGlobalLevel(level)
}

func plot(s *session, name string, w io.Writer) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	pf, err := readPlot(f)
	if err != nil {
		return err
	}
	out, err := pf.sample(s)
	if err != nil {
		return err
	}
	return writeCSV(w, pf.Var, out)
}

func infile(inname string, std bool) (io.Reader, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return os.Stdin, nil
	}
	return nil, nil
}

// readLines reads the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
