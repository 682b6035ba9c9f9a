package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/formula"
)

// plotFile describes a set of curves to sample over a common range.
//
//	min: -3.14
//	max: 3.14
//	amount: 200
//	values:
//	  a: 2
//	  w: pi/2
//	formulas:
//	  - name: wave
//	    expr: a*sin(w*x)
//	    derivative: true
type plotFile struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
	// Amount is the number of steps between Min and Max. There is one more
	// sample than steps.
	Amount int `yaml:"amount"`
	// Var is the name of the sampled variable.
	Var string `yaml:"var"`
	// Values are parameters shared by every formula. Each is itself a
	// formula, evaluated once in name order with earlier parameters bound.
	Values   map[string]string `yaml:"values"`
	Formulas []plotFormula     `yaml:"formulas"`
}

type plotFormula struct {
	Name       string `yaml:"name"`
	Expr       string `yaml:"expr"`
	Derivative bool   `yaml:"derivative"`
	Integral   bool   `yaml:"integral"`
	// IntegralStart is the value of the integral at Min.
	IntegralStart float64 `yaml:"integral_start"`
}

// series is one column of plot output.
type series struct {
	name string
	pts  []formula.Point
}

func readPlot(r io.Reader) (*plotFile, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	pf := plotFile{Max: 1, Amount: 1000, Var: "x"}
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("couldn't read plot file: %w", err)
	}
	if !isName(pf.Var) {
		return nil, fmt.Errorf("plot variable %q is not a variable name", pf.Var)
	}
	if len(pf.Formulas) == 0 {
		return nil, errors.New("plot file has no formulas")
	}
	return &pf, nil
}

// sample evaluates every formula of the plot. Parameters are bound in s
// before any formula is compiled.
func (pf *plotFile) sample(s *session) ([]series, error) {
	names := make([]string, 0, len(pf.Values))
	for name := range pf.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == pf.Var {
			return nil, fmt.Errorf("parameter %s shadows the plot variable", name)
		}
		if _, err := s.assign(name, pf.Values[name]); err != nil {
			return nil, err
		}
	}

	r := formula.Range{Min: pf.Min, Max: pf.Max, N: pf.Amount}
	var out []series
	for i, f := range pf.Formulas {
		name := f.Name
		if name == "" {
			name = f.Expr
		}
		// Predeclaring the plot variable pins it to slot 0.
		p, err := s.compile(f.Expr, formula.Predeclare(pf.Var))
		if err != nil {
			return nil, fmt.Errorf("formula %d (%s): %w", i+1, name, err)
		}
		env := make(map[string]float64, len(s.env)+1)
		for k, v := range s.env {
			env[k] = v
		}
		env[pf.Var] = 0
		values, err := p.Bind(env)
		if err != nil {
			return nil, fmt.Errorf("formula %d (%s): %s", i+1, name, s.describe(err))
		}
		pts, err := p.Sample(r, 0, values)
		if err != nil {
			return nil, fmt.Errorf("formula %d (%s): %w", i+1, name, err)
		}
		log.Debug().Str("formula", name).Int("points", len(pts)).Int("instructions", p.Len()).Msg("sampled")
		out = append(out, series{name: name, pts: pts})
		if f.Derivative {
			out = append(out, series{name: name + "'", pts: formula.Derivative(pts)})
		}
		if f.Integral {
			out = append(out, series{name: "int " + name, pts: formula.Integral(pts, f.IntegralStart)})
		}
	}
	return out, nil
}

// writeCSV writes sampled series as columns sharing the abscissae of the
// first.
func writeCSV(w io.Writer, xname string, out []series) error {
	cw := csv.NewWriter(w)
	row := make([]string, 0, len(out)+1)
	row = append(row, xname)
	for _, s := range out {
		row = append(row, s.name)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	if len(out) > 0 {
		for i, pt := range out[0].pts {
			row = append(row[:0], fmtFloat(pt.X))
			for _, s := range out {
				row = append(row, fmtFloat(s.pts[i].Y))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
