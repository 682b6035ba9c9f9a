package formula

import (
	"errors"
	"fmt"
)

// Range is a closed interval divided into N equal steps.
type Range struct {
	Min, Max float64
	N        int
}

// Point is a sample of a curve.
type Point struct {
	X, Y float64
}

func (r Range) check() error {
	if r.N <= 0 {
		return errors.New("range needs at least one step")
	}
	if !(r.Min <= r.Max) {
		return fmt.Errorf("range min %g is greater than max %g", r.Min, r.Max)
	}
	return nil
}

// At returns the i'th abscissa of the range. At(0) is Min and At(N) is Max.
func (r Range) At(i int) float64 {
	if i == r.N {
		return r.Max
	}
	return r.Min + (r.Max-r.Min)*float64(i)/float64(r.N)
}

// Points returns the N+1 abscissae of r, or nil if r is empty or reversed.
func (r Range) Points() []float64 {
	if r.check() != nil {
		return nil
	}
	xs := make([]float64, r.N+1)
	for i := range xs {
		xs[i] = r.At(i)
	}
	return xs
}

// Sample evaluates the program at each of the N+1 abscissae of r, placing the
// abscissa in values[slot]. If slot is negative, the program is evaluated
// with values as given, which suits programs that do not depend on the
// sampled variable. values is not modified.
func (p *Program) Sample(r Range, slot int, values []float64) ([]Point, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	vals := values
	if slot >= 0 {
		n := len(values)
		if slot >= n {
			n = slot + 1
		}
		vals = make([]float64, n)
		copy(vals, values)
	}
	pts := make([]Point, r.N+1)
	for i := range pts {
		x := r.At(i)
		if slot >= 0 {
			vals[slot] = x
		}
		y, err := Run(p, vals)
		if err != nil {
			return nil, fmt.Errorf("at x = %g: %w", x, err)
		}
		pts[i] = Point{X: x, Y: y}
	}
	return pts, nil
}

// Derivative approximates the derivative of a sampled curve by finite
// differences: backward differences everywhere except the first point, which
// uses a forward difference.
func Derivative(pts []Point) []Point {
	if len(pts) < 2 {
		return nil
	}
	d := make([]Point, len(pts))
	d[0] = Point{X: pts[0].X, Y: slope(pts[0], pts[1])}
	for i := 1; i < len(pts); i++ {
		d[i] = Point{X: pts[i].X, Y: slope(pts[i-1], pts[i])}
	}
	return d
}

func slope(a, b Point) float64 {
	return (b.Y - a.Y) / (b.X - a.X)
}

// Integral approximates the running integral of a sampled curve with the
// trapezoid rule. The first point of the result has the value start.
func Integral(pts []Point, start float64) []Point {
	if len(pts) == 0 {
		return nil
	}
	s := make([]Point, len(pts))
	acc := start
	s[0] = Point{X: pts[0].X, Y: acc}
	for i := 1; i < len(pts); i++ {
		acc += (pts[i].Y + pts[i-1].Y) * (pts[i].X - pts[i-1].X) / 2
		s[i] = Point{X: pts[i].X, Y: acc}
	}
	return s
}
