package kronik

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// fwhmConst converts the standard deviation of a Gaussian to its
// full width at half maximum
const fwhmConst = 2.3548200450309493820231386529194

// Maximum number of function evaluations for a Gaussian fit
var gaussMaxEval = 5000

// Polynomial holds coefficients c[0] + c[1]*x + c[2]*x^2 ...
// and the coefficient of determination of the fit that produced it
type Polynomial struct {
	Coeffs []float64
	R2     float64
}

// At evaluates the polynomial at x
func (p Polynomial) At(x float64) float64 {
	y := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*x + p.Coeffs[i]
	}
	return y
}

// Degree returns the degree of the polynomial
func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// PolynomialFit computes the least squares polynomial of the given degree
// through the points (x[i], y[i]) with x[i] <= maxX. When there are too few
// distinct x values for the degree, or the system is singular, the degree is
// reduced until a solution exists.
func PolynomialFit(x, y []float64, maxX float64, degree int) (Polynomial, error) {
	if len(x) != len(y) {
		return Polynomial{}, fmt.Errorf("%w: %d x values, %d y values", ErrInvalidInput, len(x), len(y))
	}
	if degree < 0 {
		return Polynomial{}, fmt.Errorf("%w: polynomial degree %d", ErrInvalidConfig, degree)
	}
	var xs, ys []float64
	distinct := make(map[float64]bool)
	for i := range x {
		if x[i] <= maxX {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
			distinct[x[i]] = true
		}
	}
	if len(xs) == 0 {
		return Polynomial{}, ErrTooFewPoints
	}
	if degree > len(distinct)-1 {
		degree = len(distinct) - 1
	}

	b := mat.NewVecDense(len(ys), ys)
	for d := degree; d >= 0; d-- {
		a := mat.NewDense(len(xs), d+1, nil)
		for i, xi := range xs {
			v := 1.0
			for j := 0; j <= d; j++ {
				a.Set(i, j, v)
				v *= xi
			}
		}
		var c mat.VecDense
		if err := c.SolveVec(a, b); err != nil {
			continue
		}
		p := Polynomial{Coeffs: make([]float64, d+1)}
		for j := range p.Coeffs {
			p.Coeffs[j] = c.AtVec(j)
		}
		p.R2 = rSquared(xs, ys, p.At)
		return p, nil
	}
	// Degree 0 can only fail on non-finite input
	return Polynomial{}, fmt.Errorf("%w: no polynomial fit possible", ErrInvalidInput)
}

// FitProfile fits a polynomial to intensity as a function of retention
// time, using points up to retention time maxRT
func FitProfile(pts []ProfilePoint, maxRT float64, degree int) (Polynomial, error) {
	t := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		t[i] = p.RTime
		y[i] = p.Intensity
	}
	return PolynomialFit(t, y, maxRT, degree)
}

// rSquared returns 1 - SSres/SStot of model f on the points (x, y)
func rSquared(x, y []float64, f func(float64) float64) float64 {
	mean := floats.Sum(y) / float64(len(y))
	var ssRes, ssTot float64
	for i := range x {
		r := y[i] - f(x[i])
		ssRes += r * r
		d := y[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// At evaluates the Gaussian at t
func (g GaussFit) At(t float64) float64 {
	if g.Width == 0 {
		return g.Baseline
	}
	d := (t - g.Center) / g.Width
	return g.Baseline + g.Amplitude*math.Exp(-0.5*d*d)
}

// FWHM returns the full width at half maximum of the Gaussian
func (g GaussFit) FWHM() float64 {
	return fwhmConst * g.Width
}

// FitGaussian fits Baseline + Amplitude*exp(-(t-Center)^2/(2*Width^2)) to
// the points (t[i], y[i]). With fewer than 4 points all coefficients are
// zero. If the minimizer does not converge, the last iterate is returned
// with R2 0.
func FitGaussian(t, y []float64) GaussFit {
	var g GaussFit
	if len(t) != len(y) || len(t) < 4 {
		return g
	}
	t0 := floats.Min(t)
	tSpan := floats.Max(t) - t0
	yMax := floats.Max(y)
	if !(tSpan > 0) || !(yMax > 0) {
		return g
	}

	// Fit in scaled units, so that all parameters are of order one
	ts := make([]float64, len(t))
	ys := make([]float64, len(y))
	for i := range t {
		ts[i] = (t[i] - t0) / tSpan
		ys[i] = y[i] / yMax
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			s := GaussFit{Amplitude: x[0], Center: x[1], Width: x[2], Baseline: x[3]}
			sumOfResiduals := 0.0
			for i := range ts {
				diff := s.At(ts[i]) - ys[i]
				sumOfResiduals += diff * diff
			}
			return sumOfResiduals
		},
	}
	x := initialGauss(ts, ys)
	settings := &optimize.Settings{FuncEvaluations: gaussMaxEval}
	result, err := optimize.Minimize(problem, x, settings, &optimize.NelderMead{})
	if result != nil && len(result.X) == len(x) {
		x = result.X
	}

	g.Amplitude = x[0] * yMax
	g.Center = x[1]*tSpan + t0
	g.Width = math.Abs(x[2]) * tSpan
	g.Baseline = x[3] * yMax
	if err != nil || result == nil || !fitConverged(result.Status) {
		return g
	}
	g.Converged = true
	g.R2 = rSquared(t, y, g.At)
	return g
}

func fitConverged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// initialGauss estimates amplitude, center, width and baseline of a peak.
// The center and width come from a parabola through the log intensities
// when that gives a peak, otherwise from the apex and the points above half
// height.
func initialGauss(t, y []float64) []float64 {
	apex := floats.MaxIdx(y)
	base := floats.Min(y)
	if base < 0 {
		base = 0
	}
	amp := y[apex] - base
	center := t[apex]
	width := 0.0

	var lt, ly []float64
	for i := range y {
		if y[i]-base > 0 {
			lt = append(lt, t[i])
			ly = append(ly, math.Log(y[i]-base))
		}
	}
	if p, err := PolynomialFit(lt, ly, math.Inf(1), 2); err == nil && p.Degree() == 2 && p.Coeffs[2] < 0 {
		c := -p.Coeffs[1] / (2 * p.Coeffs[2])
		w := math.Sqrt(-1 / (2 * p.Coeffs[2]))
		if c >= floats.Min(t) && c <= floats.Max(t) && w > 0 && !math.IsInf(w, 0) {
			center, width = c, w
		}
	}
	if width == 0 {
		above := 0
		for i := range y {
			if y[i]-base >= amp/2 {
				above++
			}
		}
		width = float64(above) / float64(len(y)) * (floats.Max(t) - floats.Min(t)) / fwhmConst
		if width == 0 {
			width = 0.1
		}
	}
	return []float64{amp, center, width, base}
}
