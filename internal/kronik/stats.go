package kronik

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Iteration cap of the incomplete beta continued fraction
var betaMaxIter = 300

const (
	betaEps     = 1e-15   // relative convergence of the continued fraction
	betaFPMin   = 1e-300  // keeps denominators of the continued fraction away from 0
	pearsonTiny = 1.0e-20 // avoids division by zero for perfect correlation
)

// Correlation is the result of correlating two intensity series
type Correlation struct {
	R         float64 // Pearson's correlation coefficient
	P         float64 // two-tailed significance of R
	Slope     float64 // regression of the second series on the first
	Intercept float64
	Sum1      float64 // sum of the first series
	Sum2      float64 // sum of the second series
	N         int     // number of paired values
	Converged bool    // false if the significance hit the iteration cap
}

// Pearson correlates x and y and computes the significance of the
// correlation coefficient from Student's t distribution
func Pearson(x, y []float64) (Correlation, error) {
	var c Correlation
	if len(x) != len(y) {
		return c, fmt.Errorf("%w: series of length %d and %d", ErrInvalidInput, len(x), len(y))
	}
	c.N = len(x)
	if c.N < 3 {
		return c, fmt.Errorf("%w: %d pairs", ErrTooFewPoints, c.N)
	}
	c.Sum1 = floats.Sum(x)
	c.Sum2 = floats.Sum(y)
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		c.P = 1
		c.Converged = true
		return c, nil
	}

	c.R = math.Max(-1, math.Min(1, stat.Correlation(x, y, nil)))
	c.Intercept, c.Slope = stat.LinearRegression(x, y, nil, false)

	df := float64(c.N - 2)
	t := c.R * math.Sqrt(df/((1.0-c.R+pearsonTiny)*(1.0+c.R+pearsonTiny)))
	c.P, c.Converged = betaI(0.5*df, 0.5, df/(df+t*t))
	return c, nil
}

// PearsonFeatures correlates the intensities of two features. With byScan,
// points are paired on scan number; otherwise they are paired on their
// distance in scans from the most intense point of their own feature. A
// scan present in only one feature pairs with intensity 0. With
// interpolate, gaps are first filled using rt (see FillGaps).
func PearsonFeatures(f1, f2 *Feature, byScan, interpolate bool,
	rt func(scanNum int) (float64, bool)) (Correlation, error) {

	pts1, pts2 := f1.Points, f2.Points
	if interpolate {
		pts1 = f1.FillGaps(rt)
		pts2 = f2.FillGaps(rt)
	}
	off1, off2 := 0, 0
	if !byScan {
		off1, off2 = f1.BestScan, f2.BestScan
	}
	x, y := alignSeries(pts1, off1, pts2, off2)
	return Pearson(x, y)
}

// alignSeries pairs the intensities of two point sets on scan number minus
// offset. Keys present in one set only pair with 0.
func alignSeries(a []ProfilePoint, offA int, b []ProfilePoint, offB int) ([]float64, []float64) {
	type pair struct{ x, y float64 }
	pairs := make(map[int]*pair)
	get := func(k int) *pair {
		p, ok := pairs[k]
		if !ok {
			p = &pair{}
			pairs[k] = p
		}
		return p
	}
	for _, p := range a {
		get(p.ScanNum - offA).x += p.Intensity
	}
	for _, p := range b {
		get(p.ScanNum - offB).y += p.Intensity
	}
	keys := make([]int, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	x := make([]float64, len(keys))
	y := make([]float64, len(keys))
	for i, k := range keys {
		x[i] = pairs[k].x
		y[i] = pairs[k].y
	}
	return x, y
}

// gammaLn returns ln(Gamma(xx)) for xx > 0, using the Lanczos
// approximation with 14 terms
func gammaLn(xx float64) float64 {
	cof := [14]float64{57.1562356658629235, -59.5979603554754912,
		14.1360979747417471, -0.491913816097620199, .339946499848118887e-4,
		.465236289270485756e-4, -.983744753048795646e-4, .158088703224912494e-3,
		-.210264441724104883e-3, .217439618115212643e-3, -.164318106536763890e-3,
		.844182239838527433e-4, -.261908384015814087e-4, .368991826595316234e-5}
	if !(xx > 0) {
		return math.NaN()
	}
	x := xx
	y := xx
	tmp := x + 5.24218750000000000 // 671/128
	tmp = (x+0.5)*math.Log(tmp) - tmp
	ser := 0.999999999999997092
	for _, c := range cof {
		y++
		ser += c / y
	}
	return tmp + math.Log(2.5066282746310005*ser/x)
}

// betaI returns the regularized incomplete beta function I_x(a, b). The
// second return value is false if the continued fraction did not converge;
// the value is then the estimate at the iteration cap.
func betaI(a, b, x float64) (float64, bool) {
	if x < 0 || x > 1 || math.IsNaN(x) {
		return math.NaN(), false
	}
	var bt float64
	if x > 0 && x < 1 {
		bt = math.Exp(gammaLn(a+b) - gammaLn(a) - gammaLn(b) + a*math.Log(x) + b*math.Log(1-x))
	}
	if x < (a+1)/(a+b+2) {
		cf, ok := betaCF(a, b, x)
		return bt * cf / a, ok
	}
	cf, ok := betaCF(b, a, 1-x)
	return 1 - bt*cf/b, ok
}

// betaCF evaluates the continued fraction of the incomplete beta function
// with the modified Lentz method
func betaCF(a, b, x float64) (float64, bool) {
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < betaFPMin {
		d = betaFPMin
	}
	d = 1 / d
	h := d
	for m := 1; m <= betaMaxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm
		// Even step
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < betaFPMin {
			d = betaFPMin
		}
		c = 1 + aa/c
		if math.Abs(c) < betaFPMin {
			c = betaFPMin
		}
		d = 1 / d
		h *= d * c
		// Odd step
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < betaFPMin {
			d = betaFPMin
		}
		c = 1 + aa/c
		if math.Abs(c) < betaFPMin {
			c = betaFPMin
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < betaEps {
			return h, true
		}
	}
	return h, false
}
