package kronik

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mathext"
)

func TestGammaLn(t *testing.T) {
	for _, x := range []float64{0.01, 0.5, 1, 1.5, 2, 3.7, 10, 55.5, 171, 1e4} {
		want, _ := math.Lgamma(x)
		got := gammaLn(x)
		if math.Abs(got-want) > 1e-12*math.Max(1, math.Abs(want)) {
			t.Errorf("gammaLn(%g) = %.15g, should be %.15g", x, got, want)
		}
	}
	if !math.IsNaN(gammaLn(0)) || !math.IsNaN(gammaLn(-1)) {
		t.Errorf("gammaLn of a non-positive value should be NaN")
	}
}

func TestBetaI(t *testing.T) {
	for _, a := range []float64{0.5, 1, 2.5, 10, 40} {
		for _, b := range []float64{0.5, 1, 3, 25} {
			for _, x := range []float64{0.01, 0.2, 0.5, 0.77, 0.99} {
				want := mathext.RegIncBeta(a, b, x)
				got, ok := betaI(a, b, x)
				if !ok {
					t.Errorf("betaI(%g, %g, %g) did not converge", a, b, x)
				}
				if math.Abs(got-want) > 1e-10 {
					t.Errorf("betaI(%g, %g, %g) = %.15g, should be %.15g", a, b, x, got, want)
				}
			}
		}
	}
	if v, _ := betaI(2, 3, 0.4); math.Abs(v-0.5248) > 1e-12 {
		t.Errorf("betaI(2, 3, 0.4) = %.15g, should be 0.5248", v)
	}
	if v, ok := betaI(2, 3, 0); v != 0 || !ok {
		t.Errorf("betaI at 0: %g %v", v, ok)
	}
	if v, ok := betaI(2, 3, 1); v != 1 || !ok {
		t.Errorf("betaI at 1: %g %v", v, ok)
	}
	if v, _ := betaI(2, 3, 1.5); !math.IsNaN(v) {
		t.Errorf("betaI outside [0,1]: %g, should be NaN", v)
	}
	// Very large parameters need more iterations than allowed
	if v, ok := betaI(1e6, 1e6, 0.5); ok || math.Abs(v-0.5) > 1e-3 {
		t.Errorf("betaI(1e6, 1e6, 0.5) = %g %v, expected an unconverged estimate near 0.5", v, ok)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	c, err := Pearson(x, []float64{2, 4, 5, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.R-0.7745966692414834) > 1e-12 {
		t.Errorf("R %.15g, should be 0.7745966692414834", c.R)
	}
	df := 3.0
	tt := c.R * math.Sqrt(df/((1-c.R)*(1+c.R)))
	wantP := mathext.RegIncBeta(df/2, 0.5, df/(df+tt*tt))
	if math.Abs(c.P-wantP) > 1e-9 || math.Abs(c.P-0.124027) > 1e-5 {
		t.Errorf("P %.15g, should be %.15g", c.P, wantP)
	}
	if c.N != 5 || c.Sum1 != 15 || c.Sum2 != 20 || !c.Converged {
		t.Errorf("Correlation %+v", c)
	}

	c, _ = Pearson(x, []float64{3, 5, 7, 9, 11})
	if math.Abs(c.Slope-2) > 1e-12 || math.Abs(c.Intercept-1) > 1e-12 {
		t.Errorf("Regression slope %f intercept %f, should be 2 1", c.Slope, c.Intercept)
	}
}

func TestPearsonSelf(t *testing.T) {
	var y []float64
	for i := 0; i < 12; i++ {
		y = append(y, 1e4*math.Exp(-math.Pow(float64(i-6), 2)/8))
	}
	c, err := Pearson(y, y)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.R-1) > 1e-12 || c.P > 1e-10 {
		t.Errorf("Self correlation R %.15g P %g", c.R, c.P)
	}

	neg := make([]float64, len(y))
	for i := range y {
		neg[i] = -y[i]
	}
	c, _ = Pearson(y, neg)
	if math.Abs(c.R+1) > 1e-12 || c.P > 1e-10 {
		t.Errorf("Anti correlation R %.15g P %g", c.R, c.P)
	}
}

func TestPearsonDegenerate(t *testing.T) {
	c, err := Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
	if err != nil || c.R != 0 || c.P != 1 {
		t.Errorf("Constant series: %+v %v", c, err)
	}
	if _, err := Pearson([]float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("2 points: expected ErrTooFewPoints, got %v", err)
	}
	if _, err := Pearson([]float64{1, 2, 3}, []float64{1, 2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Length mismatch: expected ErrInvalidInput, got %v", err)
	}
}

func TestPearsonFeatures(t *testing.T) {
	shape := []float64{1, 4, 9, 4, 1}
	var fs Features
	fs.Add(mkFeature(1000, []int{10, 11, 12, 13, 14}, shape))
	fs.Add(mkFeature(1200, []int{20, 21, 22, 23, 24}, shape))
	f1, _ := fs.At(0)
	f2, _ := fs.At(1)

	c, err := PearsonFeatures(f1, f2, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.R-1) > 1e-12 || c.N != 5 {
		t.Errorf("Apex aligned R %f N %d, should be 1 5", c.R, c.N)
	}

	// On scan number the features do not overlap
	c, err = PearsonFeatures(f1, f2, true, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.N != 10 || c.R >= 0 {
		t.Errorf("Scan aligned R %f N %d, expected negative R over 10 pairs", c.R, c.N)
	}
}

func TestPearsonFeaturesInterpolate(t *testing.T) {
	var fs Features
	fs.Add(mkFeature(1000, []int{1, 2, 3, 4, 5}, []float64{10, 20, 30, 20, 10}))
	fs.Add(mkFeature(1000, []int{1, 3, 5}, []float64{10, 30, 10}))
	f1, _ := fs.At(0)
	f2, _ := fs.At(1)

	c, err := PearsonFeatures(f1, f2, true, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.R-1) > 1e-12 {
		t.Errorf("Interpolated R %f, should be 1", c.R)
	}
	c, _ = PearsonFeatures(f1, f2, true, false, nil)
	if c.R > 0.9 {
		t.Errorf("Uninterpolated R %f, expected the gaps to lower it", c.R)
	}
}

func TestProcessorPearson(t *testing.T) {
	p := process(t, DefaultParams(), constantRun(t, 5))
	if _, err := p.Pearson(0, 1, true, false); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
	c, err := p.Pearson(0, 0, true, true)
	if err != nil {
		t.Fatal(err)
	}
	// A flat profile has no variance
	if c.R != 0 || c.P != 1 {
		t.Errorf("Flat profile R %f P %f", c.R, c.P)
	}
}

func TestBetaCFIterationCap(t *testing.T) {
	old := betaMaxIter
	betaMaxIter = 2
	defer func() { betaMaxIter = old }()

	v, ok := betaCF(5, 5, 0.5)
	if ok {
		t.Errorf("betaCF(5, 5, 0.5) converged in %d iterations", betaMaxIter)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("betaCF(5, 5, 0.5) = %g, expected a finite estimate", v)
	}
	if _, ok := betaI(5, 5, 0.3); ok {
		t.Errorf("betaI(5, 5, 0.3) converged in %d iterations", betaMaxIter)
	}
}

func TestPearsonNotConverged(t *testing.T) {
	old := betaMaxIter
	betaMaxIter = 1
	defer func() { betaMaxIter = old }()

	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.3, 11.7, 14.4, 15.6, 18.2, 19.9}
	c, err := Pearson(x, y)
	if err != nil {
		t.Fatalf("Pearson: %v", err)
	}
	if c.Converged {
		t.Errorf("Significance converged with a cap of %d iterations", betaMaxIter)
	}
	if c.R < 0.99 {
		t.Errorf("R %f, expected a strong correlation", c.R)
	}
	if math.IsNaN(c.P) {
		t.Errorf("P is NaN, expected the capped estimate")
	}
}
