package kronik

import (
	"testing"
)

// scanStep is the retention time between consecutive test scans (minutes)
const scanStep = 0.05

// makeRun builds a run with one scan per element of dets. Scan i has
// scan number i+1 and retention time (i+1)*scanStep.
func makeRun(t testing.TB, dets [][]Detection) *Run {
	t.Helper()
	run := NewRun()
	for i, d := range dets {
		s := Scan{ScanNum: i + 1, RTime: float64(i+1) * scanStep}
		s.Detections = append(s.Detections, d...)
		if err := run.AddScan(s); err != nil {
			t.Fatalf("AddScan %d: %v", i+1, err)
		}
	}
	return run
}

func det(mass float64, charge int, intensity float64) Detection {
	return Detection{MonoMass: mass, Charge: charge, Intensity: intensity, BasePeak: mass/float64(charge) + 1.007276}
}

// process links run with par and returns the processor
func process(t testing.TB, par Params, run *Run) *Processor {
	t.Helper()
	p, err := NewProcessor(par)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	p.Load(run)
	if err := p.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	return p
}

// checkInvariants verifies the structural invariants of every feature
func checkInvariants(t testing.TB, fs *Features) {
	t.Helper()
	for i, f := range fs.All() {
		if len(f.Points) == 0 || f.Datapoints() != len(f.Points) {
			t.Errorf("feature %d: %d datapoints, %d points", i, f.Datapoints(), len(f.Points))
			continue
		}
		if !(f.LowScan <= f.BestScan && f.BestScan <= f.HighScan) {
			t.Errorf("feature %d: scans low %d best %d high %d", i, f.LowScan, f.BestScan, f.HighScan)
		}
		for k := 1; k < len(f.Points); k++ {
			if f.Points[k-1].ScanNum >= f.Points[k].ScanNum {
				t.Errorf("feature %d: points not ordered by scan", i)
			}
		}
		if f.Points[f.bestPoint()].ScanNum != f.BestScan {
			t.Errorf("feature %d: best scan %d is not the most intense point", i, f.BestScan)
		}
	}
}
