package kronik

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddScan(t *testing.T) {
	run := NewRun()
	if err := run.AddScan(Scan{ScanNum: 5, RTime: 1.0}); err != nil {
		t.Fatalf("AddScan: %v", err)
	}
	tests := []struct {
		name string
		scan Scan
	}{
		{"same scan number", Scan{ScanNum: 5, RTime: 1.1}},
		{"lower scan number", Scan{ScanNum: 3, RTime: 1.1}},
		{"earlier retention time", Scan{ScanNum: 6, RTime: 0.9}},
		{"zero charge", Scan{ScanNum: 6, RTime: 1.1, Detections: []Detection{det(1000, 0, 10)}}},
		{"negative mass", Scan{ScanNum: 6, RTime: 1.1, Detections: []Detection{det(-1000, 1, 10)}}},
		{"negative intensity", Scan{ScanNum: 6, RTime: 1.1, Detections: []Detection{det(1000, 1, -10)}}},
		{"unknown modification", Scan{ScanNum: 6, RTime: 1.1, Detections: []Detection{{MonoMass: 1000, Charge: 1, Mods: 4}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run.AddScan(tt.scan)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got: %v", err)
			}
		})
	}
	if len(run.Scans) != 1 {
		t.Errorf("Expected 1 scan after rejected scans, got %d", len(run.Scans))
	}
	// Equal retention time is allowed
	if err := run.AddScan(Scan{ScanNum: 6, RTime: 1.0}); err != nil {
		t.Errorf("AddScan with equal retention time: %v", err)
	}
}

func TestAddDetection(t *testing.T) {
	run := NewRun()
	err := run.AddDetection(det(1000, 2, 5))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput before first scan, got: %v", err)
	}
	run.AddScan(Scan{ScanNum: 1, RTime: 0.1})
	if err := run.AddDetection(det(1000, 2, 5)); err != nil {
		t.Fatalf("AddDetection: %v", err)
	}
	if err := run.AddDetection(det(1000, -2, 5)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative charge, got: %v", err)
	}
	if n := run.NumDetections(); n != 1 {
		t.Errorf("NumDetections: %d, should be 1", n)
	}
}

func TestRT(t *testing.T) {
	run := NewRun()
	for _, s := range []Scan{{ScanNum: 2, RTime: 1.5}, {ScanNum: 4, RTime: 1.75}, {ScanNum: 9, RTime: 2.0}} {
		if err := run.AddScan(s); err != nil {
			t.Fatal(err)
		}
	}
	rt, ok := run.RT(4)
	if !ok || rt != 1.75 {
		t.Errorf("RT(4): %f %v, should be 1.75 true", rt, ok)
	}
	for _, s := range []int{0, 3, 10} {
		if _, ok := run.RT(s); ok {
			t.Errorf("RT(%d) found a scan that does not exist", s)
		}
	}
}

func TestModIndex(t *testing.T) {
	run := NewRun()
	got := []int{run.ModIndex(`_`), run.ModIndex(``), run.ModIndex(`ox`), run.ModIndex(`ph`), run.ModIndex(`ox`)}
	if diff := cmp.Diff([]int{0, 0, 1, 2, 1}, got); diff != "" {
		t.Errorf("ModIndex mismatch (-want +got):\n%s", diff)
	}
	if run.Mod(2) != `ph` || run.Mod(0) != `` || run.Mod(7) != `` {
		t.Errorf("Mod lookup failed: %q", run.Mods)
	}
	if i := run.FileIndex(`a.ms1`); i != 0 {
		t.Errorf("FileIndex: %d, should be 0", i)
	}
	if i := run.FileIndex(`b.ms1`); i != 1 {
		t.Errorf("FileIndex: %d, should be 1", i)
	}
}

func TestScanSort(t *testing.T) {
	s := Scan{Detections: []Detection{det(3000, 1, 2), det(1000, 1, 3), det(2000, 1, 1)}}
	s.SortMonoMass()
	for i, want := range []float64{1000, 2000, 3000} {
		if s.Detections[i].MonoMass != want {
			t.Errorf("SortMonoMass: position %d has mass %f, should be %f", i, s.Detections[i].MonoMass, want)
		}
	}
	s.SortIntensityRev()
	for i, want := range []float64{3, 2, 1} {
		if s.Detections[i].Intensity != want {
			t.Errorf("SortIntensityRev: position %d has intensity %f, should be %f", i, s.Detections[i].Intensity, want)
		}
	}
}

func TestParams(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams invalid: %v", err)
	}
	bad := []Params{
		{PPMTol: 0, GapTol: 1, MatchTol: 3},
		{PPMTol: -5, GapTol: 1, MatchTol: 3},
		{PPMTol: 10, GapTol: -1, MatchTol: 3},
		{PPMTol: 10, GapTol: 1, MatchTol: 0},
		{PPMTol: 10, GapTol: 1, MatchTol: 3, LinkMode: 7},
	}
	for _, par := range bad {
		if err := par.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate(%+v): expected ErrInvalidConfig, got %v", par, err)
		}
		if _, err := NewProcessor(par); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewProcessor(%+v): expected ErrInvalidConfig, got %v", par, err)
		}
	}

	p, _ := NewProcessor(DefaultParams())
	if err := p.SetPPMTol(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetPPMTol(0): expected ErrInvalidConfig, got %v", err)
	}
	if p.Params().PPMTol != DefaultPPMTol {
		t.Errorf("Rejected SetPPMTol changed the tolerance to %f", p.Params().PPMTol)
	}
	if err := p.SetGapTol(3); err != nil || p.Params().GapTol != 3 {
		t.Errorf("SetGapTol(3): %v, gap %d", err, p.Params().GapTol)
	}
	if err := p.SetMatchTol(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetMatchTol(0): expected ErrInvalidConfig, got %v", err)
	}
	p.SetGaussFit(true)
	if !p.Params().GaussFit {
		t.Errorf("SetGaussFit(true) not applied")
	}

	for s, want := range map[string]LinkMode{`sweep`: LinkSweep, `MAX`: LinkSeedMax, ``: LinkSweep} {
		m, err := ParseLinkMode(s)
		if err != nil || m != want {
			t.Errorf("ParseLinkMode(%q): %v %v", s, m, err)
		}
	}
	if _, err := ParseLinkMode(`best`); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseLinkMode(best): expected ErrInvalidConfig, got %v", err)
	}
}
