package kronik

import (
	"fmt"
	"math"
	"sort"
)

// Detection is a single isotope distribution reported for one scan
// by the upstream peak finder
type Detection struct {
	Charge    int
	Mods      int // index into Run.Mods, 0 means unmodified
	Intensity float64
	MonoMass  float64 // uncharged monoisotopic mass
	BasePeak  float64 // m/z of the most abundant isotope peak
	XCorr     float64 // correlation score of the isotope fit
}

// Scan holds all detections of a single spectrum
type Scan struct {
	File       int // index into Run.Files
	ScanNum    int
	RTime      float64
	Detections []Detection
}

// SortMonoMass sorts the detections by ascending monoisotopic mass
func (s *Scan) SortMonoMass() {
	sort.SliceStable(s.Detections, func(i, j int) bool {
		return s.Detections[i].MonoMass < s.Detections[j].MonoMass
	})
}

// SortIntensityRev sorts the detections by descending intensity
func (s *Scan) SortIntensityRev() {
	sort.SliceStable(s.Detections, func(i, j int) bool {
		return s.Detections[i].Intensity > s.Detections[j].Intensity
	})
}

// Run is the complete set of scans from one peak list, in ascending
// scan number order
type Run struct {
	Files []string
	Mods  []string
	Scans []Scan
}

// NewRun returns an empty Run. Modification index 0 is reserved for
// unmodified detections.
func NewRun() *Run {
	return &Run{Mods: []string{``}}
}

// AddScan appends a scan to the run. Scans must arrive with ascending
// scan numbers and non-decreasing retention times.
func (r *Run) AddScan(s Scan) error {
	if n := len(r.Scans); n > 0 {
		last := &r.Scans[n-1]
		if s.ScanNum <= last.ScanNum {
			return fmt.Errorf("%w: scan %d follows scan %d", ErrInvalidInput, s.ScanNum, last.ScanNum)
		}
		if s.RTime < last.RTime {
			return fmt.Errorf("%w: retention time of scan %d (%g) before scan %d (%g)",
				ErrInvalidInput, s.ScanNum, s.RTime, last.ScanNum, last.RTime)
		}
	}
	if math.IsNaN(s.RTime) {
		return fmt.Errorf("%w: scan %d has no retention time", ErrInvalidInput, s.ScanNum)
	}
	for _, d := range s.Detections {
		if err := validDetection(d, len(r.Mods)); err != nil {
			return fmt.Errorf("scan %d: %w", s.ScanNum, err)
		}
	}
	r.Scans = append(r.Scans, s)
	return nil
}

// AddDetection appends a detection to the last scan of the run
func (r *Run) AddDetection(d Detection) error {
	if len(r.Scans) == 0 {
		return fmt.Errorf("%w: detection before first scan", ErrInvalidInput)
	}
	last := &r.Scans[len(r.Scans)-1]
	if err := validDetection(d, len(r.Mods)); err != nil {
		return fmt.Errorf("scan %d: %w", last.ScanNum, err)
	}
	last.Detections = append(last.Detections, d)
	return nil
}

func validDetection(d Detection, nMods int) error {
	if d.Charge <= 0 {
		return fmt.Errorf("%w: charge %d", ErrInvalidInput, d.Charge)
	}
	if !(d.MonoMass > 0) || math.IsInf(d.MonoMass, 0) {
		return fmt.Errorf("%w: mass %g", ErrInvalidInput, d.MonoMass)
	}
	if !(d.Intensity >= 0) {
		return fmt.Errorf("%w: intensity %g", ErrInvalidInput, d.Intensity)
	}
	if d.Mods < 0 || (d.Mods > 0 && d.Mods >= nMods) {
		return fmt.Errorf("%w: modification index %d", ErrInvalidInput, d.Mods)
	}
	return nil
}

// ModIndex returns the index of modification string m, adding it
// if it is new. The empty string and "_" map to index 0.
func (r *Run) ModIndex(m string) int {
	if len(r.Mods) == 0 {
		r.Mods = []string{``}
	}
	if m == `` || m == `_` {
		return 0
	}
	for i, s := range r.Mods {
		if s == m {
			return i
		}
	}
	r.Mods = append(r.Mods, m)
	return len(r.Mods) - 1
}

// FileIndex returns the index of file name f, adding it if it is new
func (r *Run) FileIndex(f string) int {
	for i, s := range r.Files {
		if s == f {
			return i
		}
	}
	r.Files = append(r.Files, f)
	return len(r.Files) - 1
}

// NumDetections returns the total number of detections in all scans
func (r *Run) NumDetections() int {
	n := 0
	for i := range r.Scans {
		n += len(r.Scans[i].Detections)
	}
	return n
}

// RT returns the retention time of the scan with number scanNum
func (r *Run) RT(scanNum int) (float64, bool) {
	i := sort.Search(len(r.Scans), func(i int) bool { return r.Scans[i].ScanNum >= scanNum })
	if i < len(r.Scans) && r.Scans[i].ScanNum == scanNum {
		return r.Scans[i].RTime, true
	}
	return 0, false
}

// Mod returns the modification string for index i
func (r *Run) Mod(i int) string {
	if i <= 0 || i >= len(r.Mods) {
		return ``
	}
	return r.Mods[i]
}
