package kronik

import (
	"sort"
)

// ProfilePoint is one time point of a feature
type ProfilePoint struct {
	Interpolated bool // synthesized to fill a gap, not observed
	ScanNum      int
	Intensity    float64
	RTime        float64
	MonoMass     float64
	XCorr        float64
}

// GaussFit holds the coefficients of
// Baseline + Amplitude*exp(-(t-Center)^2/(2*Width^2))
// and the coefficient of determination of the fit
type GaussFit struct {
	Amplitude float64
	Center    float64
	Width     float64
	Baseline  float64
	R2        float64
	Converged bool
}

// Feature is the elution profile of one species, linked over
// consecutive scans
type Feature struct {
	Charge    int
	Mods      int
	LowScan   int
	HighScan  int
	BestScan  int
	MS2Events int

	RTime        float64 // intensity weighted retention time
	FirstRTime   float64
	LastRTime    float64
	Intensity    float64 // intensity of the most intense point
	SumIntensity float64

	MonoMass float64 // mass of the most intense point
	BasePeak float64
	XCorr    float64 // best correlation score of all points
	Gauss    GaussFit

	// Labels attached by later analysis
	Gene     string
	Sequence string

	Points []ProfilePoint
}

// Datapoints returns the number of points of the feature
func (f *Feature) Datapoints() int {
	return len(f.Points)
}

// Clone returns a copy of f that shares no memory with f
func (f *Feature) Clone() Feature {
	c := *f
	c.Points = make([]ProfilePoint, len(f.Points))
	copy(c.Points, f.Points)
	return c
}

// SortScanNum sorts the points by ascending scan number
func (f *Feature) SortScanNum() {
	sort.SliceStable(f.Points, func(i, j int) bool { return f.Points[i].ScanNum < f.Points[j].ScanNum })
}

// SortIntensityRev sorts the points by descending intensity
func (f *Feature) SortIntensityRev() {
	sort.SliceStable(f.Points, func(i, j int) bool { return f.Points[i].Intensity > f.Points[j].Intensity })
}

// SortMonoMass sorts the points by ascending mass
func (f *Feature) SortMonoMass() {
	sort.SliceStable(f.Points, func(i, j int) bool { return f.Points[i].MonoMass < f.Points[j].MonoMass })
}

// Observed returns the number of points that were not interpolated
func (f *Feature) Observed() int {
	n := 0
	for _, p := range f.Points {
		if !p.Interpolated {
			n++
		}
	}
	return n
}

// bestPoint returns the index of the most intense point, the earliest
// scan wins on equal intensity
func (f *Feature) bestPoint() int {
	best := 0
	for i, p := range f.Points {
		b := f.Points[best]
		if p.Intensity > b.Intensity || (p.Intensity == b.Intensity && p.ScanNum < b.ScanNum) {
			best = i
		}
	}
	return best
}

// summarize recomputes scan range and summary statistics from the points.
// Points must not be empty.
func (f *Feature) summarize() {
	f.LowScan = f.Points[0].ScanNum
	f.HighScan = f.Points[0].ScanNum
	f.FirstRTime = f.Points[0].RTime
	f.LastRTime = f.Points[0].RTime
	f.SumIntensity = 0
	f.XCorr = f.Points[0].XCorr
	var rtWeighted float64
	for _, p := range f.Points {
		if p.ScanNum < f.LowScan {
			f.LowScan = p.ScanNum
			f.FirstRTime = p.RTime
		}
		if p.ScanNum > f.HighScan {
			f.HighScan = p.ScanNum
			f.LastRTime = p.RTime
		}
		if p.XCorr > f.XCorr {
			f.XCorr = p.XCorr
		}
		f.SumIntensity += p.Intensity
		rtWeighted += p.RTime * p.Intensity
	}
	best := f.Points[f.bestPoint()]
	f.BestScan = best.ScanNum
	f.Intensity = best.Intensity
	f.MonoMass = best.MonoMass
	if f.SumIntensity > 0 {
		f.RTime = rtWeighted / f.SumIntensity
	} else {
		f.RTime = best.RTime
	}
}

// interpolate returns the value at x on the line through (x1,y1) and (x2,y2)
func interpolate(x1, x2 int, y1, y2 float64, x int) float64 {
	if x1 == x2 {
		return y1
	}
	return y1 + (y2-y1)*float64(x-x1)/float64(x2-x1)
}

// FillGaps returns the points of f ordered by scan number, with a synthetic
// point for every scan missing between LowScan and HighScan. Scan numbers
// unknown to rt are not scans of the run and are skipped; the retention
// time of a synthetic point comes from rt. With a nil rt every scan number
// is filled and retention times are interpolated. f itself is not changed.
func (f *Feature) FillGaps(rt func(scanNum int) (float64, bool)) []ProfilePoint {
	pts := make([]ProfilePoint, len(f.Points))
	copy(pts, f.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].ScanNum < pts[j].ScanNum })
	if len(pts) < 2 {
		return pts
	}
	filled := make([]ProfilePoint, 0, pts[len(pts)-1].ScanNum-pts[0].ScanNum+1)
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		filled = append(filled, a)
		for s := a.ScanNum + 1; s < b.ScanNum; s++ {
			t := 0.0
			if rt != nil {
				var ok bool
				if t, ok = rt(s); !ok {
					continue
				}
			} else {
				t = interpolate(a.ScanNum, b.ScanNum, a.RTime, b.RTime, s)
			}
			// Position between the bounding points, in retention time
			// when the run provides it
			frac := float64(s-a.ScanNum) / float64(b.ScanNum-a.ScanNum)
			if rt != nil && b.RTime > a.RTime {
				frac = (t - a.RTime) / (b.RTime - a.RTime)
			}
			p := ProfilePoint{
				Interpolated: true,
				ScanNum:      s,
				Intensity:    a.Intensity + frac*(b.Intensity-a.Intensity),
				MonoMass:     a.MonoMass + frac*(b.MonoMass-a.MonoMass),
				RTime:        t,
			}
			filled = append(filled, p)
		}
	}
	return append(filled, pts[len(pts)-1])
}
