package kronik

import (
	"fmt"
)

// Processor links the detections of a Run into Features
type Processor struct {
	par     Params
	run     *Run
	feats   Features
	percent int
}

// NewProcessor returns a Processor using parameters par
func NewProcessor(par Params) (*Processor, error) {
	if err := par.Validate(); err != nil {
		return nil, err
	}
	return &Processor{par: par}, nil
}

// Params returns the current parameters
func (p *Processor) Params() Params {
	return p.par
}

// SetPPMTol sets the mass tolerance in ppm
func (p *Processor) SetPPMTol(d float64) error {
	return p.setParams(func(par *Params) { par.PPMTol = d })
}

// SetGapTol sets the number of scans a feature may miss
func (p *Processor) SetGapTol(i int) error {
	return p.setParams(func(par *Params) { par.GapTol = i })
}

// SetMatchTol sets the minimum number of points of a feature
func (p *Processor) SetMatchTol(i int) error {
	return p.setParams(func(par *Params) { par.MatchTol = i })
}

// SetGaussFit enables or disables Gaussian fitting
func (p *Processor) SetGaussFit(b bool) {
	p.par.GaussFit = b
}

func (p *Processor) setParams(set func(par *Params)) error {
	par := p.par
	set(&par)
	if err := par.Validate(); err != nil {
		return err
	}
	p.par = par
	return nil
}

// Load sets the run to process. Scans of the run are reordered (but
// otherwise not changed) during processing.
func (p *Processor) Load(run *Run) {
	p.run = run
	p.percent = 0
}

// Run returns the loaded run
func (p *Processor) Run() *Run {
	return p.run
}

// ClearRun drops the loaded run, the features are kept
func (p *Processor) ClearRun() {
	p.run = nil
}

// Features returns the features found by the last call to Process
func (p *Processor) Features() *Features {
	return &p.feats
}

// Percent returns how much of the current run has been processed (0-100)
func (p *Processor) Percent() int {
	return p.percent
}

func (p *Processor) setPercent(pc int) {
	if pc > 100 {
		pc = 100
	}
	if pc > p.percent {
		p.percent = pc
	}
}

// RT returns the retention time of a scan in the loaded run
func (p *Processor) RT(scanNum int) (float64, bool) {
	if p.run == nil {
		return 0, false
	}
	return p.run.RT(scanNum)
}

// Process replaces the feature list with the features linked from the
// loaded run. When Gaussian fitting is enabled, every feature is fitted.
func (p *Processor) Process() error {
	if p.run == nil {
		return fmt.Errorf("%w: no run loaded", ErrInvalidInput)
	}
	p.feats.Clear()
	p.percent = 0
	switch p.par.LinkMode {
	case LinkSeedMax:
		p.linkSeedMax()
	default:
		p.linkSweep()
	}
	if p.par.GaussFit {
		for i := range p.feats.list {
			p.FitFeature(&p.feats.list[i])
		}
	}
	p.setPercent(100)
	return nil
}

// FitFeature fits a Gaussian to the elution profile of f, filling gaps
// from the loaded run
func (p *Processor) FitFeature(f *Feature) {
	pts := f.FillGaps(p.RT)
	t := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, pt := range pts {
		t[i] = pt.RTime
		y[i] = pt.Intensity
	}
	f.Gauss = FitGaussian(t, y)
}

// Pearson correlates the features at indices i1 and i2.
// See PearsonFeatures for byScan and interpolate.
func (p *Processor) Pearson(i1, i2 int, byScan, interpolate bool) (Correlation, error) {
	f1, err := p.feats.At(i1)
	if err != nil {
		return Correlation{}, err
	}
	f2, err := p.feats.At(i2)
	if err != nil {
		return Correlation{}, err
	}
	return PearsonFeatures(f1, f2, byScan, interpolate, p.RT)
}
