// Package plot renders elution profiles of features as PNG images
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/524D/kronik/internal/kronik"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Number of samples of the fitted Gaussian curve
const gaussSamples = 200

var (
	observedColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	interpolatedColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	gaussColor        = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Profiles writes a PNG of the n most intense features to outputDir and
// returns the file names. Gaps are filled using rt, see Feature.FillGaps.
func Profiles(outputDir string, features []kronik.Feature, n int,
	rt func(scanNum int) (float64, bool)) ([]string, error) {

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return features[idx[a]].Intensity > features[idx[b]].Intensity
	})
	if n < len(idx) {
		idx = idx[:n]
	}

	var files []string
	for rank, i := range idx {
		f := &features[i]
		file := filepath.Join(outputDir,
			fmt.Sprintf("feature_%03d_%.4f_z%d.png", rank+1, f.MonoMass, f.Charge))
		if err := Profile(f, rt, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

// Profile writes the elution profile of f to file. Observed and
// interpolated points are drawn with different glyphs, and the Gaussian
// fit as a line when the fit converged.
func Profile(f *kronik.Feature, rt func(scanNum int) (float64, bool), file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Mass %.4f charge %d, scans %d-%d", f.MonoMass, f.Charge, f.LowScan, f.HighScan)
	p.X.Label.Text = "Retention time (min)"
	p.Y.Label.Text = "Intensity"

	var observed, interpolated plotter.XYs
	for _, pt := range f.FillGaps(rt) {
		xy := plotter.XY{X: pt.RTime, Y: pt.Intensity}
		if pt.Interpolated {
			interpolated = append(interpolated, xy)
		} else {
			observed = append(observed, xy)
		}
	}

	if len(observed) > 0 {
		s, err := plotter.NewScatter(observed)
		if err != nil {
			return fmt.Errorf("failed to plot observed points: %w", err)
		}
		s.GlyphStyle.Color = observedColor
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("observed", s)
	}
	if len(interpolated) > 0 {
		s, err := plotter.NewScatter(interpolated)
		if err != nil {
			return fmt.Errorf("failed to plot interpolated points: %w", err)
		}
		s.GlyphStyle.Color = interpolatedColor
		s.GlyphStyle.Shape = draw.RingGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("interpolated", s)
	}

	if g := f.Gauss; g.Converged && g.Width > 0 && f.LastRTime > f.FirstRTime {
		curve := make(plotter.XYs, gaussSamples)
		step := (f.LastRTime - f.FirstRTime) / float64(gaussSamples-1)
		for i := range curve {
			t := f.FirstRTime + float64(i)*step
			curve[i] = plotter.XY{X: t, Y: g.At(t)}
		}
		l, err := plotter.NewLine(curve)
		if err != nil {
			return fmt.Errorf("failed to plot gaussian fit: %w", err)
		}
		l.Color = gaussColor
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("gauss fit (R2 %.3f)", g.R2), l)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save %s: %w", file, err)
	}
	return nil
}
