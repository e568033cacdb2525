package report

import (
	"encoding/json"
	"io"

	"github.com/524D/kronik/internal/kronik"
)

type jsonDocument struct {
	// Version of the document layout, see FormatVersion
	KronikVersion string
	Source        string
	Params        kronik.Params
	Features      []jsonFeature
}

type jsonFeature struct {
	FirstScan     int
	LastScan      int
	BestScan      int
	NumScans      int
	Charge        int
	MonoMass      float64
	BasePeak      float64
	Intensity     float64
	SumIntensity  float64
	FirstRTime    float64
	LastRTime     float64
	RTime         float64
	XCorr         float64
	Modifications string           `json:",omitempty"`
	Gauss         *kronik.GaussFit `json:",omitempty"`
	MS2Events     int              `json:",omitempty"`
	Sequence      string           `json:",omitempty"`
	Gene          string           `json:",omitempty"`
	Points        []jsonPoint      `json:",omitempty"`
}

type jsonPoint struct {
	ScanNum      int
	RTime        float64
	Intensity    float64
	MonoMass     float64
	XCorr        float64 `json:",omitempty"`
	Interpolated bool    `json:",omitempty"`
}

// WriteJSON writes the features as an indented JSON document. With points,
// the elution profile of every feature is included.
func WriteJSON(w io.Writer, t *Table, points bool) error {
	doc := jsonDocument{
		KronikVersion: FormatVersion,
		Source:        t.Source,
		Params:        t.Params,
		Features:      make([]jsonFeature, 0, len(t.Features)),
	}
	for i := range t.Features {
		f := &t.Features[i]
		jf := jsonFeature{
			FirstScan:     f.LowScan,
			LastScan:      f.HighScan,
			BestScan:      f.BestScan,
			NumScans:      f.Datapoints(),
			Charge:        f.Charge,
			MonoMass:      f.MonoMass,
			BasePeak:      f.BasePeak,
			Intensity:     f.Intensity,
			SumIntensity:  f.SumIntensity,
			FirstRTime:    f.FirstRTime,
			LastRTime:     f.LastRTime,
			RTime:         f.RTime,
			XCorr:         f.XCorr,
			Modifications: t.mod(f.Mods),
			MS2Events:     f.MS2Events,
			Sequence:      f.Sequence,
			Gene:          f.Gene,
		}
		if t.Params.GaussFit {
			g := f.Gauss
			jf.Gauss = &g
		}
		if points {
			for _, p := range f.Points {
				jf.Points = append(jf.Points, jsonPoint{
					ScanNum:      p.ScanNum,
					RTime:        p.RTime,
					Intensity:    p.Intensity,
					MonoMass:     p.MonoMass,
					XCorr:        p.XCorr,
					Interpolated: p.Interpolated,
				})
			}
		}
		doc.Features = append(doc.Features, jf)
	}
	e := json.NewEncoder(w)
	e.SetIndent(``, `  `) // Make output easier to read for humans
	return e.Encode(doc)
}
