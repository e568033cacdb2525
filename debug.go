// This file contains code to help debugging, and is
// separated in from the rest in order not to litter
// the main code with debugging stuff

package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/524D/kronik/internal/kronik"
)

var debugScans *string // Print debug output for features with best scan in range

var debugMin, debugMax int

func init() {
	debugScans = flag.String("debug", "",
		"Print debug output for features with best scan in `range` e.g. 300:320")
}

func setDebugRange() error {
	if *debugScans == `` {
		return nil
	}
	var err error
	debugMin, debugMax, err = parseIntRange(*debugScans, 0, math.MaxInt32)
	return err
}

func debugLogFeatures(feats []kronik.Feature) {
	if *debugScans == `` {
		return
	}
	for i := range feats {
		f := &feats[i]
		if f.BestScan < debugMin || f.BestScan > debugMax {
			continue
		}
		fmt.Printf("Feature:%d mass:%f charge:%d scans:%d-%d best:%d rt:%f intens:%f sum:%f\n",
			i, f.MonoMass, f.Charge, f.LowScan, f.HighScan, f.BestScan,
			f.RTime, f.Intensity, f.SumIntensity)
		if f.Gauss.Converged {
			fmt.Printf("  gauss amp:%f center:%f width:%f baseline:%f r2:%f\n",
				f.Gauss.Amplitude, f.Gauss.Center, f.Gauss.Width, f.Gauss.Baseline, f.Gauss.R2)
		}
		for _, p := range f.Points {
			mark := `+`
			if p.Interpolated {
				mark = `-`
			}
			fmt.Printf("  %s scan:%d rt:%f mass:%f intens:%f xcorr:%f\n",
				mark, p.ScanNum, p.RTime, p.MonoMass, p.Intensity, p.XCorr)
		}
	}
}
