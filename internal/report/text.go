package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var textHeader = []string{
	`First Scan`, `Last Scan`, `Num of Scans`, `Charge`, `Monoisotopic Mass`,
	`Base Isotope Peak`, `Best Intensity`, `Summed Intensity`, `First RTime`,
	`Last RTime`, `Weighted RTime`, `Best Correlation`, `Modifications`,
}

var gaussHeader = []string{
	`Gauss Amplitude`, `Gauss Center`, `Gauss Width`, `Gauss Baseline`, `Gauss R2`,
}

var annotationHeader = []string{`MS2 Events`, `Sequence`, `Gene`}

// WriteText writes one tab-delimited line per feature. The Gaussian
// columns are present when the features were fitted.
func WriteText(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	header := append([]string(nil), textHeader...)
	if t.Params.GaussFit {
		header = append(header, gaussHeader...)
	}
	header = append(header, annotationHeader...)
	fmt.Fprintln(bw, strings.Join(header, "\t"))

	for i := range t.Features {
		f := &t.Features[i]
		fmt.Fprintf(bw, "%d\t%d\t%d\t%d\t%.4f\t%.4f\t%.0f\t%.0f\t%.4f\t%.4f\t%.4f\t%.4f\t%s",
			f.LowScan, f.HighScan, f.Datapoints(), f.Charge, f.MonoMass,
			f.BasePeak, f.Intensity, f.SumIntensity, f.FirstRTime,
			f.LastRTime, f.RTime, f.XCorr, t.mod(f.Mods))
		if t.Params.GaussFit {
			g := f.Gauss
			fmt.Fprintf(bw, "\t%.0f\t%.4f\t%.4f\t%.0f\t%.4f",
				g.Amplitude, g.Center, g.Width, g.Baseline, g.R2)
		}
		fmt.Fprintf(bw, "\t%d\t%s\t%s\n", f.MS2Events, f.Sequence, f.Gene)
	}
	return bw.Flush()
}
