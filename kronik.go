// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/524D/kronik/internal/hardklor"
	"github.com/524D/kronik/internal/kronik"
	"github.com/524D/kronik/internal/mzml"
	"github.com/524D/kronik/internal/plot"
	"github.com/524D/kronik/internal/report"
)

const progName = "Kronik"

var progVersion = `Unknown`

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Command line parameters
type params struct {
	hkFilename    *string
	outFilename   *string  // tab-delimited feature list
	jsonFilename  *string  // JSON feature list
	dbFilename    *string  // SQLite feature database
	plotDir       *string  // directory for profile plots
	plotN         *int     // number of features to plot
	mzMLFilename  *string  // MS data for counting MS2 events
	mzIdFilename  *string  // identifications for labeling features
	encoding      *string  // character encoding of the Hardklor file
	ppm           *float64 // mass tolerance
	gap           *int     // gap tolerance
	match         *int     // minimum number of points
	gauss         *bool    // fit gaussians
	linkMode      *string  // linking algorithm
	rtWindow      *string  // retention time window to keep
	lowRT         float64  // lower rt window boundary
	upRT          float64  // upper rt window boundary
	contam        *float64 // remove features eluting longer than this (minutes)
	excludeMass   *string  // mass range to remove
	lowMass       float64  // lower boundary of excluded mass range
	upMass        float64  // upper boundary of excluded mass range
	sortKey       *string  // sort order of the output
	verbosity     int      // Verbosity of progress messages (infoDefault...)
	args          []string // Additional values passed on the command line
	debug         bool     // Add profile points to JSON (environment variable KRONIK_DEBUG=1)
	kronikPar     kronik.Params
	exeName       string
	linkModeValue kronik.LinkMode
}

var ErrRangeSpec = errors.New("invalid range specified")

// Parse an integer range specified as string
// A single integer N is converted into N:N
func parseIntRange(r string, min int, max int) (int, int, error) {
	re := regexp.MustCompile(`^\s*(\-?\d*)(:?)(\-?\d*)\s*$`)
	m := re.FindStringSubmatch(r)
	if m == nil {
		return min, max, ErrRangeSpec
	}
	minOut := min
	maxOut := max
	if m[1] != "" {
		minOut, _ = strconv.Atoi(m[1])
		if minOut < min {
			minOut = min
		}
		if m[2] == "" {
			maxOut = minOut
		}
	}
	if m[3] != "" {
		maxOut, _ = strconv.Atoi(m[3])
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// Parse string like "-12.01e1:+6" into 2 values, -120.1 and 6.0
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12.01e1:"), the default is assigned
func parseFloat64Range(r string, min float64, max float64) (
	float64, float64, error) {
	re := regexp.MustCompile(`\s*([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?):([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.ParseFloat(m[1], 64)
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 4 && m[3] != "" {
		maxOut, _ = strconv.ParseFloat(m[3], 64)
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// runKronik links, filters and exports the features of the Hardklor file
// in par and returns the number of features written
func runKronik(par params) (int, error) {
	t := time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Reading peak list from %s: ", *par.hkFilename)
	}
	f, err := os.Open(*par.hkFilename)
	if err != nil {
		return 0, err
	}
	run, err := hardklor.ReadEncoding(f, *par.encoding)
	f.Close()
	if err != nil {
		return 0, fmt.Errorf("hardklor.Read: %w", err)
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s (%d scans, %d detections)\n", time.Since(t),
			len(run.Scans), run.NumDetections())
		t = time.Now()
		fmt.Fprintf(os.Stderr, "Linking features: ")
	}

	p, err := kronik.NewProcessor(par.kronikPar)
	if err != nil {
		return 0, err
	}
	p.Load(run)
	if err := p.Process(); err != nil {
		return 0, err
	}
	feats := p.Features()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s (%d features)\n", time.Since(t), feats.Len())
		t = time.Now()
	}

	var mzMLData *mzml.MzML
	if *par.mzMLFilename != `` {
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "Counting MS2 events from %s: ", *par.mzMLFilename)
		}
		mzMLData, err = readMzML(*par.mzMLFilename)
		if err != nil {
			return 0, err
		}
		events, err := ms2Events(mzMLData)
		if err != nil {
			return 0, fmt.Errorf("reading MS2 events: %w", err)
		}
		feats.CountMS2(events, par.kronikPar.PPMTol)
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "%s (%d events)\n", time.Since(t), len(events))
			t = time.Now()
		}
	}
	if *par.mzIdFilename != `` {
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "Labeling features from %s: ", *par.mzIdFilename)
		}
		ids, err := identifications(*par.mzIdFilename, mzMLData)
		if err != nil {
			return 0, fmt.Errorf("reading identifications: %w", err)
		}
		n := feats.Annotate(ids, par.kronikPar.PPMTol)
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "%s (%d of %d features labeled)\n", time.Since(t), n, feats.Len())
			t = time.Now()
		}
	}

	feats.FilterRT(par.lowRT, par.upRT)
	if *par.contam > 0 {
		feats.RemoveContaminants(*par.contam)
	}
	if *par.excludeMass != `` {
		feats.RemoveMass(par.lowMass, par.upMass)
	}
	if *par.sortKey != `` {
		if err := feats.Sort(*par.sortKey); err != nil {
			return 0, err
		}
	}
	debugLogFeatures(feats.All())

	table := report.NewTable(filepath.Base(*par.hkFilename), p)
	if err := writeOutputs(par, table, p); err != nil {
		return 0, err
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Writing output: %s\n", time.Since(t))
	}
	return feats.Len(), nil
}

func writeOutputs(par params, table *report.Table, p *kronik.Processor) error {
	out, err := os.Create(*par.outFilename)
	if err != nil {
		return err
	}
	if err := report.WriteText(out, table); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if *par.jsonFilename != `` {
		f, err := os.Create(*par.jsonFilename)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteJSON(f, table, par.debug); err != nil {
			return err
		}
	}
	if *par.dbFilename != `` {
		w, err := report.NewDBWriter(*par.dbFilename)
		if err != nil {
			return err
		}
		if err := w.Write(table); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	if *par.plotDir != `` {
		files, err := plot.Profiles(*par.plotDir, table.Features, *par.plotN, p.RT)
		if err != nil {
			return err
		}
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "Wrote %d plots to %s\n", len(files), *par.plotDir)
		}
	}
	return nil
}

func sanatizeParams(par *params) error {
	if len(par.args) != 1 {
		return fmt.Errorf("last argument must be name of Hardklor file")
	}
	hk := par.args[0]
	par.hkFilename = &hk
	var extension = filepath.Ext(hk)
	var startName = hk[0 : len(hk)-len(extension)]
	if *par.outFilename == "" {
		*par.outFilename = startName + ".kro.txt"
	}

	var err error
	par.lowRT, par.upRT = -math.MaxFloat64, math.MaxFloat64
	if *par.rtWindow != `` {
		par.lowRT, par.upRT, err = parseFloat64Range(*par.rtWindow,
			-math.MaxFloat64, math.MaxFloat64)
		if err != nil {
			return fmt.Errorf("invalid rt window %q", *par.rtWindow)
		}
	}
	if *par.excludeMass != `` {
		par.lowMass, par.upMass, err = parseFloat64Range(*par.excludeMass,
			0, math.MaxFloat64)
		if err != nil {
			return fmt.Errorf("invalid mass range %q", *par.excludeMass)
		}
	}
	if *par.plotN < 1 {
		return fmt.Errorf("plotn must be at least 1")
	}

	par.linkModeValue, err = kronik.ParseLinkMode(*par.linkMode)
	if err != nil {
		return err
	}
	par.kronikPar = kronik.Params{
		PPMTol:   *par.ppm,
		GapTol:   *par.gap,
		MatchTol: *par.match,
		GaussFit: *par.gauss,
		LinkMode: par.linkModeValue,
	}
	return par.kronikPar.Validate()
}

func usage() {
	exeName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr,
		`USAGE:
  %s [options] <Hardklor file>

  This program links the isotope distributions found by Hardklor in
  consecutive MS1 scans into chromatographic features (peptide elution
  profiles), and writes one line per feature.

OPTIONS:
`, exeName)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr,
		`
SORT KEYS:
    basepeak, bestscan, mass, firstrt, intensity (descending), rt,
    sumintensity (descending). Default is the order in which features
    are completed.

ENVIRONMENT VARIABLES:
    When environment variable KRONIK_DEBUG=1, the points of every feature are
    added to the JSON output.

USAGE EXAMPLES:
  %s yeast.hk
    Link features in yeast.hk with default parameters and write them to
    yeast.kro.txt.

  %s -ppm 5 -gap 2 -gauss -contam 5 -json yeast.json yeast.hk
    Idem, but with 5 ppm tolerance, allowing 2 missing scans, fitting a
    gaussian to each feature, removing features that elute longer than
    5 minutes and writing JSON output as well.
`, exeName, exeName)
}

func defineFlags(fs *flag.FlagSet, par *params) {
	par.outFilename = fs.String("o", "",
		"`filename` of the tab-delimited feature list (default <input>.kro.txt)")
	par.jsonFilename = fs.String("json", "",
		"`filename` for JSON output")
	par.dbFilename = fs.String("db", "",
		"`filename` for SQLite output")
	par.plotDir = fs.String("plot", "",
		"`directory` for PNG plots of the most intense features")
	par.plotN = fs.Int("plotn", 10,
		`number of features to plot`)
	par.mzMLFilename = fs.String("mzml", "",
		"mzML `filename` for counting MS2 events per feature")
	par.mzIdFilename = fs.String("mzid", "",
		"mzIdentML `filename` for labeling features with peptide and gene")
	par.encoding = fs.String("encoding", "",
		"character `encoding` of the Hardklor file (default utf-8)")
	par.ppm = fs.Float64("ppm", kronik.DefaultPPMTol,
		`mass tolerance (ppm) for linking detections`)
	par.gap = fs.Int("gap", kronik.DefaultGapTol,
		`number of consecutive scans a feature may miss`)
	par.match = fs.Int("match", kronik.DefaultMatchTol,
		`minimum number of scans of a feature`)
	par.gauss = fs.Bool("gauss", false,
		`fit a gaussian to every feature`)
	par.linkMode = fs.String("link", "sweep",
		"linking `algorithm`"+`:
    sweep: single pass over the scans
    max: seed features at the most intense detections`)
	par.rtWindow = fs.String("rt", "",
		"retention time `range` (minutes) of features to keep, e.g. 10:60")
	par.contam = fs.Float64("contam", 0,
		`remove features that elute longer than this (minutes). 0 keeps all`)
	par.excludeMass = fs.String("exclude", "",
		"mass `range` of features to remove, e.g. 1000:1200")
	par.sortKey = fs.String("sort", "",
		"sort `key` of the output")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var par params

	defineFlags(flag.CommandLine, &par)
	version := flag.Bool("version", false,
		`Show software version`)
	verbose := flag.Bool("verbose", false,
		`Print more verbose progress information`)
	quiet := flag.Bool("quiet", false,
		`Don't print any output except for errors`)
	flag.Usage = usage
	flag.Parse()
	if *version {
		fmt.Fprintf(os.Stderr, "%s version %s\n", progName, progVersion)
		return
	}
	if *verbose {
		par.verbosity = infoVerbose
	}
	if *quiet {
		par.verbosity = infoSilent
	}
	par.args = flag.Args()
	// Check if debug output should be enabled
	par.debug = os.Getenv("KRONIK_DEBUG") == `1`

	par.exeName = filepath.Base(os.Args[0])
	if err := sanatizeParams(&par); err != nil {
		fmt.Fprintf(os.Stderr, `%v
Type %s --help for usage
`, err, par.exeName)
		os.Exit(2)
	}
	if err := setDebugRange(); err != nil {
		fmt.Fprintf(os.Stderr, `Invalid debug range.
Type %s --help for usage
`, par.exeName)
		os.Exit(2)
	}

	t := time.Now()
	n, err := runKronik(par)
	if err != nil {
		log.Fatalf("%s: %v", progName, err)
	}
	if par.verbosity != infoSilent {
		fmt.Fprintf(os.Stderr, "%d features written to %s in %s\n", n, *par.outFilename, time.Since(t))
	}
}
