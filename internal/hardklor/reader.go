// Package hardklor reads the peak lists written by the Hardklor
// isotope distribution finder
package hardklor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/524D/kronik/internal/kronik"

	"golang.org/x/net/html/charset"
)

// ErrSyntax means a line of the peak list could not be parsed
var ErrSyntax = errors.New("hardklor: syntax error")

// Hardklor lines can be long when file names are included
const maxLineLen = 1024 * 1024

// Read reads a Hardklor peak list from reader. The input is assumed to
// be UTF-8.
func Read(reader io.Reader) (*kronik.Run, error) {
	return readLines(reader)
}

// ReadEncoding reads a Hardklor peak list in the character encoding
// with the given label (e.g. "iso-8859-1")
func ReadEncoding(reader io.Reader, label string) (*kronik.Run, error) {
	if label == `` {
		return readLines(reader)
	}
	r, err := charset.NewReaderLabel(label, reader)
	if err != nil {
		return nil, err
	}
	return readLines(r)
}

func readLines(reader io.Reader) (*kronik.Run, error) {
	run := kronik.NewRun()
	s := bufio.NewScanner(reader)
	s.Buffer(make([]byte, 64*1024), maxLineLen)
	lineNr := 0
	for s.Scan() {
		lineNr++
		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == `` {
			continue
		}
		fields := splitFields(line)
		var err error
		switch fields[0] {
		case `S`:
			err = parseScan(run, fields[1:])
		case `P`:
			err = parsePeptide(run, fields[1:])
		default:
			// Header and other record types carry nothing we use
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNr, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// splitFields splits a line on tabs. Older Hardklor versions separate
// with spaces, those lines are split on white space.
func splitFields(line string) []string {
	if strings.Contains(line, "\t") {
		f := strings.Split(line, "\t")
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}
		return f
	}
	return strings.Fields(line)
}

// parseScan handles a scan line: scan number, retention time and
// optionally the file name
func parseScan(run *kronik.Run, f []string) error {
	if len(f) < 2 {
		return fmt.Errorf("%w: scan line needs scan number and retention time", ErrSyntax)
	}
	scanNum, err := strconv.Atoi(f[0])
	if err != nil {
		return fmt.Errorf("%w: scan number %q", ErrSyntax, f[0])
	}
	rt, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return fmt.Errorf("%w: retention time %q", ErrSyntax, f[1])
	}
	scan := kronik.Scan{ScanNum: scanNum, RTime: rt}
	if len(f) > 2 && f[2] != `` {
		scan.File = run.FileIndex(f[2])
	}
	return run.AddScan(scan)
}

// parsePeptide handles a peptide line: mass, charge, intensity, base peak,
// analysis window, an unused field, modifications and correlation score.
// Only the first four are required.
func parsePeptide(run *kronik.Run, f []string) error {
	if len(run.Scans) == 0 {
		return fmt.Errorf("%w: peptide line before first scan line", ErrSyntax)
	}
	if len(f) < 4 {
		return fmt.Errorf("%w: peptide line needs at least 4 fields, got %d", ErrSyntax, len(f))
	}
	var d kronik.Detection
	var err error
	if d.MonoMass, err = parseFloat(`mass`, f[0]); err != nil {
		return err
	}
	if d.Charge, err = strconv.Atoi(f[1]); err != nil {
		return fmt.Errorf("%w: charge %q", ErrSyntax, f[1])
	}
	if d.Intensity, err = parseFloat(`intensity`, f[2]); err != nil {
		return err
	}
	if d.BasePeak, err = parseFloat(`base peak`, f[3]); err != nil {
		return err
	}
	if len(f) > 6 {
		d.Mods = run.ModIndex(f[6])
	}
	if len(f) > 7 && f[7] != `` {
		if d.XCorr, err = parseFloat(`correlation`, f[7]); err != nil {
			return err
		}
	}
	return run.AddDetection(d)
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrSyntax, name, s)
	}
	return v, nil
}
