package mzml

import (
	"encoding/xml"
	"io"
	"strconv"

	"golang.org/x/net/html/charset"
)

// CV terms
const (
	cvScanStartTime           = `MS:1000016`
	cvMSLevel                 = `MS:1000511`
	cvSelectedIonMz           = `MS:1000744`
	cvChargeState             = `MS:1000041`
	cvIsolationWindowTargetMz = `MS:1000827`
	cvUnitMinute              = `UO:0000031`
	cvUnitMinuteMS            = `MS:1000038`
)

// Read reads mzML file from an io.Reader
func Read(reader io.Reader) (MzML, error) {
	var mzML MzML

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// We are only interested in mzML content, so skip over indexedmzML
	// and everything else
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return mzML, tokenErr
		}
		switch t := t.(type) {
		case xml.StartElement:
			if t.Name.Local == "mzML" {
				if err := d.DecodeElement(&mzML.content, &t); err != nil {
					return mzML, err
				}
			}
		}
	}

	err := mzML.traverseScan()
	return mzML, err
}

// NumSpecs returns the number of spectra
func (f *MzML) NumSpecs() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// RetentionTime returns the retention time of a spectrum in seconds,
// or -1 if the spectrum has none
func (f *MzML) RetentionTime(scanIndex int) (float64, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0.0, ErrInvalidScanIndex
	}
	for _, scan := range f.content.Run.SpectrumList.Spectrum[scanIndex].ScanList.Scan {
		for _, cvParam := range scan.CvPar {
			if cvParam.Accession == cvScanStartTime {
				retentionTime, err := strconv.ParseFloat(cvParam.Value, 64)
				// Check if the retention time is in minutes, otherwise assume it's seconds
				if cvParam.UnitAccession == cvUnitMinute ||
					cvParam.UnitAccession == cvUnitMinuteMS {
					retentionTime *= 60
				}

				return retentionTime, err
			}
		}
	}
	return -1.0, nil
}

// MSLevel returns the MS level of a scan
func (f *MzML) MSLevel(scanIndex int) (int, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0, ErrInvalidScanIndex
	}

	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[scanIndex].CvPar {
		if cvParam.Accession == cvMSLevel {
			msLevel, err := strconv.ParseInt(cvParam.Value, 10, 64)
			return int(msLevel), err
		}
	}
	return 1, nil // If nothing else, guess it's MS1
}

// traverseScan fills the arrays f.index2id and f.id2Index
// to make scans accessible
func (f *MzML) traverseScan() error {
	f.index2id = make([]string, f.NumSpecs())
	f.id2Index = make(map[string]int, f.NumSpecs())

	for i := range f.content.Run.SpectrumList.Spectrum {
		if err := f.addSpecToIndex(i); err != nil {
			return err
		}
	}
	return nil
}

func (f *MzML) addSpecToIndex(i int) error {
	if i != f.content.Run.SpectrumList.Spectrum[i].Index {
		return ErrInvalidScanIndex
	}
	f.index2id[i] = f.content.Run.SpectrumList.Spectrum[i].ID
	f.id2Index[f.content.Run.SpectrumList.Spectrum[i].ID] = i
	return nil
}

// ScanIndex converts a scan identifier (the string used in the mzML file)
// into an index that is used to access the scans
func (f *MzML) ScanIndex(scanID string) (int, error) {
	if index, ok := f.id2Index[scanID]; ok {
		return index, nil
	}
	return 0, ErrInvalidScanID
}

// ScanID converts a scan index (used to access the scan data) into a scan id
// (used in the mzML file)
func (f *MzML) ScanID(scanIndex int) (string, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		return f.index2id[scanIndex], nil
	}
	return "", ErrInvalidScanIndex
}

// Precursors returns the selected ions of a spectrum. When a precursor
// has no selected ion, the isolation window target is used as m/z.
func (f *MzML) Precursors(scanIndex int) ([]Precursor, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return nil, ErrInvalidScanIndex
	}
	var prec []Precursor
	for _, pl := range f.content.Run.SpectrumList.Spectrum[scanIndex].PrecursorList {
		for _, xp := range pl.Precursor {
			n := len(prec)
			for _, si := range xp.SelectedIonList.SelectedIon {
				p, ok, err := selectedIonPrecursor(si.CvPar)
				if err != nil {
					return nil, err
				}
				if ok {
					prec = append(prec, p)
				}
			}
			if len(prec) > n {
				continue
			}
			for _, cv := range xp.IsolationWindow.CvPar {
				if cv.Accession == cvIsolationWindowTargetMz {
					mz, err := strconv.ParseFloat(cv.Value, 64)
					if err != nil {
						return nil, err
					}
					prec = append(prec, Precursor{Mz: mz})
				}
			}
		}
	}
	return prec, nil
}

func selectedIonPrecursor(cvPar []CVParam) (Precursor, bool, error) {
	var p Precursor
	found := false
	for _, cv := range cvPar {
		switch cv.Accession {
		case cvSelectedIonMz:
			mz, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return p, false, err
			}
			p.Mz = mz
			found = true
		case cvChargeState:
			z, err := strconv.Atoi(cv.Value)
			if err != nil {
				return p, false, err
			}
			p.Charge = z
		}
	}
	return p, found, nil
}
