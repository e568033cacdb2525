package main

import (
	"fmt"
	"log"
	"os"

	"github.com/524D/kronik/internal/kronik"
	"github.com/524D/kronik/internal/mzidentml"
	"github.com/524D/kronik/internal/mzml"
)

func readMzML(filename string) (*mzml.MzML, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mzMLData, err := mzml.Read(f)
	if err != nil {
		return nil, fmt.Errorf("mzml.Read: %w", err)
	}
	return &mzMLData, nil
}

// ms2Events lists the precursors of all MS2 scans, with retention time
// in minutes
func ms2Events(mzMLData *mzml.MzML) ([]kronik.MS2Event, error) {
	var events []kronik.MS2Event
	for i := 0; i < mzMLData.NumSpecs(); i++ {
		msLevel, err := mzMLData.MSLevel(i)
		if err != nil {
			return nil, err
		}
		if msLevel != 2 {
			continue
		}
		rt, err := mzMLData.RetentionTime(i)
		if err != nil {
			return nil, err
		}
		if rt < 0 {
			continue
		}
		precursors, err := mzMLData.Precursors(i)
		if err != nil {
			return nil, err
		}
		for _, p := range precursors {
			events = append(events, kronik.MS2Event{
				RTime:  rt / 60.0,
				Mz:     p.Mz,
				Charge: p.Charge,
			})
		}
	}
	return events, nil
}

// identifications reads the peptide identifications of an mzIdentML file.
// Identifications without retention time get the retention time of their
// spectrum in mzMLData, if present.
func identifications(filename string, mzMLData *mzml.MzML) ([]kronik.Identification, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mzIdent, err := mzidentml.Read(f)
	if err != nil {
		return nil, fmt.Errorf("mzidentml.Read: %w", err)
	}

	var ids []kronik.Identification
	skipped := 0
	for i := 0; i < mzIdent.NumIdents(); i++ {
		ident, err := mzIdent.Ident(i)
		if err != nil {
			return nil, err
		}
		mass, err := ident.Mass()
		if err != nil {
			skipped++
			continue
		}
		rt := ident.RetentionTime
		if rt < 0 && mzMLData != nil {
			if scanIndex, err := mzMLData.ScanIndex(ident.SpecID); err == nil {
				rt, _ = mzMLData.RetentionTime(scanIndex)
			}
		}
		if rt < 0 {
			skipped++
			continue
		}
		ids = append(ids, kronik.Identification{
			Sequence: ident.PepSeq,
			Gene:     ident.Gene,
			MonoMass: mass,
			Charge:   ident.Charge,
			RTime:    rt / 60.0,
		})
	}
	if skipped > 0 {
		log.Printf("%d identifications without usable mass or retention time skipped", skipped)
	}
	return ids, nil
}
