package mzidentml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

const massH2O = float64(18.0105647)

// Monoisotopic residue masses
var aaMass = map[rune]float64{
	'A': 71.0371138,
	'C': 103.0091848,
	'D': 115.0269430,
	'E': 129.0425931,
	'F': 147.0684139,
	'G': 57.0214637,
	'H': 137.0589119,
	'I': 113.0840640,
	'K': 128.0949630,
	'L': 113.0840640,
	'M': 131.0404849,
	'N': 114.0429274,
	'P': 97.0527638,
	'O': 237.1477269, // Pyrrolysine
	'Q': 128.0585775,
	'R': 156.1011110,
	'S': 87.0320284,
	'T': 101.0476785,
	'U': 144.9595902, // Selenocysteine
	'V': 99.0684139,
	'W': 186.0793129,
	'Y': 163.0633285,
}

// Read reads mzIdentML content from io.reader
func Read(reader io.Reader) (MzIdentML, error) {
	var mzIdentML MzIdentML
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	err := d.Decode(&mzIdentML.content)
	if err != nil {
		return mzIdentML, err
	}
	mzIdentML.buildIndexes()
	mzIdentML.buildIdentList()
	return mzIdentML, err
}

func (m *MzIdentML) buildIndexes() {
	m.pepID2Idx = make(map[string]int, len(m.content.Peptide))
	for i, p := range m.content.Peptide {
		m.pepID2Idx[p.ID] = i
	}
	m.evID2Idx = make(map[string]int, len(m.content.PeptideEvidence))
	for i, e := range m.content.PeptideEvidence {
		m.evID2Idx[e.ID] = i
	}
	m.dbID2Idx = make(map[string]int, len(m.content.DBSequence))
	for i, s := range m.content.DBSequence {
		m.dbID2Idx[s.ID] = i
	}
}

func (m *MzIdentML) buildIdentList() {
	for i := range m.content.SpectrumIdentificationResult {
		for j := range m.content.SpectrumIdentificationResult[i].SpectrumIdentificationItem {
			m.identList = append(m.identList, identRef{specResultIdx: i, specItemIdx: j})
		}
	}
}

// NumIdents returns the total number of identifications in the mzIdentML file
// Note that for some spectra, multiple identifications may be present
// The identifications can be accessed using the Ident() method, which takes
// an index as argument. The index runs from 0 to NumIdents()-1
func (m *MzIdentML) NumIdents() int {
	return len(m.identList)
}

// Ident returns a spectrum identification from the mzIdentML file.
// Parameter i is the index of the identification to return. The index runs
// from 0 to NumIdents()-1
func (m *MzIdentML) Ident(i int) (Identification, error) {

	var ident Identification

	if i < 0 || i >= len(m.identList) {
		return ident, ErrInvalidIdentIndex
	}
	result := &m.content.SpectrumIdentificationResult[m.identList[i].specResultIdx]
	item := &result.SpectrumIdentificationItem[m.identList[i].specItemIdx]

	if pepIdx, ok := m.pepID2Idx[item.PeptideRef]; ok {
		pep := &m.content.Peptide[pepIdx]
		ident.PepSeq = pep.PeptideSequence
		ident.PepID = pep.ID
		for _, mod := range pep.Modification {
			ident.ModMass += mod.MonoisotopicMassDelta
		}
	}
	ident.Gene = m.gene(item)
	ident.Charge = item.ChargeState
	ident.SpecID = result.SpectrumID
	ident.RetentionTime = float64(-1)
	prio := math.MaxInt32
	for _, cv := range result.CvPar {
		// There are multiple CV terms that can be used to report the
		// retention time. In order of decreasing preference we use:
		// 1. MS:1000016 - scan start time
		// 2. MS:1000894 - retention time
		// 3. MS:1000826 - elution time
		// 4. MS:1001114 - retention time (deprecated)
		p := prio
		switch cv.Accession {
		case "MS:1000016":
			p = 1
		case "MS:1000894":
			p = 2
		case "MS:1000826":
			p = 3
		case "MS:1001114":
			p = 4
		}
		// If a (higher priority) term was found, process/store the retention time
		if p < prio {
			prio = p
			retentionTime, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return ident, err
			}
			// Check if the retention time is in minutes, otherwise assume it's seconds
			if cv.UnitAccession == "UO:0000031" || cv.UnitAccession == "MS:1000038" {
				retentionTime *= 60
			}
			ident.RetentionTime = retentionTime
		}
	}
	// Collect CV terms/values for the identification, the scores are in there
	ident.Cv = append(ident.Cv, item.CvPar...)

	return ident, nil
}

// gene returns the accession of the first database sequence referenced
// by the item's peptide evidence
func (m *MzIdentML) gene(item *spectrumIdentificationItem) string {
	for _, ref := range item.PeptideEvidenceRef {
		evIdx, ok := m.evID2Idx[ref.PeptideEvidenceRef]
		if !ok {
			continue
		}
		dbIdx, ok := m.dbID2Idx[m.content.PeptideEvidence[evIdx].DBSequenceRef]
		if ok && m.content.DBSequence[dbIdx].Accession != `` {
			return m.content.DBSequence[dbIdx].Accession
		}
	}
	return ``
}

// PepMass returns the uncharged monoisotopic mass of a peptide sequence
func PepMass(pepSeq string) (float64, error) {
	m := massH2O
	for _, aa := range pepSeq {
		aam, ok := aaMass[aa]
		if !ok {
			return 0.0, fmt.Errorf("%w: %q in %s", ErrInvalidAminoAcid, aa, pepSeq)
		}
		m += aam
	}
	return m, nil
}

// Mass returns the uncharged monoisotopic mass of the identified
// peptide, including modifications
func (ident *Identification) Mass() (float64, error) {
	m, err := PepMass(ident.PepSeq)
	if err != nil {
		return 0, err
	}
	return m + ident.ModMass, nil
}
