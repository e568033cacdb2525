package mzidentml

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const testMzIdentML = `<?xml version="1.0" encoding="UTF-8"?>
<MzIdentML id="test" version="1.1.0" xmlns="http://psidev.info/psi/pi/mzIdentML/1.1">
  <SequenceCollection>
    <DBSequence id="DBSeq_1" accession="sp|P12345|ALBU_HUMAN"/>
    <DBSequence id="DBSeq_2" accession="sp|P99999|CYC_HUMAN"/>
    <Peptide id="PEP_1">
      <PeptideSequence>PEPTIDE</PeptideSequence>
    </Peptide>
    <Peptide id="PEP_2">
      <PeptideSequence>EEEMK</PeptideSequence>
      <Modification location="4" monoisotopicMassDelta="15.994915"/>
    </Peptide>
    <PeptideEvidence id="PE_1" dBSequence_ref="DBSeq_1" peptide_ref="PEP_1"/>
    <PeptideEvidence id="PE_2" dBSequence_ref="DBSeq_2" peptide_ref="PEP_2"/>
  </SequenceCollection>
  <DataCollection>
    <AnalysisData>
      <SpectrumIdentificationList id="SIL_1">
        <SpectrumIdentificationResult id="SIR_1" spectrumID="scan=12">
          <SpectrumIdentificationItem id="SII_1_1" chargeState="2" peptide_ref="PEP_1" rank="1">
            <PeptideEvidenceRef peptideEvidence_ref="PE_1"/>
            <cvParam accession="MS:1002257" name="Comet:expectation value" value="1.2e-5"/>
          </SpectrumIdentificationItem>
          <SpectrumIdentificationItem id="SII_1_2" chargeState="3" peptide_ref="PEP_2" rank="2">
          </SpectrumIdentificationItem>
          <cvParam accession="MS:1000894" name="retention time" value="100.0" unitAccession="UO:0000010"/>
          <cvParam accession="MS:1000016" name="scan start time" value="2.5" unitAccession="UO:0000031"/>
        </SpectrumIdentificationResult>
        <SpectrumIdentificationResult id="SIR_2" spectrumID="scan=20">
          <SpectrumIdentificationItem id="SII_2_1" chargeState="2" peptide_ref="PEP_2" rank="1">
            <PeptideEvidenceRef peptideEvidence_ref="PE_missing"/>
            <PeptideEvidenceRef peptideEvidence_ref="PE_2"/>
          </SpectrumIdentificationItem>
        </SpectrumIdentificationResult>
      </SpectrumIdentificationList>
    </AnalysisData>
  </DataCollection>
</MzIdentML>
`

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(testMzIdentML))
	if err != nil {
		t.Fatalf("Read: error return %v", err)
	}
	if n := f.NumIdents(); n != 3 {
		t.Fatalf("NumIdents is %d, expected 3", n)
	}

	ident, err := f.Ident(0)
	if err != nil {
		t.Fatalf("Ident: error return %v", err)
	}
	if ident.PepSeq != `PEPTIDE` || ident.Charge != 2 || ident.SpecID != `scan=12` {
		t.Errorf("Ident(0): %+v", ident)
	}
	if ident.Gene != `sp|P12345|ALBU_HUMAN` {
		t.Errorf("Ident(0) gene %q", ident.Gene)
	}
	// Scan start time wins over retention time, and is converted to seconds
	if ident.RetentionTime != 150 {
		t.Errorf("Ident(0) retention time %f, should be 150", ident.RetentionTime)
	}
	if len(ident.Cv) != 1 || ident.Cv[0].Accession != `MS:1002257` {
		t.Errorf("Ident(0) cv terms %+v", ident.Cv)
	}

	ident, _ = f.Ident(1)
	if ident.PepSeq != `EEEMK` || ident.Gene != `` || ident.Charge != 3 {
		t.Errorf("Ident(1): %+v", ident)
	}
	if math.Abs(ident.ModMass-15.994915) > 1e-9 {
		t.Errorf("Ident(1) modification mass %f", ident.ModMass)
	}

	ident, _ = f.Ident(2)
	if ident.Gene != `sp|P99999|CYC_HUMAN` {
		t.Errorf("Ident(2) gene %q", ident.Gene)
	}
	if ident.RetentionTime != -1 {
		t.Errorf("Ident(2) retention time %f, should be -1", ident.RetentionTime)
	}
	m, err := ident.Mass()
	if err != nil || math.Abs(m-680.2687069) > 1e-6 {
		t.Errorf("Ident(2) mass %f %v", m, err)
	}

	if _, err := f.Ident(3); err != ErrInvalidIdentIndex {
		t.Errorf("Ident: error return %v, should be ErrInvalidIdentIndex", err)
	}
}

func TestPepMass(t *testing.T) {
	m, err := PepMass(`PEPTIDE`)
	if err != nil {
		t.Fatalf("PepMass: error return %v", err)
	}
	if math.Abs(m-799.359964) > 1e-6 {
		t.Errorf("PepMass(PEPTIDE) %f, should be 799.359964", m)
	}
	if _, err := PepMass(`PEPXIDE`); !errors.Is(err, ErrInvalidAminoAcid) {
		t.Errorf("PepMass: error return %v, should be ErrInvalidAminoAcid", err)
	}
}
