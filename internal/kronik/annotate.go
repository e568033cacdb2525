package kronik

import (
	"sort"
)

const massProton = float64(1.007276466879)

// MS2Event is the precursor of one fragmentation spectrum
type MS2Event struct {
	RTime  float64 // minutes
	Mz     float64
	Charge int // 0 if unknown
}

// Identification is a peptide assigned to a fragmentation spectrum
type Identification struct {
	Sequence string
	Gene     string
	MonoMass float64 // uncharged, including modifications
	Charge   int
	RTime    float64 // minutes
}

// neutralMass returns the uncharged mass of an ion with m/z mz and charge z
func neutralMass(mz float64, z int) float64 {
	return (mz - massProton) * float64(z)
}

// CountMS2 sets MS2Events of every feature to the number of events that
// elute within the feature and whose precursor mass is within ppmTol of
// the feature mass. Events without charge are taken to have the charge of
// the feature.
func (fs *Features) CountMS2(events []MS2Event, ppmTol float64) {
	ev := make([]MS2Event, len(events))
	copy(ev, events)
	sort.SliceStable(ev, func(i, j int) bool { return ev[i].RTime < ev[j].RTime })
	for i := range fs.list {
		f := &fs.list[i]
		f.MS2Events = 0
		k := sort.Search(len(ev), func(k int) bool { return ev[k].RTime >= f.FirstRTime })
		for ; k < len(ev) && ev[k].RTime <= f.LastRTime; k++ {
			z := ev[k].Charge
			if z == 0 {
				z = f.Charge
			}
			if ppmDiff(neutralMass(ev[k].Mz, z), f.MonoMass) <= ppmTol {
				f.MS2Events++
			}
		}
	}
}

// Annotate labels features with the sequence and gene of identifications
// of the same charge that elute within the feature and have a mass within
// ppmTol of the feature mass. When several identifications match a
// feature, the one closest in mass wins. It returns the number of labeled
// features.
func (fs *Features) Annotate(ids []Identification, ppmTol float64) int {
	n := 0
	for i := range fs.list {
		f := &fs.list[i]
		best := -1
		var bestDiff float64
		for k := range ids {
			id := &ids[k]
			if id.Charge != f.Charge || id.RTime < f.FirstRTime || id.RTime > f.LastRTime {
				continue
			}
			d := ppmDiff(id.MonoMass, f.MonoMass)
			if d <= ppmTol && (best < 0 || d < bestDiff) {
				best, bestDiff = k, d
			}
		}
		if best >= 0 {
			f.Sequence = ids[best].Sequence
			f.Gene = ids[best].Gene
			n++
		}
	}
	return n
}
