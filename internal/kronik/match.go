package kronik

import (
	"math"
	"sort"
)

// ppmDiff returns the distance between mass and target in ppm of target
func ppmDiff(mass, target float64) float64 {
	return math.Abs(mass-target) / target * 1e6
}

// FindMatch returns the index of the best detection for a target mass and
// charge. dets must be sorted by ascending mass. Candidates within ppmTol of
// mass with the same charge are compared by intensity; equal intensities
// go to the smallest mass difference, then to the lowest index.
func FindMatch(dets []Detection, mass float64, charge int, ppmTol float64) (int, bool) {
	return bestMatch(dets, mass, charge, ppmTol, nil)
}

// bestMatch is FindMatch, skipping detections for which claimed is true
func bestMatch(dets []Detection, mass float64, charge int, ppmTol float64, claimed []bool) (int, bool) {
	best := -1
	consider := func(i int) {
		d := &dets[i]
		if d.Charge != charge || (claimed != nil && claimed[i]) {
			return
		}
		if best < 0 || betterMatch(d, &dets[best], mass) ||
			(i < best && !betterMatch(&dets[best], d, mass)) {
			best = i
		}
	}

	// Insertion point of the target mass, then walk outwards while in tolerance
	ins := sort.Search(len(dets), func(i int) bool { return dets[i].MonoMass >= mass })
	for i := ins - 1; i >= 0 && ppmDiff(dets[i].MonoMass, mass) <= ppmTol; i-- {
		consider(i)
	}
	for i := ins; i < len(dets) && ppmDiff(dets[i].MonoMass, mass) <= ppmTol; i++ {
		consider(i)
	}
	return best, best >= 0
}

// betterMatch reports whether a is a strictly better match for mass than b
func betterMatch(a, b *Detection, mass float64) bool {
	if a.Intensity != b.Intensity {
		return a.Intensity > b.Intensity
	}
	return math.Abs(a.MonoMass-mass) < math.Abs(b.MonoMass-mass)
}
