package kronik

import "sort"

// track is a feature that is still being extended
type track struct {
	id       int // creation order, older tracks win ties
	charge   int
	mods     int
	best     Detection // most intense detection so far
	lastMass float64   // mass of the last observed point
	miss     int       // consecutive scans without a match
	points   []ProfilePoint
}

func newTrack(id int, scan *Scan, d Detection) *track {
	t := &track{id: id, charge: d.Charge, mods: d.Mods, best: d, lastMass: d.MonoMass}
	t.add(scan, d)
	return t
}

func (t *track) add(scan *Scan, d Detection) {
	t.points = append(t.points, ProfilePoint{
		ScanNum:   scan.ScanNum,
		RTime:     scan.RTime,
		Intensity: d.Intensity,
		MonoMass:  d.MonoMass,
		XCorr:     d.XCorr,
	})
	if d.Intensity > t.best.Intensity {
		t.best = d
	}
}

func (t *track) extend(scan *Scan, d Detection) {
	t.add(scan, d)
	t.lastMass = d.MonoMass
	t.miss = 0
}

// closeTrack moves a finished track to the feature list, unless it has too
// few observations to be trusted
func (p *Processor) closeTrack(t *track) {
	if len(t.points) < p.par.MatchTol {
		return
	}
	f := Feature{
		Charge:   t.charge,
		Mods:     t.mods,
		BasePeak: t.best.BasePeak,
		Points:   t.points,
	}
	f.SortScanNum()
	f.summarize()
	p.feats.list = append(p.feats.list, f)
}

// linkSweep links detections in a single pass over the scans
func (p *Processor) linkSweep() {
	var open []*track
	nextID := 0
	n := len(p.run.Scans)
	for si := range p.run.Scans {
		scan := &p.run.Scans[si]
		scan.SortMonoMass()
		claimed := make([]bool, len(scan.Detections))
		matched := p.claim(open, scan.Detections, claimed)

		kept := open[:0]
		for k, t := range open {
			if i := matched[k]; i >= 0 {
				t.extend(scan, scan.Detections[i])
				kept = append(kept, t)
				continue
			}
			t.miss++
			if t.miss > p.par.GapTol {
				p.closeTrack(t)
				continue
			}
			kept = append(kept, t)
		}
		open = kept

		// Whatever was not claimed starts a new feature
		for i, d := range scan.Detections {
			if !claimed[i] {
				open = append(open, newTrack(nextID, scan, d))
				nextID++
			}
		}
		p.setPercent((si + 1) * 100 / n)
	}
	for _, t := range open {
		p.closeTrack(t)
	}
}

// claim assigns detections of one scan to open tracks and returns, per
// track, the index of its detection or -1. In each round every unassigned
// track proposes its best unclaimed candidate. A candidate proposed by more
// than one track goes to the track with the smallest mass difference, the
// oldest track on equal difference. Losing tracks try again with the
// detections that are left.
func (p *Processor) claim(open []*track, dets []Detection, claimed []bool) []int {
	matched := make([]int, len(open))
	done := make([]bool, len(open))
	for k := range matched {
		matched[k] = -1
	}
	for {
		winner := make(map[int]int) // detection index -> track index
		for k, t := range open {
			if done[k] {
				continue
			}
			i, ok := bestMatch(dets, t.lastMass, t.charge, p.par.PPMTol, claimed)
			if !ok {
				done[k] = true
				continue
			}
			w, seen := winner[i]
			if !seen || closerTrack(t, open[w], dets[i].MonoMass) {
				winner[i] = k
			}
		}
		if len(winner) == 0 {
			return matched
		}
		for i, k := range winner {
			matched[k] = i
			claimed[i] = true
			done[k] = true
		}
	}
}

// closerTrack reports whether track a should get a detection of mass m
// rather than track b
func closerTrack(a, b *track, m float64) bool {
	da, db := ppmDiff(m, a.lastMass), ppmDiff(m, b.lastMass)
	if da != db {
		return da < db
	}
	return a.id < b.id
}

// linkSeedMax links detections by repeatedly taking the most intense
// unclaimed detection of the run and extending it backward and forward
func (p *Processor) linkSeedMax() {
	scans := p.run.Scans
	claimed := make([][]bool, len(scans))
	for si := range scans {
		scans[si].SortMonoMass()
		claimed[si] = make([]bool, len(scans[si].Detections))
	}
	order := seedOrder(scans)
	if len(order) == 0 {
		return
	}
	used := 0
	for _, s := range order {
		if claimed[s.scan][s.det] {
			continue
		}
		claimed[s.scan][s.det] = true
		seed := scans[s.scan].Detections[s.det]
		t := newTrack(0, &scans[s.scan], seed)
		used++
		used += p.extendSeed(t, scans, claimed, s.scan, -1, seed.MonoMass)
		used += p.extendSeed(t, scans, claimed, s.scan, 1, seed.MonoMass)
		p.closeTrack(t)
		p.setPercent(used * 100 / len(order))
	}
}

// extendSeed grows t from scan index start in direction dir (+1 or -1)
// and returns the number of detections it claimed
func (p *Processor) extendSeed(t *track, scans []Scan, claimed [][]bool, start, dir int, mass float64) int {
	n := 0
	miss := 0
	for si := start + dir; si >= 0 && si < len(scans) && miss <= p.par.GapTol; si += dir {
		i, ok := bestMatch(scans[si].Detections, mass, t.charge, p.par.PPMTol, claimed[si])
		if !ok {
			miss++
			continue
		}
		d := scans[si].Detections[i]
		claimed[si][i] = true
		t.add(&scans[si], d)
		mass = d.MonoMass
		miss = 0
		n++
	}
	return n
}

type seedRef struct {
	scan, det int
}

// seedOrder lists all detections of the run by descending intensity. On
// equal intensity the earliest scan comes first, then the lowest mass.
func seedOrder(scans []Scan) []seedRef {
	var order []seedRef
	for si := range scans {
		for di := range scans[si].Detections {
			order = append(order, seedRef{si, di})
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scans[order[i].scan].Detections[order[i].det].Intensity >
			scans[order[j].scan].Detections[order[j].det].Intensity
	})
	return order
}
