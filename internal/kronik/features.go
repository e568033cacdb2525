package kronik

import (
	"fmt"
	"sort"
)

// Features is the ordered list of linked features of a run
type Features struct {
	list []Feature
}

// Len returns the number of features
func (fs *Features) Len() int {
	return len(fs.list)
}

// At returns the feature at index i
func (fs *Features) At(i int) (*Feature, error) {
	if i < 0 || i >= len(fs.list) {
		return nil, fmt.Errorf("%w: feature %d of %d", ErrIndexOutOfRange, i, len(fs.list))
	}
	return &fs.list[i], nil
}

// All returns the features as a slice. The slice is owned by fs and is
// invalidated by any call that adds, removes or sorts features.
func (fs *Features) All() []Feature {
	return fs.list
}

// Add appends a feature. Its scan range and summary statistics are
// recomputed from its points.
func (fs *Features) Add(f Feature) error {
	if len(f.Points) == 0 {
		return fmt.Errorf("%w: feature without points", ErrInvalidInput)
	}
	if f.Charge <= 0 {
		return fmt.Errorf("%w: feature charge %d", ErrInvalidInput, f.Charge)
	}
	f.Points = append([]ProfilePoint(nil), f.Points...)
	f.summarize()
	fs.list = append(fs.list, f)
	return nil
}

// Erase removes the feature at index i, keeping the order of the others
func (fs *Features) Erase(i int) error {
	if i < 0 || i >= len(fs.list) {
		return fmt.Errorf("%w: feature %d of %d", ErrIndexOutOfRange, i, len(fs.list))
	}
	fs.list = append(fs.list[:i], fs.list[i+1:]...)
	return nil
}

// Clear removes all features
func (fs *Features) Clear() {
	fs.list = nil
}

// keep removes all features for which ok returns false. The relative order
// of the remaining features is unchanged.
func (fs *Features) keep(ok func(f *Feature) bool) {
	k := 0 // Index of next feature that we want to keep
	for i := range fs.list {
		if ok(&fs.list[i]) {
			if k < i {
				fs.list[k] = fs.list[i]
			}
			k++
		}
	}
	// Release the points of dropped features
	for i := k; i < len(fs.list); i++ {
		fs.list[i] = Feature{}
	}
	fs.list = fs.list[:k]
}

// FilterRT keeps only features with a retention time within [rt1, rt2]
func (fs *Features) FilterRT(rt1, rt2 float64) {
	fs.keep(func(f *Feature) bool { return f.RTime >= rt1 && f.RTime <= rt2 })
}

// RemoveContaminants removes features that elute longer than rt
func (fs *Features) RemoveContaminants(rt float64) {
	fs.keep(func(f *Feature) bool { return f.LastRTime-f.FirstRTime <= rt })
}

// RemoveMass removes features with a mass within [m1, m2]
func (fs *Features) RemoveMass(m1, m2 float64) {
	fs.keep(func(f *Feature) bool { return f.MonoMass < m1 || f.MonoMass > m2 })
}

func (fs *Features) sortBy(less func(a, b *Feature) bool) {
	sort.SliceStable(fs.list, func(i, j int) bool { return less(&fs.list[i], &fs.list[j]) })
}

// SortBasePeak sorts by ascending base peak m/z
func (fs *Features) SortBasePeak() {
	fs.sortBy(func(a, b *Feature) bool { return a.BasePeak < b.BasePeak })
}

// SortBestScan sorts by ascending scan number of the most intense point
func (fs *Features) SortBestScan() {
	fs.sortBy(func(a, b *Feature) bool { return a.BestScan < b.BestScan })
}

// SortMonoMass sorts by ascending monoisotopic mass
func (fs *Features) SortMonoMass() {
	fs.sortBy(func(a, b *Feature) bool { return a.MonoMass < b.MonoMass })
}

// SortFirstRTime sorts by ascending retention time of the first point
func (fs *Features) SortFirstRTime() {
	fs.sortBy(func(a, b *Feature) bool { return a.FirstRTime < b.FirstRTime })
}

// SortIntensityRev sorts by descending apex intensity
func (fs *Features) SortIntensityRev() {
	fs.sortBy(func(a, b *Feature) bool { return a.Intensity > b.Intensity })
}

// SortRTime sorts by ascending intensity weighted retention time
func (fs *Features) SortRTime() {
	fs.sortBy(func(a, b *Feature) bool { return a.RTime < b.RTime })
}

// SortSumIntensityRev sorts by descending summed intensity
func (fs *Features) SortSumIntensityRev() {
	fs.sortBy(func(a, b *Feature) bool { return a.SumIntensity > b.SumIntensity })
}

// Sort sorts the features by the named key
func (fs *Features) Sort(key string) error {
	switch key {
	case `basepeak`:
		fs.SortBasePeak()
	case `bestscan`:
		fs.SortBestScan()
	case `mass`:
		fs.SortMonoMass()
	case `firstrt`:
		fs.SortFirstRTime()
	case `intensity`:
		fs.SortIntensityRev()
	case `rt`:
		fs.SortRTime()
	case `sumintensity`:
		fs.SortSumIntensityRev()
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidConfig, key)
	}
	return nil
}
