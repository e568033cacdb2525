package kronik

import (
	"fmt"
	"strings"
)

// LinkMode selects the algorithm that links detections into features
type LinkMode int

const (
	// LinkSweep walks the scans once, extending all open features per scan
	LinkSweep LinkMode = iota
	// LinkSeedMax repeatedly seeds a feature at the most intense unclaimed
	// detection and grows it in both directions
	LinkSeedMax
)

// Default parameter values
const (
	DefaultPPMTol   = 10.0
	DefaultGapTol   = 1
	DefaultMatchTol = 3
)

// Params holds the parameters of a linking run
type Params struct {
	PPMTol   float64  // mass tolerance for extending a feature (ppm)
	GapTol   int      // consecutive scans a feature may miss before it is closed
	MatchTol int      // minimum observed points for a feature to be kept
	GaussFit bool     // fit a Gaussian to every feature
	LinkMode LinkMode // linking algorithm
}

// DefaultParams returns the parameters used when nothing else is specified
func DefaultParams() Params {
	return Params{
		PPMTol:   DefaultPPMTol,
		GapTol:   DefaultGapTol,
		MatchTol: DefaultMatchTol,
		GaussFit: false,
		LinkMode: LinkSweep,
	}
}

// Validate checks that all parameters are usable
func (p Params) Validate() error {
	if !(p.PPMTol > 0) {
		return fmt.Errorf("%w: ppm tolerance must be positive, got %g", ErrInvalidConfig, p.PPMTol)
	}
	if p.GapTol < 0 {
		return fmt.Errorf("%w: gap tolerance must not be negative, got %d", ErrInvalidConfig, p.GapTol)
	}
	if p.MatchTol < 1 {
		return fmt.Errorf("%w: match tolerance must be at least 1, got %d", ErrInvalidConfig, p.MatchTol)
	}
	if p.LinkMode != LinkSweep && p.LinkMode != LinkSeedMax {
		return fmt.Errorf("%w: unknown link mode %d", ErrInvalidConfig, p.LinkMode)
	}
	return nil
}

// ParseLinkMode converts the name of a link mode into a LinkMode
func ParseLinkMode(s string) (LinkMode, error) {
	switch strings.ToLower(s) {
	case `sweep`, ``:
		return LinkSweep, nil
	case `max`:
		return LinkSeedMax, nil
	}
	return 0, fmt.Errorf("%w: unknown link mode %q", ErrInvalidConfig, s)
}

func (m LinkMode) String() string {
	switch m {
	case LinkSweep:
		return `sweep`
	case LinkSeedMax:
		return `max`
	}
	return fmt.Sprintf("LinkMode(%d)", int(m))
}

// MarshalText encodes the mode by name
func (m LinkMode) MarshalText() ([]byte, error) {
	if m != LinkSweep && m != LinkSeedMax {
		return nil, fmt.Errorf("%w: unknown link mode %d", ErrInvalidConfig, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name, see ParseLinkMode
func (m *LinkMode) UnmarshalText(b []byte) error {
	lm, err := ParseLinkMode(string(b))
	if err != nil {
		return err
	}
	*m = lm
	return nil
}
