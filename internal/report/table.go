// Package report writes linked features as tab-delimited text, JSON or
// an SQLite database
package report

import (
	"github.com/524D/kronik/internal/kronik"
)

// FormatVersion is the version of the JSON and SQLite layouts. If it ever
// changes we should still be able to read output from old versions.
const FormatVersion = "1.0"

// Table is the set of features written by the exporters
type Table struct {
	Source   string // name of the peak list the features come from
	Params   kronik.Params
	Mods     []string // modification strings, indexed by Feature.Mods
	Features []kronik.Feature
}

// NewTable collects the features and parameters of a processor. Mods are
// taken from the loaded run, so call it before ClearRun.
func NewTable(source string, p *kronik.Processor) *Table {
	t := &Table{
		Source:   source,
		Params:   p.Params(),
		Features: p.Features().All(),
	}
	if run := p.Run(); run != nil {
		t.Mods = run.Mods
	}
	return t
}

func (t *Table) mod(i int) string {
	if i <= 0 || i >= len(t.Mods) {
		return ``
	}
	return t.Mods[i]
}
