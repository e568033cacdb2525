package plot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/524D/kronik/internal/kronik"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFeatures links two gaussian shaped species, the second one with
// a missing scan
func testFeatures(t *testing.T) *kronik.Processor {
	t.Helper()
	run := kronik.NewRun()
	for i := 1; i <= 15; i++ {
		h := 1e4 * math.Exp(-math.Pow(float64(i-8), 2)/8)
		s := kronik.Scan{ScanNum: i, RTime: float64(i) * 0.05}
		s.Detections = append(s.Detections, kronik.Detection{Charge: 2, MonoMass: 1500.75, Intensity: h})
		if i != 6 {
			s.Detections = append(s.Detections, kronik.Detection{Charge: 3, MonoMass: 2100.5, Intensity: h / 2})
		}
		require.NoError(t, run.AddScan(s))
	}
	par := kronik.DefaultParams()
	par.GaussFit = true
	p, err := kronik.NewProcessor(par)
	require.NoError(t, err)
	p.Load(run)
	require.NoError(t, p.Process())
	require.Equal(t, 2, p.Features().Len())
	return p
}

func TestProfiles(t *testing.T) {
	p := testFeatures(t)
	dir := filepath.Join(t.TempDir(), "plots")

	files, err := Profiles(dir, p.Features().All(), 1, p.RT)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "feature_001_1500.7500_z2.png"), files[0])

	files, err = Profiles(dir, p.Features().All(), 10, p.RT)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, file := range files {
		b, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), "%s is not a PNG file", file)
	}
}

func TestProfileBadPath(t *testing.T) {
	p := testFeatures(t)
	f, err := p.Features().At(0)
	require.NoError(t, err)
	err = Profile(f, p.RT, filepath.Join(t.TempDir(), "missing", "x.png"))
	assert.Error(t, err)
}
