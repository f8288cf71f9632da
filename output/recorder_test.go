package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topoform/lsto/opt"
)

type stubSource struct {
	phi      []float64
	areas    []float64
	segments [][4]float64
}

func (s *stubSource) LevelSetField() []float64     { return s.phi }
func (s *stubSource) AreaFractionField() []float64 { return s.areas }
func (s *stubSource) BoundarySegments() [][4]float64 {
	return s.segments
}

func TestNewRecorder_WritesHistoryHeader(t *testing.T) {
	root := t.TempDir()
	_, err := NewRecorder(root, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "history", "history.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Iteration\tStress\tTvm_max\tArea\tChange\n", string(data))
}

func TestNewRecorder_ClearsPriorArtifacts(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "level_set", "level_set_7.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	keep := filepath.Join(root, "level_set", "notes.md")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	_, err := NewRecorder(root, nil)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale snapshot should be removed")
	_, err = os.Stat(keep)
	assert.NoError(t, err, "non-artifact files are left alone")
}

func TestRecord_AppendsIterationLines(t *testing.T) {
	root := t.TempDir()
	r, err := NewRecorder(root, nil)
	require.NoError(t, err)

	require.NoError(t, r.Record(opt.IterationRecord{
		Iteration: 1, Objective: 12.5, MaxStress: 3.25,
		AreaFraction: 0.75, RelativeDifference: 1,
	}))
	require.NoError(t, r.Record(opt.IterationRecord{
		Iteration: 2, Objective: 11, MaxStress: 3,
		AreaFraction: 0.7, RelativeDifference: 0.12,
	}))

	data, err := os.ReadFile(filepath.Join(root, "history", "history.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1\t12.5\t3.25\t0.75\t1", lines[1])
	assert.Equal(t, "2\t11\t3\t0.7\t0.12", lines[2])
}

func TestSnapshot_WritesIndexedFieldFiles(t *testing.T) {
	root := t.TempDir()
	src := &stubSource{
		phi:      []float64{-1, 0.5, 2},
		areas:    []float64{1, 0.25},
		segments: [][4]float64{{0, 0, 1, 0.5}},
	}
	r, err := NewRecorder(root, src)
	require.NoError(t, err)

	require.NoError(t, r.Snapshot(4))

	phi, err := os.ReadFile(filepath.Join(root, "level_set", "level_set_4.txt"))
	require.NoError(t, err)
	assert.Equal(t, "-1\n0.5\n2\n", string(phi))

	areas, err := os.ReadFile(filepath.Join(root, "area_fractions", "area_fractions_4.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n0.25\n", string(areas))

	segs, err := os.ReadFile(filepath.Join(root, "boundary_segments", "boundary_segments_4.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0\t0\t1\t0.5\n", string(segs))
}

func TestSnapshot_NilSourceIsNoop(t *testing.T) {
	root := t.TempDir()
	r, err := NewRecorder(root, nil)
	require.NoError(t, err)

	require.NoError(t, r.Snapshot(1))
	_, err = os.Stat(filepath.Join(root, "level_set", "level_set_1.txt"))
	assert.True(t, os.IsNotExist(err))
}
