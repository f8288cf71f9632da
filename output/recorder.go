// Package output persists the optimization run: a tab-delimited iteration
// history plus per-iteration snapshots of the level set field, the element
// area fractions and the boundary segment geometry. All writes are best
// effort; the optimization loop logs and absorbs any failure here.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/topoform/lsto/opt"
)

// Fixed layout under the results root.
const (
	historyDir  = "history"
	levelSetDir = "level_set"
	areaDir     = "area_fractions"
	segmentsDir = "boundary_segments"

	historyFile   = "history.txt"
	historyHeader = "Iteration\tStress\tTvm_max\tArea\tChange\n"
)

// FieldSource exposes the field state the snapshots are taken from. The
// orchestrator only calls Snapshot after all mutation for the iteration is
// complete, so reads here never race with the loop.
type FieldSource interface {
	LevelSetField() []float64
	AreaFractionField() []float64
	BoundarySegments() [][4]float64
}

// Recorder writes run artifacts under a fixed directory layout. Creating a
// recorder clears any artifacts left over from a prior run.
type Recorder struct {
	root string
	src  FieldSource
}

// NewRecorder prepares the output directories under root, removes prior run
// artifacts and writes the history header.
func NewRecorder(root string, src FieldSource) (*Recorder, error) {
	for _, dir := range []string{historyDir, levelSetDir, areaDir, segmentsDir} {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", path, err)
		}
		if err := clearArtifacts(path); err != nil {
			return nil, fmt.Errorf("clearing prior artifacts in %s: %w", path, err)
		}
	}
	r := &Recorder{root: root, src: src}
	if err := os.WriteFile(r.historyPath(), []byte(historyHeader), 0o644); err != nil {
		return nil, fmt.Errorf("writing history header: %w", err)
	}
	return r, nil
}

func (r *Recorder) historyPath() string {
	return filepath.Join(r.root, historyDir, historyFile)
}

// clearArtifacts removes the text and VTK files of a previous run.
func clearArtifacts(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".txt", ".vtk":
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Record appends one iteration line to the history file. The file handle is
// scoped to the call so every exit path releases it.
func (r *Recorder) Record(rec opt.IterationRecord) error {
	f, err := os.OpenFile(r.historyPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%d\t%.16g\t%.16g\t%.16g\t%.16g\n",
		rec.Iteration, rec.Objective, rec.MaxStress, rec.AreaFraction, rec.RelativeDifference)
	if err != nil {
		return fmt.Errorf("appending history line: %w", err)
	}
	return nil
}

// Snapshot writes the level set field, area fraction field and boundary
// segments for one iteration, each into its own indexed file.
func (r *Recorder) Snapshot(iteration int) error {
	if r.src == nil {
		return nil
	}
	if err := r.writeScalars(levelSetDir, "level_set", iteration, r.src.LevelSetField()); err != nil {
		return err
	}
	if err := r.writeScalars(areaDir, "area_fractions", iteration, r.src.AreaFractionField()); err != nil {
		return err
	}
	return r.writeSegments(iteration)
}

func (r *Recorder) writeScalars(dir, prefix string, iteration int, values []float64) error {
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "%.16g\n", v)
	}
	path := filepath.Join(r.root, dir, fmt.Sprintf("%s_%d.txt", prefix, iteration))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s snapshot: %w", prefix, err)
	}
	return nil
}

func (r *Recorder) writeSegments(iteration int) error {
	var sb strings.Builder
	for _, s := range r.src.BoundarySegments() {
		fmt.Fprintf(&sb, "%.16g\t%.16g\t%.16g\t%.16g\n", s[0], s[1], s[2], s[3])
	}
	path := filepath.Join(r.root, segmentsDir, fmt.Sprintf("boundary_segments_%d.txt", iteration))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing boundary segments snapshot: %w", err)
	}
	return nil
}
