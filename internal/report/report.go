// Package report writes a machine readable YAML record of a run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"adbpull/internal/app"
	"adbpull/internal/domain"
)

type Document struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Serial      string    `yaml:"serial,omitempty"`
	Dest        string    `yaml:"dest"`
	Summary     Summary   `yaml:"summary"`
	Roots       []Root    `yaml:"roots"`
	Failures    []Failure `yaml:"failures,omitempty"`
}

type Summary struct {
	Copied          int    `yaml:"copied"`
	SkippedExisting int    `yaml:"skipped_existing"`
	SkippedExcluded int    `yaml:"skipped_excluded"`
	Failed          int    `yaml:"failed"`
	RootsFailed     int    `yaml:"roots_failed"`
	BytesCopied     uint64 `yaml:"bytes_copied"`
}

type Root struct {
	Path  string `yaml:"path"`
	Dest  string `yaml:"dest,omitempty"`
	Found int    `yaml:"found"`
	Copy  int    `yaml:"copy"`
	Error string `yaml:"error,omitempty"`
}

type Failure struct {
	Remote string `yaml:"remote"`
	Local  string `yaml:"local"`
	Reason string `yaml:"reason"`
}

func Build(r app.Report, serial, dest string, at time.Time) Document {
	doc := Document{
		GeneratedAt: at,
		Serial:      serial,
		Dest:        dest,
		Summary: Summary{
			Copied:          r.Summary.Copied,
			SkippedExisting: r.Summary.SkippedExisting,
			SkippedExcluded: r.Summary.SkippedExcluded,
			Failed:          r.Summary.Failed,
			RootsFailed:     r.Summary.RootsFailed,
			BytesCopied:     r.Summary.BytesCopied,
		},
	}
	for _, root := range r.Plan.Roots {
		doc.Roots = append(doc.Roots, Root{
			Path:  root.Root,
			Dest:  root.DestRoot,
			Found: root.Found,
			Copy:  len(root.ToCopy()),
		})
	}
	for _, f := range r.Plan.Failures {
		doc.Roots = append(doc.Roots, Root{Path: f.Root, Error: f.Err.Error()})
	}
	for _, res := range r.Results {
		if res.Status != domain.StatusFailed {
			continue
		}
		reason := ""
		if res.Reason != nil {
			reason = res.Reason.Error()
		}
		doc.Failures = append(doc.Failures, Failure{
			Remote: res.File.AbsolutePath,
			Local:  res.TargetPath,
			Reason: reason,
		})
	}
	return doc
}

// Write marshals doc to path through a temp file and rename, so readers never
// see a half written report.
func Write(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}
