// Package tidy integrates with the clang-tidy binary: it builds the
// line filter, invokes the tool, and loads the exported-fixes file
// into canonical diagnostics.
package tidy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bkyoung/tidy-review/internal/domain"
)

// FixesFile is the default name clang-tidy fixes are exported to.
const FixesFile = "clang_tidy_review.yaml"

// rawReplacement mirrors one entry of a Replacements list in the
// exported-fixes YAML.
type rawReplacement struct {
	FilePath        string `yaml:"FilePath"`
	Offset          int    `yaml:"Offset"`
	Length          int    `yaml:"Length"`
	ReplacementText string `yaml:"ReplacementText"`
}

// rawNote mirrors one entry of a diagnostic's Notes list.
type rawNote struct {
	Message    string `yaml:"Message"`
	FilePath   string `yaml:"FilePath"`
	FileOffset int    `yaml:"FileOffset"`
}

// rawMessage is the nested message object of the modern export shape.
type rawMessage struct {
	Message      string           `yaml:"Message"`
	FilePath     string           `yaml:"FilePath"`
	FileOffset   int              `yaml:"FileOffset"`
	Replacements []rawReplacement `yaml:"Replacements"`
}

// rawDiagnostic accepts both historical export shapes: the modern one
// nests location and replacements under DiagnosticMessage, the
// pre-clang-tidy-9 one carries them as flat fields.
type rawDiagnostic struct {
	DiagnosticName    string      `yaml:"DiagnosticName"`
	DiagnosticMessage *rawMessage `yaml:"DiagnosticMessage"`
	BuildDirectory    string      `yaml:"BuildDirectory"`
	Notes             []rawNote   `yaml:"Notes"`

	// Flat (pre-clang-tidy-9) fields
	Message      string           `yaml:"Message"`
	FilePath     string           `yaml:"FilePath"`
	FileOffset   int              `yaml:"FileOffset"`
	Replacements []rawReplacement `yaml:"Replacements"`
}

type rawFixes struct {
	MainSourceFile string          `yaml:"MainSourceFile"`
	Diagnostics    []rawDiagnostic `yaml:"Diagnostics"`
}

// Fixes is the parsed content of an exported-fixes file.
type Fixes struct {
	MainSourceFile string
	Diagnostics    []domain.Diagnostic
}

// LoadFixes reads an exported-fixes YAML file and normalizes every
// diagnostic into the canonical shape. Relative diagnostic paths are
// resolved against the diagnostic's own BuildDirectory when present,
// falling back to buildDir. A missing fixes file means clang-tidy had
// nothing to report and yields empty Fixes.
func LoadFixes(path, buildDir string) (Fixes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Fixes{}, nil
		}
		return Fixes{}, fmt.Errorf("read fixes file: %w", err)
	}

	var raw rawFixes
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Fixes{}, fmt.Errorf("parse fixes file %s: %w", path, err)
	}

	fixes := Fixes{MainSourceFile: raw.MainSourceFile}
	for _, rd := range raw.Diagnostics {
		fixes.Diagnostics = append(fixes.Diagnostics, normalize(rd, buildDir))
	}
	return fixes, nil
}

// normalize resolves one raw diagnostic, whichever shape it uses, into
// a canonical domain.Diagnostic so nothing downstream branches on the
// export format again.
func normalize(rd rawDiagnostic, buildDir string) domain.Diagnostic {
	diag := domain.Diagnostic{Name: rd.DiagnosticName}

	if rd.DiagnosticMessage != nil {
		diag.Message = rd.DiagnosticMessage.Message
		diag.FileOffset = rd.DiagnosticMessage.FileOffset
		diag.FilePath = resolvePath(rd.DiagnosticMessage.FilePath, firstNonEmpty(rd.BuildDirectory, buildDir))
		diag.Replacements = normalizeReplacements(rd.DiagnosticMessage.Replacements, firstNonEmpty(rd.BuildDirectory, buildDir))
	} else {
		diag.Message = rd.Message
		diag.FileOffset = rd.FileOffset
		diag.FilePath = resolvePath(rd.FilePath, buildDir)
		diag.Replacements = normalizeReplacements(rd.Replacements, buildDir)
	}

	for _, note := range rd.Notes {
		diag.Notes = append(diag.Notes, domain.Note{
			Message:    note.Message,
			FilePath:   resolvePath(note.FilePath, buildDir),
			FileOffset: note.FileOffset,
		})
	}

	return diag
}

func normalizeReplacements(raws []rawReplacement, buildDir string) []domain.Replacement {
	var reps []domain.Replacement
	for _, rr := range raws {
		reps = append(reps, domain.Replacement{
			FilePath:        resolvePath(rr.FilePath, buildDir),
			Offset:          rr.Offset,
			Length:          rr.Length,
			ReplacementText: rr.ReplacementText,
		})
	}
	return reps
}

// resolvePath makes a diagnostic path absolute. clang-tidy sometimes
// reports absolute paths and sometimes paths relative to the build
// directory; an empty path stays empty so the assembler can discard
// the diagnostic.
func resolvePath(path, buildDir string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if buildDir != "" {
		path = filepath.Join(buildDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
