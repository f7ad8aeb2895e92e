// Package index maintains per-file byte-offset tables used to convert
// clang-tidy file offsets into line numbers.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Offsets is a lazily-built table of cumulative line-start offsets,
// keyed by absolute file path. Entry i is the byte offset at which
// line i begins (0-indexed); entry i+1 is the end of line i. Tables
// are built on first reference and cached for the run. Lookups for a
// file not yet indexed build its table on demand, so the map is
// guarded for callers that render diagnostics concurrently.
type Offsets struct {
	mu     sync.Mutex
	tables map[string][]int
}

// NewOffsets returns an empty offset index.
func NewOffsets() *Offsets {
	return &Offsets{tables: make(map[string][]int)}
}

// Build reads each of the given files and caches its offset table.
// A missing file is a fatal error: every downstream line number would
// be meaningless without its table.
func (o *Offsets) Build(paths ...string) error {
	for _, path := range paths {
		if _, err := o.Table(path); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the offset table for path, building it if needed.
func (o *Offsets) Table(path string) ([]int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if table, ok := o.tables[abs]; ok {
		return table, nil
	}

	table, err := buildTable(abs)
	if err != nil {
		return nil, err
	}
	o.tables[abs] = table
	return table, nil
}

// LineOf converts a byte offset in path to a 0-indexed line number.
// The line number is the index of the first table entry strictly
// greater than offset, minus one. Returns -1 when the offset is past
// the end of the file; callers must treat that as out of bounds.
func (o *Offsets) LineOf(path string, offset int) (int, error) {
	table, err := o.Table(path)
	if err != nil {
		return 0, err
	}
	for i, lineOffset := range table {
		if lineOffset > offset {
			return i - 1, nil
		}
	}
	return -1, nil
}

// LineStart returns the byte offset at which the given 0-indexed line
// begins.
func (o *Offsets) LineStart(path string, line int) (int, error) {
	table, err := o.Table(path)
	if err != nil {
		return 0, err
	}
	if line < 0 || line >= len(table) {
		return 0, fmt.Errorf("line %d out of range for %s", line, path)
	}
	return table[line], nil
}

// ReadLine reads the single source line beginning at lineOffset,
// without its trailing newline.
func ReadLine(path string, lineOffset int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(int64(lineOffset), 0); err != nil {
		return "", fmt.Errorf("seek %s: %w", path, err)
	}

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func buildTable(abs string) ([]int, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("build offset table: %w", err)
	}

	table := []int{0}
	for i, b := range data {
		if b == '\n' {
			table = append(table, i+1)
		}
	}
	// A final line without a newline still ends the table.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		table = append(table, len(data))
	}
	return table, nil
}
