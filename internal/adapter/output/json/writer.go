// Package json persists review payloads as workflow artifacts, so a
// separate workflow run with write permissions can post them.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bkyoung/tidy-review/internal/domain"
)

const (
	// ReviewFile is the artifact holding the assembled review payload.
	ReviewFile = "clang-tidy-review-output.json"

	// MetadataFile is the artifact holding the pull request context.
	MetadataFile = "clang-tidy-review-metadata.json"
)

// Writer persists reviews and metadata to an artifact directory.
type Writer struct{}

// NewWriter creates a new JSON artifact writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteReview persists a review payload to disk.
func (w *Writer) WriteReview(ctx context.Context, outputDir string, review domain.Review) (string, error) {
	return writeFile(outputDir, ReviewFile, review)
}

// WriteMetadata persists the pull request context to disk.
func (w *Writer) WriteMetadata(ctx context.Context, outputDir string, metadata domain.Metadata) (string, error) {
	return writeFile(outputDir, MetadataFile, metadata)
}

func writeFile(outputDir, name string, payload interface{}) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(outputDir, name)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}

	return filePath, nil
}

// LoadReview reads a previously written review payload. A missing file
// returns an empty review: the review step may legitimately produce no
// output when nothing was in the diff.
func LoadReview(dir string) (domain.Review, error) {
	var review domain.Review
	ok, err := loadFile(filepath.Join(dir, ReviewFile), &review)
	if err != nil {
		return domain.Review{}, err
	}
	if !ok {
		return domain.Review{Event: domain.EventComment}, nil
	}
	return review, nil
}

// LoadMetadata reads a previously written metadata artifact.
func LoadMetadata(dir string) (domain.Metadata, error) {
	var metadata domain.Metadata
	ok, err := loadFile(filepath.Join(dir, MetadataFile), &metadata)
	if err != nil {
		return domain.Metadata{}, err
	}
	if !ok {
		return domain.Metadata{}, fmt.Errorf("metadata artifact not found in %s", dir)
	}
	return metadata, nil
}

func loadFile(path string, out interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}
