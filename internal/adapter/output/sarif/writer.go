// Package sarif exports diagnostics in SARIF 2.1.0 for upload to code
// scanning backends.
package sarif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Finding is one diagnostic with a resolved, 1-indexed location.
type Finding struct {
	RuleID    string
	Message   string
	File      string
	StartLine int
	EndLine   int
	Level     string
}

// Artifact describes one SARIF document to write.
type Artifact struct {
	OutputDir string
	Findings  []Finding
}

// Writer serializes findings to a SARIF file.
type Writer struct{}

// NewWriter creates a new SARIF writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists the findings to disk as clang-tidy-review.sarif.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(artifact.OutputDir, "clang-tidy-review.sarif")

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create sarif file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(convert(artifact.Findings)); err != nil {
		return "", fmt.Errorf("failed to encode sarif: %w", err)
	}

	return filePath, nil
}

func convert(findings []Finding) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(findings))

	for _, finding := range findings {
		// SARIF requires non-empty message text
		messageText := finding.Message
		if messageText == "" {
			messageText = "No description provided"
		}

		ruleID := finding.RuleID
		if ruleID == "" {
			ruleID = "clang-tidy"
		}

		level := finding.Level
		if level == "" {
			level = "warning"
		}

		result := map[string]interface{}{
			"ruleId": ruleID,
			"level":  level,
			"message": map[string]interface{}{
				"text": messageText,
			},
		}

		// Omit locations entirely for findings without file info
		if finding.File != "" {
			physicalLocation := map[string]interface{}{
				"artifactLocation": map[string]interface{}{
					"uri": finding.File,
				},
			}

			if finding.StartLine >= 1 {
				endLine := finding.EndLine
				if endLine < finding.StartLine {
					endLine = finding.StartLine
				}
				physicalLocation["region"] = map[string]interface{}{
					"startLine": finding.StartLine,
					"endLine":   endLine,
				}
			}

			result["locations"] = []map[string]interface{}{
				{"physicalLocation": physicalLocation},
			}
		}

		results = append(results, result)
	}

	return map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "clang-tidy",
						"informationUri": "https://clang.llvm.org/extra/clang-tidy/",
					},
				},
				"results": results,
			},
		},
	}
}
