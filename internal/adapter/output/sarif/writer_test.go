package sarif

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name string `json:"name"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID  string `json:"ruleId"`
			Level   string `json:"level"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region *struct {
						StartLine int `json:"startLine"`
						EndLine   int `json:"endLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

func writeSarif(t *testing.T, findings []Finding) sarifDoc {
	t.Helper()
	dir := t.TempDir()

	path, err := NewWriter().Write(context.Background(), Artifact{OutputDir: dir, Findings: findings})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clang-tidy-review.sarif"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestWriteDocumentShape(t *testing.T) {
	doc := writeSarif(t, []Finding{{
		RuleID:    "modernize-use-nullptr",
		Message:   "use nullptr",
		File:      "src/hello.cpp",
		StartLine: 3,
		EndLine:   4,
		Level:     "warning",
	}})

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	assert.Equal(t, "clang-tidy", doc.Runs[0].Tool.Driver.Name)

	require.Len(t, doc.Runs[0].Results, 1)
	result := doc.Runs[0].Results[0]
	assert.Equal(t, "modernize-use-nullptr", result.RuleID)
	assert.Equal(t, "warning", result.Level)
	assert.Equal(t, "use nullptr", result.Message.Text)

	require.Len(t, result.Locations, 1)
	loc := result.Locations[0].PhysicalLocation
	assert.Equal(t, "src/hello.cpp", loc.ArtifactLocation.URI)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 3, loc.Region.StartLine)
	assert.Equal(t, 4, loc.Region.EndLine)
}

func TestWriteFallbackValues(t *testing.T) {
	doc := writeSarif(t, []Finding{{File: "src/hello.cpp", StartLine: 5}})

	result := doc.Runs[0].Results[0]
	assert.Equal(t, "clang-tidy", result.RuleID)
	assert.Equal(t, "warning", result.Level)
	assert.Equal(t, "No description provided", result.Message.Text)
}

func TestWriteClampsEndLine(t *testing.T) {
	doc := writeSarif(t, []Finding{{File: "a.cpp", StartLine: 10, EndLine: 2}})

	region := doc.Runs[0].Results[0].Locations[0].PhysicalLocation.Region
	require.NotNil(t, region)
	assert.Equal(t, 10, region.StartLine)
	assert.Equal(t, 10, region.EndLine)
}

func TestWriteOmitsLocationWithoutFile(t *testing.T) {
	doc := writeSarif(t, []Finding{{RuleID: "misc-global", Message: "global warning"}})

	assert.Empty(t, doc.Runs[0].Results[0].Locations)
}

func TestWriteOmitsRegionWithoutStartLine(t *testing.T) {
	doc := writeSarif(t, []Finding{{File: "a.cpp"}})

	require.Len(t, doc.Runs[0].Results[0].Locations, 1)
	assert.Nil(t, doc.Runs[0].Results[0].Locations[0].PhysicalLocation.Region)
}

func TestWriteEmptyFindings(t *testing.T) {
	doc := writeSarif(t, nil)

	require.Len(t, doc.Runs, 1)
	assert.Empty(t, doc.Runs[0].Results)
}
