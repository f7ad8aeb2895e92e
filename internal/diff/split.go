package diff

import (
	"strings"

	"github.com/bkyoung/tidy-review/internal/domain"
)

// Split breaks a whole-changeset unified diff (as served by the
// hosting API) into per-file diffs. Each file keeps its own header
// lines so per-file diff positions count from the start of its block.
func Split(raw string) domain.Diff {
	var d domain.Diff

	blocks := splitBlocks(raw)
	for _, block := range blocks {
		path := targetPath(block)
		if path == "" {
			continue
		}
		d.Files = append(d.Files, domain.FileDiff{
			Path:   path,
			Status: fileStatus(block),
			Patch:  block,
		})
	}
	return d
}

// splitBlocks cuts the raw diff at every "diff --git" header. Diffs
// without the git preamble (plain unified format) are treated as one
// block per "--- " header instead.
func splitBlocks(raw string) []string {
	if raw == "" {
		return nil
	}

	marker := "diff --git "
	if !strings.Contains(raw, marker) {
		marker = "--- "
	}

	var blocks []string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, marker) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n")+"\n")
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		block := strings.Join(current, "\n")
		if !strings.HasSuffix(block, "\n") {
			block += "\n"
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// targetPath extracts the new-side path, preferring the "+++ b/..."
// header and falling back to the "diff --git" line for files the
// change deletes.
func targetPath(block string) string {
	var fallback string
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "+++ ") {
			path := strings.TrimPrefix(line, "+++ ")
			path = strings.TrimSuffix(path, "\t")
			if path != "/dev/null" {
				return strings.TrimPrefix(path, "b/")
			}
		}
		if fallback == "" && strings.HasPrefix(line, "diff --git ") {
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				fallback = strings.TrimPrefix(fields[3], "b/")
			}
		}
	}
	return fallback
}

func fileStatus(block string) string {
	switch {
	case strings.Contains(block, "\nnew file mode"):
		return domain.FileStatusAdded
	case strings.Contains(block, "\ndeleted file mode"):
		return domain.FileStatusDeleted
	default:
		return domain.FileStatusModified
	}
}
