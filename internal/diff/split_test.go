package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tidy-review/internal/domain"
)

const multiFileDiff = `diff --git a/src/a.cpp b/src/a.cpp
index 1234567..89abcde 100644
--- a/src/a.cpp
+++ b/src/a.cpp
@@ -1,2 +1,2 @@
-int a = 1;
+int a = 2;
 int b;
diff --git a/src/b.hpp b/src/b.hpp
new file mode 100644
index 0000000..1111111
--- /dev/null
+++ b/src/b.hpp
@@ -0,0 +1,2 @@
+#pragma once
+int c;
diff --git a/src/gone.cpp b/src/gone.cpp
deleted file mode 100644
index 2222222..0000000
--- a/src/gone.cpp
+++ /dev/null
@@ -1,1 +0,0 @@
-int dead;
`

func TestSplitPerFile(t *testing.T) {
	d := Split(multiFileDiff)
	require.Len(t, d.Files, 3)

	assert.Equal(t, "src/a.cpp", d.Files[0].Path)
	assert.Equal(t, "src/b.hpp", d.Files[1].Path)
	assert.Equal(t, "src/gone.cpp", d.Files[2].Path)
}

func TestSplitStatuses(t *testing.T) {
	d := Split(multiFileDiff)
	require.Len(t, d.Files, 3)

	assert.Equal(t, domain.FileStatusModified, d.Files[0].Status)
	assert.Equal(t, domain.FileStatusAdded, d.Files[1].Status)
	assert.Equal(t, domain.FileStatusDeleted, d.Files[2].Status)
}

func TestSplitKeepsPerFileHeaders(t *testing.T) {
	d := Split(multiFileDiff)
	require.Len(t, d.Files, 3)

	// Each block must start with its own headers so diff positions
	// count from the block start.
	for _, f := range d.Files {
		assert.True(t, strings.HasPrefix(f.Patch, "diff --git "), "file %s", f.Path)
		assert.Contains(t, f.Patch, "@@")
	}
}

func TestSplitBlocksParse(t *testing.T) {
	d := Split(multiFileDiff)
	require.Len(t, d.Files, 3)

	parsed, err := Parse(d.Files[1].Patch)
	require.NoError(t, err)
	require.Len(t, parsed.Hunks, 1)
	assert.Equal(t, 1, parsed.Hunks[0].NewStart)
	assert.Len(t, parsed.Hunks[0].Lines, 2)
}

func TestSplitPlainUnifiedDiff(t *testing.T) {
	raw := `--- a/one.c
+++ b/one.c
@@ -1 +1 @@
-x
+y
--- a/two.c
+++ b/two.c
@@ -5 +5 @@
-p
+q
`
	d := Split(raw)
	require.Len(t, d.Files, 2)
	assert.Equal(t, "one.c", d.Files[0].Path)
	assert.Equal(t, "two.c", d.Files[1].Path)
	assert.Equal(t, domain.FileStatusModified, d.Files[0].Status)
}

func TestSplitEmptyInput(t *testing.T) {
	d := Split("")
	assert.Empty(t, d.Files)
}
