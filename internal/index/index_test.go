package index

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/notemcp/internal/errors"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

func docsIndex(t *testing.T) (*Index, string) {
	t.Helper()
	root := writeTree(t, map[string]string{
		"a.md":  "line1\nhello world\nline3\n",
		"b.txt": "nothing here",
	})
	ix := New()
	_, err := ix.RegisterSource(root, "docs")
	require.NoError(t, err)
	require.NoError(t, ix.Scan(context.Background(), []string{"md", "txt"}))
	return ix, root
}

// =============================================================================
// RegisterSource
// =============================================================================

func TestRegisterSource_DefaultsNameToBaseName(t *testing.T) {
	root := writeTree(t, nil)
	ix := New()

	src, err := ix.RegisterSource(root, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), src.Name)
	assert.Equal(t, root, src.Root)
}

func TestRegisterSource_ResolvesRelativeAndSymlinkedPaths(t *testing.T) {
	// Given: a symlink to a real directory
	target := writeTree(t, nil)
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	// When: registering the link
	src, err := New().RegisterSource(link, "notes")

	// Then: the stored root is the resolved target
	require.NoError(t, err)
	assert.Equal(t, target, src.Root)
}

func TestRegisterSource_InvalidPaths(t *testing.T) {
	root := writeTree(t, map[string]string{"file.md": "x"})

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(root, "nope")},
		{"regular file", filepath.Join(root, "file.md")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := New()
			_, err := ix.RegisterSource(tt.path, "x")

			require.Error(t, err)
			assert.True(t, errors.IsInvalidSource(err))
			assert.Empty(t, ix.Sources())
		})
	}
}

func TestRegisterSource_RejectsColonInName(t *testing.T) {
	root := writeTree(t, nil)

	_, err := New().RegisterSource(root, "bad:name")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRegisterSource_Collision(t *testing.T) {
	// Given: an index with two sources and a captured logger
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	first := writeTree(t, nil)
	second := writeTree(t, nil)
	other := writeTree(t, nil)

	ix := New(WithLogger(logger))
	_, err := ix.RegisterSource(first, "notes")
	require.NoError(t, err)
	_, err = ix.RegisterSource(other, "other")
	require.NoError(t, err)

	// When: re-registering the same root
	_, err = ix.RegisterSource(first, "notes")
	require.NoError(t, err)

	// Then: nothing changes and nothing is logged
	assert.NotContains(t, logs.String(), "re-registered")

	// When: re-registering with a different root
	_, err = ix.RegisterSource(second, "notes")
	require.NoError(t, err)

	// Then: last write wins, position is kept, a warning is logged
	assert.Equal(t, []Source{{Name: "notes", Root: second}, {Name: "other", Root: other}}, ix.Sources())
	assert.Contains(t, logs.String(), "re-registered")
	src, ok := ix.Source("notes")
	assert.True(t, ok)
	assert.Equal(t, second, src.Root)
}

// =============================================================================
// Scan, Lookup, List
// =============================================================================

func TestIndex_EndToEnd(t *testing.T) {
	ix, root := docsIndex(t)

	assert.Equal(t, []string{"docs:a.md", "docs:b.txt"}, ix.List(""))

	path, err := ix.Lookup("docs:a.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.md"), path)
}

func TestIndex_IdentifierRoundTrip(t *testing.T) {
	// Given: nested files
	root := writeTree(t, map[string]string{
		"x/y/z.md":   "1",
		"x/w.org":    "2",
		"top.txt":    "3",
		"skip/me.go": "4",
	})
	ix := New()
	_, err := ix.RegisterSource(root, "s")
	require.NoError(t, err)
	require.NoError(t, ix.Scan(context.Background(), []string{"md", "org", "txt"}))

	// Then: every s:<rel> resolves to root/<rel>
	for _, rel := range []string{"x/y/z.md", "x/w.org", "top.txt"} {
		p := filepath.FromSlash(rel)
		got, err := ix.Lookup("s:" + p)
		require.NoError(t, err, rel)
		assert.Equal(t, filepath.Join(root, p), got)
	}
}

func TestScan_IsIdempotent(t *testing.T) {
	ix, _ := docsIndex(t)
	before := ix.Notes()

	require.NoError(t, ix.Scan(context.Background(), []string{"txt", "md"}))

	assert.Equal(t, before, ix.Notes())
}

func TestScan_ExtensionFiltering(t *testing.T) {
	ix, _ := docsIndex(t)

	require.NoError(t, ix.Scan(context.Background(), []string{".MD"}))

	assert.Equal(t, []string{"docs:a.md"}, ix.List(""))
	assert.Empty(t, ix.List("b.txt"))
	_, err := ix.Lookup("docs:b.txt")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, []string{"md"}, ix.Extensions())
}

func TestScan_RecordsExtensionsEvenWithNoMatches(t *testing.T) {
	ix := New()

	require.NoError(t, ix.Scan(context.Background(), []string{"RST", ".adoc", "rst", ""}))

	assert.Equal(t, []string{"adoc", "rst"}, ix.Extensions())
	assert.Equal(t, 0, ix.Len())
}

func TestScan_PrunesDeletedFiles(t *testing.T) {
	ix, root := docsIndex(t)
	require.NoError(t, os.Remove(filepath.Join(root, "b.txt")))

	require.NoError(t, ix.Scan(context.Background(), []string{"md", "txt"}))

	assert.Equal(t, []string{"docs:a.md"}, ix.List(""))
}

func TestScan_SourceOrderThenFileOrder(t *testing.T) {
	zroot := writeTree(t, map[string]string{"b.md": "", "a.md": ""})
	aroot := writeTree(t, map[string]string{"c.md": ""})
	ix := New()
	_, err := ix.RegisterSource(zroot, "zeta")
	require.NoError(t, err)
	_, err = ix.RegisterSource(aroot, "alpha")
	require.NoError(t, err)

	require.NoError(t, ix.Scan(context.Background(), []string{"md"}))

	assert.Equal(t, []string{"zeta:a.md", "zeta:b.md", "alpha:c.md"}, ix.List(""))
}

func TestScan_ExcludesAndDepth(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":           "",
		"archive/old.md": "",
		"x/y/deep.md":    "",
	})
	ix := New(WithExcludePatterns([]string{"archive/**"}), WithMaxDepth(2))
	_, err := ix.RegisterSource(root, "n")
	require.NoError(t, err)

	require.NoError(t, ix.Scan(context.Background(), []string{"md"}))

	assert.Equal(t, []string{"n:a.md"}, ix.List(""))
}

func TestScan_SkipsVanishedSource(t *testing.T) {
	gone := writeTree(t, map[string]string{"a.md": ""})
	kept := writeTree(t, map[string]string{"b.md": ""})
	ix := New()
	_, err := ix.RegisterSource(gone, "gone")
	require.NoError(t, err)
	_, err = ix.RegisterSource(kept, "kept")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(gone))

	require.NoError(t, ix.Scan(context.Background(), []string{"md"}))

	assert.Equal(t, []string{"kept:b.md"}, ix.List(""))
}

func TestScan_CancelledKeepsPreviousNotes(t *testing.T) {
	ix, _ := docsIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ix.Scan(ctx, []string{"md", "txt"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, ix.Len())
}

func TestScan_ReportsProgress(t *testing.T) {
	// Given: a source with three matching files
	root := writeTree(t, map[string]string{"a.md": "", "b.md": "", "c/d.md": "", "e.txt": ""})
	ix := New()
	_, err := ix.RegisterSource(root, "p")
	require.NoError(t, err)

	// When: scanning with a progress callback
	var seen []Progress
	require.NoError(t, ix.Scan(context.Background(), []string{"md"}, WithProgress(func(p Progress) {
		seen = append(seen, p)
	})))

	// Then: one call per file, total known up front
	require.Len(t, seen, 3)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Indexed)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, "p", p.Source)
	}
	assert.Equal(t, "p:a.md", seen[0].NoteID)
	assert.Equal(t, ix.List(""), []string{seen[0].NoteID, seen[1].NoteID, seen[2].NoteID})
}

func TestList_FilterIsCaseInsensitive(t *testing.T) {
	root := writeTree(t, map[string]string{"Meeting-Notes.md": "", "todo.md": ""})
	ix := New()
	_, err := ix.RegisterSource(root, "Work")
	require.NoError(t, err)
	require.NoError(t, ix.Scan(context.Background(), []string{"md"}))

	assert.Equal(t, []string{"Work:Meeting-Notes.md"}, ix.List("meeting"))
	assert.Equal(t, []string{"Work:Meeting-Notes.md", "Work:todo.md"}, ix.List("WORK:"))
	assert.Empty(t, ix.List("absent"))
}

func TestLookup_MissingIsNotFound(t *testing.T) {
	ix, _ := docsIndex(t)

	path, err := ix.Lookup("docs:nope.md")

	assert.Empty(t, path)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInfo_Summarizes(t *testing.T) {
	ix, root := docsIndex(t)
	empty := writeTree(t, nil)
	_, err := ix.RegisterSource(empty, "empty")
	require.NoError(t, err)

	info := ix.Info()

	assert.Equal(t, 2, info.TotalNotes)
	assert.Equal(t, []string{"md", "txt"}, info.Extensions)
	assert.Equal(t, []SourceInfo{
		{Name: "docs", Root: root, NoteCount: 2},
		{Name: "empty", Root: empty, NoteCount: 0},
	}, info.Sources)
}
