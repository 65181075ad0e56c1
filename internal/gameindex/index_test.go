package gameindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestBuild_IndexesAllFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dialog.tlk":              "tlk",
		"Override/appearance.2da": "2da",
		"Modules/danm13.mod":      "mod",
	})

	idx, err := Build(root)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
}

func TestResolve_RelativePathBeforeName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Override/readme.txt": "override copy",
		"docs/readme.txt":     "docs copy",
	})

	idx, err := Build(root)
	require.NoError(t, err)

	// A relative-path target resolves exactly, not via the name map
	abs, rel, ok := idx.Resolve(`Override\readme.txt`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Override", "readme.txt"), abs)
	assert.Equal(t, "override/readme.txt", rel)
}

func TestResolve_BareNameFallback(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Override/appearance.2da": "2da",
	})

	idx, err := Build(root)
	require.NoError(t, err)

	abs, rel, ok := idx.Resolve("APPEARANCE.2DA")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Override", "appearance.2da"), abs)
	assert.Equal(t, "override/appearance.2da", rel)
}

func TestResolve_Missing(t *testing.T) {
	idx, err := Build(t.TempDir())
	require.NoError(t, err)

	_, _, ok := idx.Resolve("nothere.uti")
	assert.False(t, ok)
}

func TestResolve_NameCollisionKeepsStagingPathConsistent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/shared.2da": "first",
		"b/shared.2da": "second",
	})

	idx, err := Build(root)
	require.NoError(t, err)

	// Whichever copy won the name slot, the returned staging path must
	// point back at that same copy.
	abs, rel, ok := idx.Resolve("shared.2da")
	require.True(t, ok)
	viaRel, relAgain, ok := idx.Resolve(rel)
	require.True(t, ok)
	assert.Equal(t, abs, viaRel)
	assert.Equal(t, rel, relAgain)
}
