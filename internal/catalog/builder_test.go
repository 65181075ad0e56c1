package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tslpm/internal/domain"
	"tslpm/internal/loadorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMod lays out a mod directory with the given files below its
// patch-data folder (relative paths, forward slashes).
func writeMod(t *testing.T, root, name, patchDataDir string, files map[string]string) {
	t.Helper()
	base := filepath.Join(root, name, patchDataDir)
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.MkdirAll(base, 0755))
}

const basicConfig = `
[Settings]
WindowCaption=Basic Mod
[InstallList]
File0=thing.uti
`

func TestBuilder_FallbackDescriptor(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Basic", "tslpatchdata", map[string]string{
		"changes.ini": basicConfig,
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)

	d := descriptors[0]
	assert.Equal(t, "Basic", d.ModName)
	assert.Equal(t, domain.DefaultPatchName, d.PatchName)
	assert.Equal(t, "Basic Mod", d.Description)
	assert.Equal(t, "changes.ini", d.ConfigRelPath)
	assert.True(t, d.Files.Has("thing.uti"))
	assert.False(t, d.Enabled)
}

func TestBuilder_PatchDataFolderCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Shouty", "TSLPatchData", map[string]string{
		"Changes.INI": basicConfig,
	})
	writeMod(t, root, "Alt", "PatchData", map[string]string{
		"changes.ini": basicConfig,
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, descriptors, 2)
}

func TestBuilder_SkipsModsWithoutPatchData(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "NotAPatchMod", "textures"), 0755))
	writeMod(t, root, "Real", "tslpatchdata", map[string]string{
		"changes.ini": basicConfig,
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "Real", descriptors[0].ModName)
}

func TestBuilder_SkipsModWithoutConfig(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Empty", "tslpatchdata", map[string]string{
		"info.rtf": "{\\rtf1}",
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestBuilder_NamespacedPatches(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Multi", "tslpatchdata", map[string]string{
		"namespaces.ini": `
[Namespaces]
Namespace0=std
Namespace1=alt
[std]
Name=Standard
IniName=changes.ini
[alt]
Name=Alternate
IniName=alt.ini
DataPath=tslpatchdata\alt
`,
		"changes.ini":  basicConfig,
		"alt/alt.ini":  "[InstallList]\nFile0=alt.uti\n",
		"alt/info.rtf": "{\\rtf1}",
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 2)

	assert.Equal(t, "Standard", descriptors[0].PatchName)
	assert.Equal(t, "changes.ini", descriptors[0].ConfigRelPath)
	assert.Equal(t, "Alternate", descriptors[1].PatchName)
	assert.Equal(t, "alt/alt.ini", descriptors[1].ConfigRelPath)
	assert.True(t, descriptors[1].Files.Has("alt.uti"))
}

func TestBuilder_NamespaceDescriptionWins(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Described", "tslpatchdata", map[string]string{
		"namespaces.ini": `
[Namespaces]
Namespace0=std
[std]
Name=Standard
Description=From the namespace index
IniName=changes.ini
`,
		"changes.ini": basicConfig,
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "From the namespace index", descriptors[0].Description)
}

func TestBuilder_MissingDeclaredConfigFallsBack(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Sloppy", "tslpatchdata", map[string]string{
		"namespaces.ini": `
[Namespaces]
Namespace0=std
[std]
IniName=missing.ini
`,
		"changes.ini": basicConfig,
	})

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), nil, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "changes.ini", descriptors[0].ConfigRelPath)
}

func TestBuilder_PriorityOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		writeMod(t, root, name, "tslpatchdata", map[string]string{
			"changes.ini": basicConfig,
		})
	}

	// Beta is top of the modlist, so highest priority; Gamma is unranked
	order, err := loadorder.Parse(strings.NewReader("+Beta\n+Alpha\n"))
	require.NoError(t, err)

	b := NewBuilder(root, filepath.Join(t.TempDir(), "patches.csv"), order, nil)
	descriptors, err := b.Build()
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	assert.Equal(t, "Beta", descriptors[0].ModName)
	assert.Equal(t, "Alpha", descriptors[1].ModName)
	assert.Equal(t, "Gamma", descriptors[2].ModName)
}

func TestBuilder_RebuildPreservesEnabled(t *testing.T) {
	root := t.TempDir()
	writeMod(t, root, "Keep", "tslpatchdata", map[string]string{
		"changes.ini": basicConfig,
	})
	catalogPath := filepath.Join(t.TempDir(), "patches.csv")

	b := NewBuilder(root, catalogPath, nil, nil)
	first, err := b.Build()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Flip the enabled flag as the selection editor would
	first[0].Enabled = true
	require.NoError(t, WriteFile(catalogPath, first))

	second, err := b.Build()
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Enabled)
	assert.Equal(t, first[0].Files.Values(), second[0].Files.Values())
}

func TestFindFileFold(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGES.INI"), nil, 0644))

	found, ok := FindFileFold(dir, "changes.ini")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "CHANGES.INI"), found)

	_, ok = FindFileFold(dir, "other.ini")
	assert.False(t, ok)
}
