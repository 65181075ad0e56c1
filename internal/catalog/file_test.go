package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tslpm/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.csv")

	in := []domain.PatchDescriptor{
		{
			Enabled:        true,
			ModName:        "Sound Mod",
			PatchName:      "Default",
			Description:    "Voice fixes, with commas",
			ConfigRelPath:  "changes.ini",
			Destinations:   domain.NewStringSet("override"),
			InstallFolders: domain.NewStringSet("StreamVoice", "Modules"),
			Files:          domain.NewStringSet("b.tga", "a.tga"),
			RequiredFiles:  domain.NewStringSet(),
		},
		{
			ModName:        "Other",
			PatchName:      "Alt",
			ConfigRelPath:  "alt/alt.ini",
			Destinations:   domain.NewStringSet(),
			InstallFolders: domain.NewStringSet(),
			Files:          domain.NewStringSet(),
			RequiredFiles:  domain.NewStringSet("dialog.tlk"),
		},
	}

	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.True(t, out[0].Enabled)
	assert.Equal(t, "Sound Mod", out[0].ModName)
	assert.Equal(t, "Voice fixes, with commas", out[0].Description)
	assert.Equal(t, []string{"a.tga", "b.tga"}, out[0].Files.Values())
	assert.Equal(t, []string{"modules", "streamvoice"}, out[0].InstallFolders.Values())

	assert.False(t, out[1].Enabled)
	assert.Equal(t, "alt/alt.ini", out[1].ConfigRelPath)
	assert.True(t, out[1].RequiredFiles.Has("dialog.tlk"))
	assert.Equal(t, 0, out[1].Files.Len())
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "patches.csv"))
	assert.True(t, errors.Is(err, domain.ErrCatalogNotFound))
}

func TestWriteFile_OverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.csv")

	first := []domain.PatchDescriptor{{ModName: "A", PatchName: "Default"}}
	second := []domain.PatchDescriptor{{ModName: "B", PatchName: "Default"}}

	require.NoError(t, WriteFile(path, first))
	require.NoError(t, WriteFile(path, second))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].ModName)
}

func TestReadFile_RejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nope,ModName,PatchName,Description,IniShortPath,Destination,InstallPaths,Files,Required\n"), 0644))

	_, err := ReadFile(path)
	assert.Error(t, err)
}
