package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCmd_Structure(t *testing.T) {
	assert.Equal(t, "build", buildCmd.Use)
	assert.NotEmpty(t, buildCmd.Short)
	assert.NotEmpty(t, buildCmd.Long)
}

func TestBuild_EndToEnd(t *testing.T) {
	configDir = t.TempDir()
	dataDir = t.TempDir()
	t.Cleanup(func() { configDir, dataDir = "", "" })

	modsRoot := t.TempDir()
	patchData := filepath.Join(modsRoot, "Sound Mod", "tslpatchdata")
	require.NoError(t, os.MkdirAll(patchData, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(patchData, "changes.ini"),
		[]byte("[Settings]\nWindowCaption=Sound Mod 1.0\n[InstallList]\nFile0=voice.wav\n"), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"),
		[]byte("mods_root: "+modsRoot+"\n"), 0644))

	svc, err := initService()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, svc.Close()) })

	descriptors, conflicts, err := svc.BuildCatalog()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Empty(t, conflicts)
	assert.Equal(t, "Sound Mod", descriptors[0].ModName)
	assert.Equal(t, "Sound Mod 1.0", descriptors[0].Description)

	_, err = os.Stat(svc.Config.CatalogPath)
	assert.NoError(t, err)
}
