package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNamespaces = `
[Namespaces]
Namespace0=standard
Namespace1=alternate

[standard]
Name=Standard Install
Description=The recommended option.
IniName=changes.ini

[alternate]
IniName=alt.ini
DataPath=tslpatchdata\alternate
`

func TestParseNamespaces_DeclarationOrder(t *testing.T) {
	namespaces, err := ParseNamespaces(strings.NewReader(sampleNamespaces))
	require.NoError(t, err)
	require.Len(t, namespaces, 2)

	assert.Equal(t, "standard", namespaces[0].ID)
	assert.Equal(t, "Standard Install", namespaces[0].PatchName())
	assert.Equal(t, "The recommended option.", namespaces[0].Description)
	assert.Equal(t, "changes.ini", namespaces[0].ConfigRelPath())

	// Name falls back to the id
	assert.Equal(t, "alternate", namespaces[1].PatchName())
}

func TestParseNamespaces_DataPathNormalization(t *testing.T) {
	namespaces, err := ParseNamespaces(strings.NewReader(sampleNamespaces))
	require.NoError(t, err)

	// Leading tslpatchdata segment and backslashes are stripped
	assert.Equal(t, "alternate", namespaces[1].DataPath)
	assert.Equal(t, "alternate/alt.ini", namespaces[1].ConfigRelPath())
}

func TestParseNamespaces_DropsMissingIniName(t *testing.T) {
	namespaces, err := ParseNamespaces(strings.NewReader(`
[Namespaces]
Namespace0=broken
Namespace1=good

[broken]
Name=No Config

[good]
IniName=changes.ini
`))
	require.NoError(t, err)
	require.Len(t, namespaces, 1)
	assert.Equal(t, "good", namespaces[0].ID)
}

func TestParseNamespaces_EmptyFile(t *testing.T) {
	namespaces, err := ParseNamespaces(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}

func TestNormalizeDataPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{``, ``},
		{`tslpatchdata`, ``},
		{`tslpatchdata\sub`, `sub`},
		{`PatchData/sub/deep`, `sub/deep`},
		{`custom\sub`, `custom/sub`},
		{`/leading/`, `leading`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDataPath(tt.in), "input %q", tt.in)
	}
}
