package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, content string) *ScanResult {
	t.Helper()
	res, err := ScanConfig(strings.NewReader(content))
	require.NoError(t, err)
	return res
}

func TestScanConfig_FileKeys(t *testing.T) {
	res := scan(t, `
[InstallList]
File0=appearance.2da
Replace1=dialog.dlg
Table12=spells.2da
`)
	assert.Equal(t, []string{"appearance.2da", "dialog.dlg", "spells.2da"}, res.Files.Values())
}

func TestScanConfig_DestinationFeedsFiles(t *testing.T) {
	res := scan(t, "!Destination=override\\custom.mod\n")
	assert.True(t, res.Destinations.Has("override\\custom.mod"))
	assert.True(t, res.Files.Has("override\\custom.mod"))
}

func TestScanConfig_InstallFolderSplitByExtension(t *testing.T) {
	res := scan(t, `
install_folder0=Modules
install_folder1=danm13.mod
install_folder2=StreamVoice
`)
	assert.Equal(t, []string{"modules", "streamvoice"}, res.InstallFolders.Values())
	assert.Equal(t, []string{"danm13.mod"}, res.Files.Values())
}

func TestScanConfig_RequiredFiles(t *testing.T) {
	res := scan(t, "Required=appearance.2da\n")
	assert.True(t, res.RequiredFiles.Has("appearance.2da"))
	assert.False(t, res.Files.Has("appearance.2da"))
}

func TestScanConfig_WindowCaptionFirstWins(t *testing.T) {
	res := scan(t, `
WindowCaption=Ultimate Sound Mod 1.0
WindowCaption=Second Caption
`)
	assert.Equal(t, "Ultimate Sound Mod 1.0", res.Description)
}

func TestScanConfig_KeysMatchCaseInsensitively(t *testing.T) {
	res := scan(t, `
FILE0=a.tga
windowcaption=Caption
REQUIRED=b.2da
`)
	assert.True(t, res.Files.Has("a.tga"))
	assert.Equal(t, "Caption", res.Description)
	assert.True(t, res.RequiredFiles.Has("b.2da"))
}

func TestScanConfig_TLKListImpliesDialogTLK(t *testing.T) {
	res := scan(t, `
[TLKList]
StrRef0=123456
StrRef1=123457
[InstallList]
File0=thing.uti
`)
	assert.True(t, res.Files.Has("dialog.tlk"))
	assert.True(t, res.Files.Has("thing.uti"))
	assert.Equal(t, 2, res.Files.Len())
}

func TestScanConfig_TrailingTLKListSection(t *testing.T) {
	// [TLKList] as the last section of the file still registers
	res := scan(t, `
[Settings]
WindowCaption=Mod
[TLKList]
StrRef0=42
`)
	assert.True(t, res.Files.Has("dialog.tlk"))
}

func TestScanConfig_EmptyTLKListSection(t *testing.T) {
	res := scan(t, `
[TLKList]
[InstallList]
File0=a.uti
`)
	assert.False(t, res.Files.Has("dialog.tlk"))
}

func TestScanConfig_IgnoresCommentsAndBlankValues(t *testing.T) {
	res := scan(t, `
; File0=commented.tga
File0=
File1=real.tga
`)
	assert.Equal(t, []string{"real.tga"}, res.Files.Values())
}

func TestScanConfig_UnknownKeysIgnored(t *testing.T) {
	res := scan(t, `
LookupGameFolder=1
SaveProcessedScripts=0
`)
	assert.Equal(t, 0, res.Files.Len())
	assert.Equal(t, "", res.Description)
}
