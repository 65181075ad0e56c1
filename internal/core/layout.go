package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tslpm/internal/catalog"
)

// LayoutVerdict classifies a mod folder layout.
type LayoutVerdict int

const (
	LayoutInvalid LayoutVerdict = iota
	LayoutFixable
	LayoutValid
)

func (v LayoutVerdict) String() string {
	switch v {
	case LayoutValid:
		return "valid"
	case LayoutFixable:
		return "fixable"
	default:
		return "invalid"
	}
}

// LayoutReport is the result of checking one mod folder.
type LayoutReport struct {
	Verdict  LayoutVerdict
	Problems []string // Human-readable findings; may be non-empty even for valid layouts
}

// validLayout maps accepted game directories to the extensions they may hold.
var validLayout = map[string][]string{
	"override": {".tga", ".dds", ".mdl", ".mdx", ".uti", ".utc",
		".ncs", ".nss", ".2da", ".dlg", ".wav", ".mp3",
		".bik", ".txi", ".tpc"},
	"movies":       {".bik"},
	"lips":         {".mod"},
	"modules":      {".erf", ".rim", ".mod"},
	"streammusic":  {".wav"},
	"streamsounds": {".wav"},
	"streamvoice":  {".wav"},
	"texturepacks": {".erf"},
}

// restrictedDirs invalidate a mod outright: shipping them would overwrite
// core game data.
var restrictedDirs = map[string]bool{"data": true}

// docExts are documentation and leftovers that never count as mod payload.
var docExts = map[string]bool{
	".txt": true, ".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".bmp": true, ".gif": true, ".md": true, ".rtf": true, ".doc": true,
	".docx": true, ".ini": true, ".html": true, ".url": true,
	".log": true, ".bak": true, ".xml": true,
}

// CheckModLayout classifies a mod folder as valid, fixable or invalid.
//
// A root-level patch-data folder is always acceptable (the orchestrator
// handles those mods). Restricted directories anywhere invalidate the mod.
// Known game directories at the root are valid; payload files loose at the
// root or buried in unknown folders are fixable; a lone dialog.tlk is valid.
// The checker is read-only: it reports, it never rearranges mod folders.
func CheckModLayout(modDir string) (LayoutReport, error) {
	report := LayoutReport{Verdict: LayoutInvalid}

	entries, err := os.ReadDir(modDir)
	if err != nil {
		return report, fmt.Errorf("reading mod dir: %w", err)
	}

	if _, ok := catalog.FindPatchDataDir(modDir); ok {
		report.Verdict = LayoutValid
		return report, nil
	}

	payloadExts := make(map[string]bool)
	for _, exts := range validLayout {
		for _, e := range exts {
			payloadExts[e] = true
		}
	}

	hasValidDir := false
	fixable := false

	for _, e := range entries {
		name := strings.ToLower(e.Name())

		if e.IsDir() {
			if restrictedDirs[name] {
				report.Problems = append(report.Problems,
					fmt.Sprintf("restricted directory %q would overwrite game data", e.Name()))
				report.Verdict = LayoutInvalid
				return report, nil
			}
			exts, known := validLayout[name]
			if known {
				hasValidDir = true
				report.Problems = append(report.Problems,
					checkDirContents(filepath.Join(modDir, e.Name()), e.Name(), exts)...)
				continue
			}
			// Unknown root folder holding payload needs flattening
			if dirHasPayload(filepath.Join(modDir, e.Name()), payloadExts) {
				fixable = true
				report.Problems = append(report.Problems,
					fmt.Sprintf("folder %q contains mod files but is not a game directory", e.Name()))
			}
			continue
		}

		if name == "dialog.tlk" {
			hasValidDir = true
			continue
		}
		ext := filepath.Ext(name)
		if payloadExts[ext] {
			fixable = true
			report.Problems = append(report.Problems,
				fmt.Sprintf("loose file %q belongs in a game directory", e.Name()))
		}
	}

	switch {
	case hasValidDir && !fixable:
		report.Verdict = LayoutValid
	case fixable:
		report.Verdict = LayoutFixable
	default:
		report.Verdict = LayoutInvalid
		report.Problems = append(report.Problems, "no recognizable mod content")
	}
	return report, nil
}

// checkDirContents flags files a known game directory should not contain.
func checkDirContents(dir, display string, allowed []string) []string {
	var problems []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return problems
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() {
			problems = append(problems,
				fmt.Sprintf("nested directory %q inside %s is not allowed", e.Name(), display))
			continue
		}
		ext := filepath.Ext(name)
		if docExts[ext] {
			continue
		}
		ok := false
		for _, a := range allowed {
			if ext == a {
				ok = true
				break
			}
		}
		if !ok {
			problems = append(problems,
				fmt.Sprintf("%s/%s has extension %q not valid there", display, e.Name(), ext))
		}
	}
	return problems
}

// dirHasPayload reports whether any file below dir has a payload extension.
func dirHasPayload(dir string, payloadExts map[string]bool) bool {
	found := false
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || found || d.IsDir() {
			return nil
		}
		if payloadExts[filepath.Ext(strings.ToLower(d.Name()))] {
			found = true
		}
		return nil
	})
	return found
}
