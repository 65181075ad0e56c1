// Package gameindex builds a one-shot lookup index over a game installation.
package gameindex

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// Index maps lower-cased names to absolute paths. It is built fresh at the
// start of every orchestrator run, immutable afterwards, and never persisted.
//
// When two scanned files collide on the same lower-cased key the later one
// silently overwrites the earlier. Relative-path lookups are consulted
// before filename lookups, so last-write-wins only surfaces for bare-name
// fallback resolution.
type Index struct {
	ByRelPath map[string]string // lower-cased path relative to the install root -> absolute path
	ByName    map[string]string // lower-cased base name -> absolute path

	relByName map[string]string // lower-cased base name -> lower-cased relative path
}

// Build recursively scans gameDir once and returns the index.
func Build(gameDir string) (*Index, error) {
	idx := &Index{
		ByRelPath: make(map[string]string),
		ByName:    make(map[string]string),
		relByName: make(map[string]string),
	}

	err := filepath.WalkDir(gameDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(gameDir, p)
		if err != nil {
			return err
		}
		relKey := strings.ToLower(filepath.ToSlash(rel))
		nameKey := strings.ToLower(d.Name())
		idx.ByRelPath[relKey] = p
		idx.ByName[nameKey] = p
		idx.relByName[nameKey] = relKey
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning game directory: %w", err)
	}
	return idx, nil
}

// Resolve finds a target by relative path first, then by bare filename.
// It returns the absolute source path and the relative path the file should
// occupy in the staging tree.
func (idx *Index) Resolve(target string) (abs, rel string, ok bool) {
	key := strings.ToLower(strings.ReplaceAll(target, `\`, "/"))
	if abs, ok := idx.ByRelPath[key]; ok {
		return abs, key, true
	}
	name := path.Base(key)
	if abs, ok := idx.ByName[name]; ok {
		return abs, idx.relByName[name], true
	}
	return "", "", false
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.ByRelPath)
}
