// Package staging manages the reassembly directory: the isolated copy of
// game files that patches are actually applied against.
package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"tslpm/internal/domain"
	"tslpm/internal/gameindex"

	"github.com/charmbracelet/log"
)

// PlaceholderName is the dummy game binary placed at the reassembly root.
// The external patcher validates its install target by this file's
// presence; content is irrelevant.
const PlaceholderName = "swkotor2.exe"

var placeholderContent = []byte("MZ\x90\x00tslpm reassembly placeholder\n")

// Area is the reassembly directory tree, rebuilt empty at the start of
// every orchestrator run.
type Area struct {
	Root string

	log       *log.Logger
	checksums map[string]string // staged relative path -> sha256 at copy time
}

// New creates an Area rooted at root. A nil logger falls back to the default.
func New(root string, logger *log.Logger) *Area {
	if logger == nil {
		logger = log.Default()
	}
	return &Area{Root: root, log: logger, checksums: make(map[string]string)}
}

// Reset deletes and recreates the reassembly root, then writes the
// placeholder binary. Idempotent: prior contents are not inputs to a run.
func (a *Area) Reset() error {
	if err := os.RemoveAll(a.Root); err != nil {
		return fmt.Errorf("clearing reassembly dir: %w", err)
	}
	if err := os.MkdirAll(a.Root, 0755); err != nil {
		return fmt.Errorf("creating reassembly dir: %w", err)
	}
	placeholder := filepath.Join(a.Root, PlaceholderName)
	if err := os.WriteFile(placeholder, placeholderContent, 0644); err != nil {
		return fmt.Errorf("writing placeholder: %w", err)
	}
	a.checksums = make(map[string]string)
	return nil
}

// RemovePlaceholder deletes the placeholder binary. Called at run end
// regardless of per-patch outcomes.
func (a *Area) RemovePlaceholder() error {
	err := os.Remove(filepath.Join(a.Root, PlaceholderName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing placeholder: %w", err)
	}
	return nil
}

// CopyStats reports the batch copy outcome.
type CopyStats struct {
	Copied  int
	Missing int // Targets absent from the indexed installation (non-fatal)
}

// CopyTargets copies every resolvable target from the real installation
// into the reassembly tree at the same relative path. It runs once for the
// whole batch, before any patch execution. For targets in the required set
// a content checksum is recorded at copy time, used later to detect whether
// the external patcher actually modified the file.
func (a *Area) CopyTargets(idx *gameindex.Index, targets []string, required domain.StringSet) (CopyStats, error) {
	var stats CopyStats
	for _, target := range targets {
		abs, rel, ok := idx.Resolve(target)
		if !ok {
			a.log.Warn("target not found in game installation", "file", target)
			stats.Missing++
			continue
		}
		dst := filepath.Join(a.Root, filepath.FromSlash(rel))
		if err := CopyFile(abs, dst); err != nil {
			return stats, fmt.Errorf("staging %s: %w", target, err)
		}
		stats.Copied++

		if required.Has(target) {
			sum, err := hashFile(dst)
			if err != nil {
				return stats, fmt.Errorf("hashing required file %s: %w", target, err)
			}
			a.checksums[rel] = sum
		}
	}
	return stats, nil
}

// CleanupUnchanged recomputes the checksum of every recorded required file
// and deletes the ones no patch modified; changed files are retained in the
// final mergeable output. Returns the number of files removed.
func (a *Area) CleanupUnchanged() (int, error) {
	removed := 0
	for rel, recorded := range a.checksums {
		staged := filepath.Join(a.Root, filepath.FromSlash(rel))
		current, err := hashFile(staged)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // a patch removed it; nothing to clean
			}
			return removed, fmt.Errorf("rehashing %s: %w", rel, err)
		}
		if current != recorded {
			continue
		}
		if err := os.Remove(staged); err != nil {
			return removed, fmt.Errorf("removing unchanged %s: %w", rel, err)
		}
		removed++
	}
	return removed, nil
}

// CopyFile copies src to dst, creating parent directories as needed and
// preserving the source mode.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}
	return nil
}

// CopyDir recursively copies the directory tree at src into dst.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return CopyFile(p, target)
	})
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
