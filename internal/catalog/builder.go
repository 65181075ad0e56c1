package catalog

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"tslpm/internal/domain"
	"tslpm/internal/loadorder"

	"github.com/charmbracelet/log"
)

// Builder produces a fresh catalog of patch descriptors from a mods root
// directory, preserving prior enabled values by composite key. It always
// performs a full rebuild; the existing catalog file is read once, only for
// the enabled-state lookup.
type Builder struct {
	modsRoot    string
	catalogPath string
	order       *loadorder.Order
	log         *log.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to the default.
func NewBuilder(modsRoot, catalogPath string, order *loadorder.Order, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	if order == nil {
		order = loadorder.New(nil)
	}
	return &Builder{
		modsRoot:    modsRoot,
		catalogPath: catalogPath,
		order:       order,
		log:         logger,
	}
}

// Build scans the mods root, parses every discovered patch configuration,
// merges prior enabled state, and overwrites the catalog file.
func (b *Builder) Build() ([]domain.PatchDescriptor, error) {
	prior, err := b.priorEnabled()
	if err != nil {
		return nil, err
	}

	mods, err := b.discover()
	if err != nil {
		return nil, err
	}

	var descriptors []domain.PatchDescriptor
	seen := make(map[string]struct{})
	for _, m := range mods {
		for _, d := range b.modDescriptors(m.name, m.patchData) {
			key := d.Key()
			if _, dup := seen[key]; dup {
				b.log.Warn("duplicate patch name, keeping first", "mod", d.ModName, "patch", d.PatchName)
				continue
			}
			seen[key] = struct{}{}
			d.Enabled = prior[key]
			descriptors = append(descriptors, d)
		}
	}

	if err := WriteFile(b.catalogPath, descriptors); err != nil {
		return nil, err
	}
	return descriptors, nil
}

// priorEnabled reads the previously persisted catalog for enabled lookups.
// A missing catalog simply means every patch starts disabled.
func (b *Builder) priorEnabled() (map[string]bool, error) {
	enabled := make(map[string]bool)
	descriptors, err := ReadFile(b.catalogPath)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogNotFound) {
			return enabled, nil
		}
		return nil, fmt.Errorf("reading prior catalog: %w", err)
	}
	for _, d := range descriptors {
		enabled[d.Key()] = d.Enabled
	}
	return enabled, nil
}

type discoveredMod struct {
	name      string
	patchData string // Absolute path to the patch-data folder
	rank      int    // Load-order index; -1 when unranked
}

// discover lists qualifying mod directories ordered by load-order rank
// descending (highest priority first). Mods absent from the order sort
// after all ranked mods, in directory-listing order; the sort is stable so
// rebuilds are deterministic.
func (b *Builder) discover() ([]discoveredMod, error) {
	entries, err := os.ReadDir(b.modsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading mods root: %w", err)
	}

	var mods []discoveredMod
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		modDir := filepath.Join(b.modsRoot, e.Name())
		patchData, ok := FindPatchDataDir(modDir)
		if !ok {
			continue
		}
		rank := -1
		if r, ranked := b.order.Rank(e.Name()); ranked {
			rank = r
		}
		mods = append(mods, discoveredMod{name: e.Name(), patchData: patchData, rank: rank})
	}

	sort.SliceStable(mods, func(i, j int) bool {
		return mods[i].rank > mods[j].rank
	})
	return mods, nil
}

// modDescriptors builds the descriptors for one mod. Resolution failures
// skip the affected patch with a log line; they never fail the build.
func (b *Builder) modDescriptors(modName, patchData string) []domain.PatchDescriptor {
	nsPath, hasNamespaces := FindFileFold(patchData, NamespacesFileName)
	if !hasNamespaces {
		return b.fallbackDescriptor(modName, patchData)
	}

	f, err := os.Open(nsPath)
	if err != nil {
		b.log.Warn("cannot open namespace index, using fallback", "mod", modName, "err", err)
		return b.fallbackDescriptor(modName, patchData)
	}
	namespaces, err := ParseNamespaces(f)
	f.Close()
	if err != nil {
		b.log.Warn("cannot parse namespace index, using fallback", "mod", modName, "err", err)
		return b.fallbackDescriptor(modName, patchData)
	}
	if len(namespaces) == 0 {
		return b.fallbackDescriptor(modName, patchData)
	}

	var descriptors []domain.PatchDescriptor
	for _, ns := range namespaces {
		relPath, ok := b.resolveConfig(patchData, ns.ConfigRelPath())
		if !ok {
			b.log.Warn("patch config not found, skipping",
				"mod", modName, "patch", ns.PatchName(), "ini", ns.ConfigRelPath())
			continue
		}
		d, err := b.parseDescriptor(modName, ns.PatchName(), patchData, relPath)
		if err != nil {
			b.log.Warn("cannot parse patch config, skipping",
				"mod", modName, "patch", ns.PatchName(), "err", err)
			continue
		}
		// Namespace-supplied description wins over WindowCaption
		if ns.Description != "" {
			d.Description = ns.Description
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}

// fallbackDescriptor handles mods without a namespace index: the fallback
// configuration file is the one patch, under the reserved name "Default".
func (b *Builder) fallbackDescriptor(modName, patchData string) []domain.PatchDescriptor {
	cfgPath, ok := FindFileFold(patchData, domain.FallbackConfigName)
	if !ok {
		b.log.Warn("no patch config in patch-data folder, skipping mod", "mod", modName)
		return nil
	}
	d, err := b.parseDescriptor(modName, domain.DefaultPatchName, patchData, filepath.Base(cfgPath))
	if err != nil {
		b.log.Warn("cannot parse patch config, skipping mod", "mod", modName, "err", err)
		return nil
	}
	return []domain.PatchDescriptor{d}
}

// resolveConfig locates the declared configuration file relative to the
// patch-data folder, falling back to the fallback name in the same folder.
// Returns the resolved relative path (forward slashes).
func (b *Builder) resolveConfig(patchData, relPath string) (string, bool) {
	dir := path.Dir(relPath)
	base := path.Base(relPath)
	absDir := filepath.Join(patchData, filepath.FromSlash(dir))

	if found, ok := FindFileFold(absDir, base); ok {
		return joinRel(dir, filepath.Base(found)), true
	}
	if found, ok := FindFileFold(absDir, domain.FallbackConfigName); ok {
		return joinRel(dir, filepath.Base(found)), true
	}
	return "", false
}

func joinRel(dir, base string) string {
	if dir == "." || dir == "" {
		return base
	}
	return path.Join(dir, base)
}

// parseDescriptor parses one configuration file into a descriptor. The
// descriptor is returned only once parsing completed in full.
func (b *Builder) parseDescriptor(modName, patchName, patchData, relPath string) (domain.PatchDescriptor, error) {
	f, err := os.Open(filepath.Join(patchData, filepath.FromSlash(relPath)))
	if err != nil {
		return domain.PatchDescriptor{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	res, err := ScanConfig(f)
	if err != nil {
		return domain.PatchDescriptor{}, err
	}

	return domain.PatchDescriptor{
		ModName:        modName,
		PatchName:      patchName,
		Description:    res.Description,
		ConfigRelPath:  relPath,
		Destinations:   res.Destinations,
		InstallFolders: res.InstallFolders,
		Files:          res.Files,
		RequiredFiles:  res.RequiredFiles,
	}, nil
}

// FindPatchDataDir returns the mod's patch-data folder, matching the
// accepted folder names case-insensitively.
func FindPatchDataDir(modDir string) (string, bool) {
	entries, err := os.ReadDir(modDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, accepted := range domain.PatchDataFolders {
			if strings.EqualFold(e.Name(), accepted) {
				return filepath.Join(modDir, e.Name()), true
			}
		}
	}
	return "", false
}

// FindFileFold locates a file in dir by case-insensitive name match.
func FindFileFold(dir, name string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
