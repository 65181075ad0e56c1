package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tslpm/internal/catalog"
	"tslpm/internal/domain"
	"tslpm/internal/gameindex"
	"tslpm/internal/loadorder"
	"tslpm/internal/patcher"
	"tslpm/internal/staging"
	"tslpm/internal/storage/config"
	"tslpm/internal/storage/db"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
)

// infoDocName is required by the external patcher inside its patch-data
// folder; a minimal placeholder is synthesized when a mod ships none.
const infoDocName = "info.rtf"

var infoDocPlaceholder = []byte(`{\rtf1\ansi Prepared for patching.}`)

// Orchestrator executes the enabled patches of a catalog, in catalog order,
// against an isolated reassembly copy of the game installation.
//
// Each descriptor moves through
// Pending -> PatchFolderResolved -> ConfigResolved -> Staged ->
// Executed{Success|Failure} -> Cleaned. Failures before Staged skip the
// descriptor; execution failures are counted; only hard preconditions
// abort the run. Processing is strictly sequential: later patches may
// depend on files earlier patches placed into the shared reassembly tree.
type Orchestrator struct {
	cfg    *config.Config
	runner patcher.Runner
	db     *db.DB // Optional: enables run history
	log    *log.Logger
}

// NewOrchestrator creates an orchestrator. The db is optional; a nil logger
// falls back to the default.
func NewOrchestrator(cfg *config.Config, runner patcher.Runner, database *db.DB, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{cfg: cfg, runner: runner, db: database, log: logger}
}

// Run executes one full install batch. The returned error is non-nil only
// for hard precondition failures; individual patch failures are reported
// through the summary.
func (o *Orchestrator) Run(ctx context.Context) (domain.RunSummary, error) {
	var summary domain.RunSummary
	startedAt := time.Now()

	enabled, err := o.checkPreconditions()
	if err != nil {
		return summary, err
	}

	// One run at a time: the reassembly tree is shared mutable state
	lock := flock.New(o.cfg.ReassemblyDir + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return summary, fmt.Errorf("another install run is in progress")
	}
	defer func() { _ = lock.Unlock() }()

	area := staging.New(o.cfg.ReassemblyDir, o.log)
	if err := area.Reset(); err != nil {
		return summary, err
	}
	defer func() { _ = area.RemovePlaceholder() }()

	o.log.Info("indexing game installation", "dir", o.cfg.GameDir)
	idx, err := gameindex.Build(o.cfg.GameDir)
	if err != nil {
		return summary, err
	}
	o.log.Info("indexed game files", "count", idx.Len())

	// Bulk copy phase: completes in full before any patch execution
	targets, required := collectTargets(enabled)
	stats, err := area.CopyTargets(idx, targets, required)
	if err != nil {
		return summary, err
	}
	summary.Missing = stats.Missing
	o.log.Info("staged game files", "copied", stats.Copied, "missing", stats.Missing)

	var results []domain.PatchResult
	for _, d := range enabled {
		result := o.processPatch(ctx, area, d)
		results = append(results, result)
		summary.Processed++
		switch result.Status {
		case domain.StatusSucceeded:
			summary.Succeeded++
			o.log.Info("patch applied", "mod", d.ModName, "patch", d.PatchName)
		case domain.StatusFailed:
			summary.Failed++
			o.log.Error("patch failed", "mod", d.ModName, "patch", d.PatchName,
				"exit", result.ExitCode, "reason", result.Reason)
		case domain.StatusSkipped:
			summary.Skipped++
			o.log.Warn("patch skipped", "mod", d.ModName, "patch", d.PatchName, "reason", result.Reason)
		}
	}

	removed, err := area.CleanupUnchanged()
	if err != nil {
		return summary, err
	}
	if err := area.RemovePlaceholder(); err != nil {
		return summary, err
	}
	o.log.Info("run complete",
		"processed", summary.Processed, "succeeded", summary.Succeeded,
		"failed", summary.Failed, "skipped", summary.Skipped,
		"missing", summary.Missing, "unchanged_removed", removed)

	if o.db != nil {
		run := db.Run{StartedAt: startedAt, FinishedAt: time.Now(), Summary: summary}
		if _, err := o.db.SaveRun(run, results); err != nil {
			o.log.Error("could not record run history", "err", err)
		}
	}

	return summary, nil
}

// checkPreconditions verifies the hard preconditions and returns the enabled
// descriptors in catalog order.
func (o *Orchestrator) checkPreconditions() ([]domain.PatchDescriptor, error) {
	if _, err := os.Stat(o.cfg.PatcherPath); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPatcherNotFound, o.cfg.PatcherPath)
	}

	entries, err := os.ReadDir(o.cfg.GameDir)
	if err != nil || len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameDirNotFound, o.cfg.GameDir)
	}

	order, err := loadorder.Read(o.cfg.ModListPath)
	if err != nil {
		return nil, err
	}
	if order.IsActive(o.cfg.ReservedMod) {
		return nil, fmt.Errorf("%w: deactivate %q and run again",
			domain.ErrReservedModActive, o.cfg.ReservedMod)
	}

	descriptors, err := catalog.ReadFile(o.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	var enabled []domain.PatchDescriptor
	for _, d := range descriptors {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}
	if len(enabled) == 0 {
		return nil, domain.ErrNoEnabledPatches
	}
	return enabled, nil
}

// collectTargets unions files and required files across all enabled
// descriptors. The required set gates checksum recording during the copy
// phase.
func collectTargets(enabled []domain.PatchDescriptor) ([]string, domain.StringSet) {
	all := domain.NewStringSet()
	required := domain.NewStringSet()
	for _, d := range enabled {
		for _, f := range d.Files.Values() {
			all.Add(f)
		}
		for _, f := range d.RequiredFiles.Values() {
			all.Add(f)
			required.Add(f)
		}
	}
	return all.Values(), required
}

// processPatch runs one descriptor through the per-patch state machine.
// The temp patch-data copy is removed unconditionally, even when execution
// fails.
func (o *Orchestrator) processPatch(ctx context.Context, area *staging.Area, d domain.PatchDescriptor) domain.PatchResult {
	result := domain.PatchResult{ModName: d.ModName, PatchName: d.PatchName}

	skip := func(reason string) domain.PatchResult {
		result.Status = domain.StatusSkipped
		result.Reason = reason
		return result
	}

	// PatchFolderResolved
	modDir := filepath.Join(o.cfg.ModsRoot, d.ModName)
	patchData, ok := catalog.FindPatchDataDir(modDir)
	if !ok {
		return skip("patch-data folder not found")
	}

	// ConfigResolved
	cfgPath := filepath.Join(patchData, filepath.FromSlash(d.ConfigRelPath))
	if _, err := os.Stat(cfgPath); err != nil {
		return skip(fmt.Sprintf("config not found: %s", d.ConfigRelPath))
	}

	// Staged: isolate the config's containing folder in an ephemeral copy
	tempDir, err := os.MkdirTemp("", "tslpm-patch-")
	if err != nil {
		return skip(fmt.Sprintf("creating temp dir: %v", err))
	}
	defer os.RemoveAll(tempDir)

	if err := staging.CopyDir(filepath.Dir(cfgPath), tempDir); err != nil {
		return skip(fmt.Sprintf("staging patch data: %v", err))
	}
	if err := prepareTempPatchData(tempDir, filepath.Base(cfgPath)); err != nil {
		return skip(fmt.Sprintf("preparing patch data: %v", err))
	}

	// Executed
	res, runErr := o.runner.Run(ctx, patcher.Command{
		Binary:       o.cfg.PatcherPath,
		GameDir:      area.Root,
		PatchDataDir: tempDir,
	})

	// Archive the install log before the temp copy goes away
	result.LogPath = o.archiveInstallLog(tempDir, d)
	result.ExitCode = res.ExitCode

	if runErr != nil {
		result.Status = domain.StatusFailed
		result.Reason = runErr.Error()
		return result
	}
	if res.ExitCode != 0 {
		result.Status = domain.StatusFailed
		result.Reason = fmt.Sprintf("patcher exited with code %d", res.ExitCode)
		return result
	}
	result.Status = domain.StatusSucceeded
	return result
}

// prepareTempPatchData shapes the temp copy for the external patcher:
// an info document must exist, a copied namespace index must not re-trigger
// multi-patch selection, and the config must carry the patcher's fixed name.
func prepareTempPatchData(tempDir, configName string) error {
	if _, ok := catalog.FindFileFold(tempDir, infoDocName); !ok {
		if err := os.WriteFile(filepath.Join(tempDir, infoDocName), infoDocPlaceholder, 0644); err != nil {
			return fmt.Errorf("writing info document: %w", err)
		}
	}

	if nsPath, ok := catalog.FindFileFold(tempDir, catalog.NamespacesFileName); ok {
		if err := os.Remove(nsPath); err != nil {
			return fmt.Errorf("removing namespace index: %w", err)
		}
	}

	if !strings.EqualFold(configName, domain.FallbackConfigName) {
		src := filepath.Join(tempDir, configName)
		dst := filepath.Join(tempDir, domain.FallbackConfigName)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("renaming config: %w", err)
		}
	}
	return nil
}

// archiveInstallLog copies the patcher's install log, when present, into
// the persistent per-mod log location. Returns the archived path or "".
func (o *Orchestrator) archiveInstallLog(tempDir string, d domain.PatchDescriptor) string {
	src, ok := catalog.FindFileFold(tempDir, patcher.InstallLogName)
	if !ok {
		return ""
	}
	dstDir := filepath.Join(o.cfg.LogsDir, sanitizeName(d.ModName))
	dst := filepath.Join(dstDir, sanitizeName(d.PatchName)+"-"+patcher.InstallLogName)
	if err := staging.CopyFile(src, dst); err != nil {
		o.log.Warn("could not archive install log", "mod", d.ModName, "err", err)
		return ""
	}
	return dst
}

// sanitizeName makes a mod or patch name safe as a path segment.
func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return "_"
	}
	return name
}

// IsHardPrecondition reports whether err is one of the run-aborting
// precondition failures (process exit code 1).
func IsHardPrecondition(err error) bool {
	return errors.Is(err, domain.ErrPatcherNotFound) ||
		errors.Is(err, domain.ErrCatalogNotFound) ||
		errors.Is(err, domain.ErrGameDirNotFound) ||
		errors.Is(err, domain.ErrReservedModActive) ||
		errors.Is(err, domain.ErrNoEnabledPatches)
}
