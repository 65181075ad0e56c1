package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tslpm/internal/catalog"
	"tslpm/internal/domain"
	"tslpm/internal/loadorder"
	"tslpm/internal/patcher"
	"tslpm/internal/storage/config"
	"tslpm/internal/storage/db"

	"github.com/charmbracelet/log"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string // Directory for configuration files
	DataDir   string // Directory for database, catalog, staging and logs
	Verbose   bool
}

// Service wires configuration, the run-history database and the logger for
// the command surface.
type Service struct {
	Config *config.Config

	db      *db.DB
	log     *log.Logger
	logFile *os.File
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	appConfig.ApplyDataDefaults(cfg.DataDir)

	if err := os.MkdirAll(appConfig.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}

	// Persistent log accumulates a durable record across runs
	logPath := filepath.Join(appConfig.LogsDir, "tslpm.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(io.MultiWriter(os.Stderr, logFile), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})

	dbPath := filepath.Join(cfg.DataDir, "tslpm.db")
	database, err := db.New(dbPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Service{
		Config:  appConfig,
		db:      database,
		log:     logger,
		logFile: logFile,
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Logger returns the service logger.
func (s *Service) Logger() *log.Logger {
	return s.log
}

// DB returns the run-history database.
func (s *Service) DB() *db.DB {
	return s.db
}

// BuildCatalog rebuilds the patch catalog from the mods root and refreshes
// the conflict report. Prior enabled selections are preserved by composite
// key.
func (s *Service) BuildCatalog() ([]domain.PatchDescriptor, []domain.DuplicateFileRecord, error) {
	order, err := loadorder.Read(s.Config.ModListPath)
	if err != nil {
		return nil, nil, err
	}
	if order.IsActive(s.Config.ReservedMod) {
		return nil, nil, fmt.Errorf("%w: deactivate %q and run again",
			domain.ErrReservedModActive, s.Config.ReservedMod)
	}

	builder := catalog.NewBuilder(s.Config.ModsRoot, s.Config.CatalogPath, order, s.log)
	descriptors, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	conflicts := catalog.DetectConflicts(descriptors)
	if err := catalog.WriteConflictReport(s.Config.ConflictsPath, conflicts); err != nil {
		return nil, nil, err
	}

	s.log.Info("catalog rebuilt", "patches", len(descriptors), "conflicts", len(conflicts))
	return descriptors, conflicts, nil
}

// Catalog reads the persisted catalog.
func (s *Service) Catalog() ([]domain.PatchDescriptor, error) {
	return catalog.ReadFile(s.Config.CatalogPath)
}

// Conflicts reads the persisted conflict report; empty means none.
func (s *Service) Conflicts() ([]domain.DuplicateFileRecord, error) {
	return catalog.ReadConflictReport(s.Config.ConflictsPath)
}

// SetPatchEnabled toggles only the Enabled flag of the patch matched by
// (modName, patchName), rewriting every other column unchanged.
func (s *Service) SetPatchEnabled(modName, patchName string, enabled bool) error {
	descriptors, err := catalog.ReadFile(s.Config.CatalogPath)
	if err != nil {
		return err
	}

	key := domain.DescriptorKey(modName, patchName)
	found := false
	for i := range descriptors {
		if descriptors[i].Key() == key {
			descriptors[i].Enabled = enabled
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s / %s", domain.ErrPatchNotFound, modName, patchName)
	}

	return catalog.WriteFile(s.Config.CatalogPath, descriptors)
}

// Install runs the install orchestrator over the enabled catalog entries.
func (s *Service) Install(ctx context.Context) (domain.RunSummary, error) {
	timeout := time.Duration(s.Config.PatcherTimeoutMinutes) * time.Minute
	runner := patcher.NewExecRunner(timeout)
	orch := NewOrchestrator(s.Config, runner, s.db, s.log)
	return orch.Run(ctx)
}

// History returns the most recent orchestrator runs.
func (s *Service) History(limit int) ([]db.Run, error) {
	return s.db.ListRuns(limit)
}

// RunResults returns per-patch outcomes for one recorded run.
func (s *Service) RunResults(runID int64) ([]domain.PatchResult, error) {
	return s.db.GetRunResults(runID)
}
