package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds global application settings.
type Config struct {
	GameDir     string `yaml:"game_dir"`     // Real game installation (scanned, never written)
	ModsRoot    string `yaml:"mods_root"`    // Host mod manager's mods directory
	PatcherPath string `yaml:"patcher_path"` // External patcher executable
	ModListPath string `yaml:"modlist_path"` // Host profile load order (modlist.txt)

	ReassemblyDir string `yaml:"reassembly_dir"` // Staging tree (default: <data>/reassembly)
	LogsDir       string `yaml:"logs_dir"`       // Persistent logs (default: <data>/logs)
	CatalogPath   string `yaml:"catalog_path"`   // Patch catalog file (default: <data>/patches.csv)
	ConflictsPath string `yaml:"conflicts_path"` // Conflict report (default: <data>/conflicts.csv)

	// ReservedMod is the host-manager mod that receives reassembly output.
	// The pipeline refuses to run while it is active.
	ReservedMod string `yaml:"reserved_mod"`

	PatcherTimeoutMinutes int `yaml:"patcher_timeout_minutes"`
}

// Load reads configuration from the given directory, returning defaults when
// no config file exists.
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		ReservedMod:           "Reassembled Patches",
		PatcherTimeoutMinutes: 30,
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.ReservedMod == "" {
		cfg.ReservedMod = "Reassembled Patches"
	}
	if cfg.PatcherTimeoutMinutes <= 0 {
		cfg.PatcherTimeoutMinutes = 30
	}

	return cfg, nil
}

// ApplyDataDefaults fills path settings that default below the data directory.
func (c *Config) ApplyDataDefaults(dataDir string) {
	if c.ReassemblyDir == "" {
		c.ReassemblyDir = filepath.Join(dataDir, "reassembly")
	}
	if c.LogsDir == "" {
		c.LogsDir = filepath.Join(dataDir, "logs")
	}
	if c.CatalogPath == "" {
		c.CatalogPath = filepath.Join(dataDir, "patches.csv")
	}
	if c.ConflictsPath == "" {
		c.ConflictsPath = filepath.Join(dataDir, "conflicts.csv")
	}
}

// Save writes configuration to the given directory.
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
