package domain

import (
	"sort"
	"strings"
)

// FallbackConfigName is the configuration file used when a mod declares no
// namespaces, and the fixed name the external patcher expects.
const FallbackConfigName = "changes.ini"

// DefaultPatchName is the reserved patch name for mods without a namespace index.
const DefaultPatchName = "Default"

// PatchDataFolders are the accepted patch-data subfolder names, matched
// case-insensitively.
var PatchDataFolders = []string{"tslpatchdata", "patchdata"}

// StringSet is a deduplicated set of lower-cased strings.
// Values are lower-cased on insertion so membership is case-insensitive;
// Values() always returns sorted order, which keeps catalog serialization
// deterministic across rebuilds.
type StringSet struct {
	members map[string]struct{}
}

// NewStringSet creates a set containing the given values.
func NewStringSet(values ...string) StringSet {
	s := StringSet{members: make(map[string]struct{})}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts a value, lower-cased and trimmed. Empty values are ignored.
func (s *StringSet) Add(v string) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return
	}
	if s.members == nil {
		s.members = make(map[string]struct{})
	}
	s.members[v] = struct{}{}
}

// Has reports whether the set contains v (case-insensitive).
func (s StringSet) Has(v string) bool {
	_, ok := s.members[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Len returns the number of members.
func (s StringSet) Len() int {
	return len(s.members)
}

// Values returns the members in sorted order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s.members))
	for v := range s.members {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Join returns the sorted members joined with sep.
func (s StringSet) Join(sep string) string {
	return strings.Join(s.Values(), sep)
}

// PatchDescriptor is one named, installable patch unit sourced from a mod's
// patcher configuration. (ModName, PatchName) is unique within a catalog.
type PatchDescriptor struct {
	ModName       string
	PatchName     string
	Description   string
	ConfigRelPath string // Config file location relative to the patch-data folder

	Destinations   StringSet
	InstallFolders StringSet
	Files          StringSet
	RequiredFiles  StringSet

	Enabled bool // User-controlled; new patches default to disabled
}

// Key returns the composite catalog key for the descriptor.
func (p PatchDescriptor) Key() string {
	return DescriptorKey(p.ModName, p.PatchName)
}

// DescriptorKey builds the composite key used for enabled-state lookups.
func DescriptorKey(modName, patchName string) string {
	return strings.ToLower(modName) + "\x00" + strings.ToLower(patchName)
}

// DuplicateFileRecord reports a file referenced by two or more distinct mods.
// Derived from a built descriptor set; never written back into the catalog.
type DuplicateFileRecord struct {
	FileName string
	Mods     []string // Sorted, len >= 2
}

// ModCount returns the number of distinct mods touching the file.
func (r DuplicateFileRecord) ModCount() int {
	return len(r.Mods)
}

// PatchStatus is the terminal state of one descriptor in an orchestrator run.
type PatchStatus string

const (
	StatusSucceeded PatchStatus = "succeeded"
	StatusFailed    PatchStatus = "failed"
	StatusSkipped   PatchStatus = "skipped"
)

// PatchResult records the outcome of processing one descriptor.
type PatchResult struct {
	ModName   string
	PatchName string
	Status    PatchStatus
	ExitCode  int
	LogPath   string // Archived installlog.txt location, if any
	Reason    string // Skip or failure detail
}

// RunSummary is the externally observable outcome of an orchestrator run.
type RunSummary struct {
	Processed int // Enabled descriptors examined
	Succeeded int
	Failed    int // Execution failures (non-zero exit or launch error)
	Skipped   int // Pre-staging resolution failures
	Missing   int // Target files absent from the indexed installation
}
