package catalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"tslpm/internal/domain"
)

// ScanResult accumulates everything a patcher configuration file contributes
// to a descriptor.
type ScanResult struct {
	Description    string
	Destinations   domain.StringSet
	InstallFolders domain.StringSet
	Files          domain.StringSet
	RequiredFiles  domain.StringSet
}

// tlkTarget is implied by any populated [TLKList] section.
const tlkTarget = "dialog.tlk"

// extSuffixRe matches values ending in a file-extension-like suffix
// (a dot followed by 2-4 alphanumerics).
var extSuffixRe = regexp.MustCompile(`\.[a-z0-9]{2,4}$`)

// keyHandlers is the ordered (pattern, handler) table evaluated per line.
// First match wins; keys are matched case-insensitively.
var keyHandlers = []struct {
	pattern *regexp.Regexp
	handle  func(res *ScanResult, value string)
}{
	{
		regexp.MustCompile(`(?i)^!destination$`),
		func(res *ScanResult, value string) {
			res.Destinations.Add(value)
			res.Files.Add(value)
		},
	},
	{
		regexp.MustCompile(`(?i)^install_folder\d+$`),
		func(res *ScanResult, value string) {
			if extSuffixRe.MatchString(strings.ToLower(value)) {
				res.Files.Add(value)
			} else {
				res.InstallFolders.Add(value)
			}
		},
	},
	{
		regexp.MustCompile(`(?i)^(?:file|replace|table)\d+$`),
		func(res *ScanResult, value string) {
			res.Files.Add(value)
		},
	},
	{
		regexp.MustCompile(`(?i)^required$`),
		func(res *ScanResult, value string) {
			res.RequiredFiles.Add(value)
		},
	},
	{
		regexp.MustCompile(`(?i)^windowcaption$`),
		func(res *ScanResult, value string) {
			// First occurrence wins
			if res.Description == "" {
				res.Description = strings.TrimSpace(value)
			}
		},
	},
}

// ScanConfig parses a patcher configuration file line by line.
//
// The scanner is a section-aware state machine: keyed lines are dispatched
// through keyHandlers regardless of section, except inside [TLKList], where
// any non-empty non-header line implies dialog.tlk as a target. The set
// semantics of ScanResult make that implication record exactly once, and
// the per-line check covers a [TLKList] that is the final section of the
// file.
func ScanConfig(r io.Reader) (*ScanResult, error) {
	res := &ScanResult{
		Destinations:   domain.NewStringSet(),
		InstallFolders: domain.NewStringSet(),
		Files:          domain.NewStringSet(),
		RequiredFiles:  domain.NewStringSet(),
	}

	section := ""
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		if section == "tlklist" {
			res.Files.Add(tlkTarget)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		for _, h := range keyHandlers {
			if h.pattern.MatchString(key) {
				h.handle(res, value)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return res, nil
}
