package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"tslpm/internal/domain"
)

var conflictHeader = []string{"FileName", "Mods", "ModCount"}

// DetectConflicts returns a record for every file name referenced (via
// Files) by two or more distinct mods. Comparison is case-insensitive; a
// file referenced multiple times by the same mod counts once. Output is
// sorted by file name.
func DetectConflicts(descriptors []domain.PatchDescriptor) []domain.DuplicateFileRecord {
	// file name -> lower-cased mod name -> display name (first seen wins)
	touching := make(map[string]map[string]string)

	for _, d := range descriptors {
		modKey := strings.ToLower(d.ModName)
		for _, file := range d.Files.Values() {
			mods, ok := touching[file]
			if !ok {
				mods = make(map[string]string)
				touching[file] = mods
			}
			if _, seen := mods[modKey]; !seen {
				mods[modKey] = d.ModName
			}
		}
	}

	var records []domain.DuplicateFileRecord
	for file, mods := range touching {
		if len(mods) < 2 {
			continue
		}
		names := make([]string, 0, len(mods))
		for _, display := range mods {
			names = append(names, display)
		}
		sort.Strings(names)
		records = append(records, domain.DuplicateFileRecord{FileName: file, Mods: names})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].FileName < records[j].FileName
	})
	return records
}

// WriteConflictReport writes the report file, or removes it when there are
// no conflicts (an empty result is a normal outcome, not an error).
func WriteConflictReport(path string, records []domain.DuplicateFileRecord) error {
	if len(records) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale conflict report: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating conflict report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(conflictHeader); err != nil {
		return fmt.Errorf("writing conflict header: %w", err)
	}
	for _, r := range records {
		rec := []string{r.FileName, strings.Join(r.Mods, listSep), strconv.Itoa(r.ModCount())}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing conflict record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing conflict report: %w", err)
	}
	return nil
}

// ReadConflictReport loads a previously written report. A missing file means
// no conflicts and returns an empty slice.
func ReadConflictReport(path string) ([]domain.DuplicateFileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening conflict report: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(conflictHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing conflict report: %w", err)
	}

	var records []domain.DuplicateFileRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		records = append(records, domain.DuplicateFileRecord{
			FileName: row[0],
			Mods:     strings.Split(row[1], listSep),
		})
	}
	return records, nil
}
