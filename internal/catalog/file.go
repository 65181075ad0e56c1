package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"tslpm/internal/domain"
)

// catalogHeader is the fixed column layout shared with the external
// selection editor. List columns are semicolon-joined sorted sets.
var catalogHeader = []string{
	"Enabled", "ModName", "PatchName", "Description",
	"IniShortPath", "Destination", "InstallPaths", "Files", "Required",
}

const listSep = ";"

// WriteFile overwrites the catalog file wholesale with the given descriptors.
func WriteFile(path string, descriptors []domain.PatchDescriptor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(catalogHeader); err != nil {
		return fmt.Errorf("writing catalog header: %w", err)
	}

	for _, d := range descriptors {
		enabled := "0"
		if d.Enabled {
			enabled = "1"
		}
		record := []string{
			enabled,
			d.ModName,
			d.PatchName,
			d.Description,
			d.ConfigRelPath,
			d.Destinations.Join(listSep),
			d.InstallFolders.Join(listSep),
			d.Files.Join(listSep),
			d.RequiredFiles.Join(listSep),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing catalog record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing catalog: %w", err)
	}
	return nil
}

// ReadFile loads the catalog. Returns domain.ErrCatalogNotFound when the
// file does not exist.
func ReadFile(path string) ([]domain.PatchDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(catalogHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(records[0][0], catalogHeader[0]) {
		return nil, fmt.Errorf("catalog %s: unexpected header %q", path, records[0][0])
	}

	descriptors := make([]domain.PatchDescriptor, 0, len(records)-1)
	for _, rec := range records[1:] {
		descriptors = append(descriptors, domain.PatchDescriptor{
			Enabled:        rec[0] == "1",
			ModName:        rec[1],
			PatchName:      rec[2],
			Description:    rec[3],
			ConfigRelPath:  rec[4],
			Destinations:   splitList(rec[5]),
			InstallFolders: splitList(rec[6]),
			Files:          splitList(rec[7]),
			RequiredFiles:  splitList(rec[8]),
		})
	}
	return descriptors, nil
}

func splitList(s string) domain.StringSet {
	set := domain.NewStringSet()
	if s == "" {
		return set
	}
	for _, v := range strings.Split(s, listSep) {
		set.Add(v)
	}
	return set
}
