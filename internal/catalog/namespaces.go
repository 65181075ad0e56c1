package catalog

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"
)

// NamespacesFileName is the per-mod index declaring multiple named patches.
const NamespacesFileName = "namespaces.ini"

// Namespace describes one named patch declared by a mod's namespace index.
type Namespace struct {
	ID          string
	Name        string // Display name; falls back to ID when absent
	Description string
	IniName     string // Configuration file name, required
	DataPath    string // Optional subpath below the patch-data folder
}

// PatchName returns the catalog patch name for the namespace.
func (n Namespace) PatchName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// ConfigRelPath returns the config location relative to the patch-data folder.
func (n Namespace) ConfigRelPath() string {
	if n.DataPath == "" {
		return n.IniName
	}
	return path.Join(n.DataPath, n.IniName)
}

// ParseNamespaces reads a namespaces.ini index. The [Namespaces] section
// lists namespace ids in declaration order; each id has its own section
// with IniName (required) plus optional Name, Description and DataPath.
// Namespaces without an IniName are dropped.
func ParseNamespaces(r io.Reader) ([]Namespace, error) {
	type kv struct{ key, value string }
	sections := make(map[string][]kv)
	var order []string

	section := ""
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		sections[section] = append(sections[section], kv{
			key:   strings.TrimSpace(key),
			value: strings.TrimSpace(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading namespaces: %w", err)
	}

	// Namespace ids in declaration order
	for _, pair := range sections["namespaces"] {
		if pair.value != "" {
			order = append(order, pair.value)
		}
	}

	var namespaces []Namespace
	for _, id := range order {
		ns := Namespace{ID: id}
		for _, pair := range sections[strings.ToLower(id)] {
			switch strings.ToLower(pair.key) {
			case "name":
				ns.Name = pair.value
			case "description":
				ns.Description = pair.value
			case "ininame":
				ns.IniName = pair.value
			case "datapath":
				ns.DataPath = normalizeDataPath(pair.value)
			}
		}
		if ns.IniName == "" {
			continue
		}
		namespaces = append(namespaces, ns)
	}

	return namespaces, nil
}

// normalizeDataPath converts backslash paths and strips a leading patch-data
// folder segment, since DataPath values conventionally repeat it.
func normalizeDataPath(p string) string {
	p = strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
	if p == "" {
		return ""
	}
	first, rest, _ := strings.Cut(p, "/")
	switch strings.ToLower(first) {
	case "tslpatchdata", "patchdata":
		return rest
	}
	return p
}
