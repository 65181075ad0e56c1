// Package loadorder reads the host mod manager's profile load order.
//
// The modlist file is line oriented: "+Name" marks an active mod, "-Name"
// an inactive one, and lines starting with "#" are comments. The file lists
// the highest-priority mod first, so entries are reversed on read to give
// index 0 = lowest priority.
package loadorder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one mod in the load order.
type Entry struct {
	Name   string
	Active bool
}

// Order is an ordered sequence of mod names, index 0 = lowest priority.
type Order struct {
	entries []Entry
	rank    map[string]int
	active  map[string]bool
}

// Read loads the order from a modlist file. A missing file yields an empty
// order: every mod is then unranked, which is valid by contract (unranked
// mods sort after all ranked mods).
func Read(path string) (*Order, error) {
	if path == "" {
		return New(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("opening modlist: %w", err)
	}
	defer f.Close()

	order, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing modlist %s: %w", path, err)
	}
	return order, nil
}

// Parse reads modlist content from r.
func Parse(r io.Reader) (*Order, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var active bool
		switch line[0] {
		case '+':
			active = true
		case '-':
			active = false
		default:
			// Bare names count as active entries
			entries = append(entries, Entry{Name: line, Active: true})
			continue
		}
		name := strings.TrimSpace(line[1:])
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, Active: active})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading modlist: %w", err)
	}

	// File order is highest priority first; flip to index 0 = lowest
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return New(entries), nil
}

// New builds an Order from entries already in index 0 = lowest priority order.
func New(entries []Entry) *Order {
	o := &Order{
		entries: entries,
		rank:    make(map[string]int, len(entries)),
		active:  make(map[string]bool, len(entries)),
	}
	for i, e := range entries {
		key := strings.ToLower(e.Name)
		o.rank[key] = i
		o.active[key] = e.Active
	}
	return o
}

// Rank returns the mod's position (0 = lowest priority) and whether the mod
// appears in the order at all. Matching is case-insensitive.
func (o *Order) Rank(name string) (int, bool) {
	r, ok := o.rank[strings.ToLower(name)]
	return r, ok
}

// IsActive reports whether the named mod is present and active.
func (o *Order) IsActive(name string) bool {
	return o.active[strings.ToLower(name)]
}

// Len returns the number of entries.
func (o *Order) Len() int {
	return len(o.entries)
}

// Entries returns the entries in priority order (index 0 = lowest).
func (o *Order) Entries() []Entry {
	return o.entries
}
