package cmakecache

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

const advancedSuffix = "-ADVANCED"

var (
	newlinePattern = regexp.MustCompile(`\r\n|\r|\n`)
	entryPattern   = regexp.MustCompile(`^(?:"([^"]*)"|([^:="]+))(?::([A-Za-z_]+))?=(.*)$`)
)

// Cache is an immutable snapshot of a parsed CMakeCache.txt.
type Cache struct {
	Path    string
	entries map[string]Entry
}

// New wraps already parsed entries.
func New(path string, entries map[string]Entry) *Cache {
	if entries == nil {
		entries = map[string]Entry{}
	}
	return &Cache{Path: path, entries: entries}
}

// LoadFromPath reads the whole file and parses it from memory.
func LoadFromPath(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	return New(path, Parse(string(data))), nil
}

// Parse converts cache text into entries keyed by name. Comment lines may
// be indented. Lines that do not look like entries are skipped. When a key repeats the last one wins.
func Parse(text string) map[string]Entry {
	entries := map[string]Entry{}
	doc := ""
	for _, line := range newlinePattern.Split(text, -1) {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case trimmed == "":
			doc = ""
			continue
		case strings.HasPrefix(trimmed, "//"):
			doc = strings.TrimPrefix(strings.TrimPrefix(trimmed, "//"), " ")
			continue
		case strings.HasPrefix(trimmed, "#"):
			continue
		}

		entry, ok := parseLine(line, doc)
		if !ok {
			continue
		}
		doc = ""
		entries[entry.Key] = entry
	}

	markAdvanced(entries)
	return entries
}

func parseLine(line, doc string) (Entry, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	key := m[1]
	if key == "" {
		key = m[2]
	}
	if key == "" {
		return Entry{}, false
	}

	typ := TypeString
	if m[3] != "" {
		t, ok := ParseEntryType(m[3])
		if !ok {
			return Entry{}, false
		}
		typ = t
	}
	return newEntry(key, typ, m[4], doc), true
}

// markAdvanced flags entries that have a truthy KEY-ADVANCED companion.
func markAdvanced(entries map[string]Entry) {
	for key, marker := range entries {
		base, ok := strings.CutSuffix(key, advancedSuffix)
		if !ok || !IsTruthy(marker.Raw) {
			continue
		}
		if entry, exists := entries[base]; exists {
			entry.Advanced = true
			entries[base] = entry
		}
	}
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[key]
	return entry, ok
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Keys returns all entry keys in sorted order.
func (c *Cache) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the entry map.
func (c *Cache) Entries() map[string]Entry {
	out := make(map[string]Entry, c.Len())
	if c == nil {
		return out
	}
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
