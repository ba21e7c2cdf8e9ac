package catalogs

import "sort"

// ImportCatalog is an ordered list of entries with unique names. Insertion
// order is declaration order and is preserved in reports.
type ImportCatalog struct {
	entries []Entry
	index   map[string]int
}

// NewImportCatalog returns an empty catalog.
func NewImportCatalog() *ImportCatalog {
	return &ImportCatalog{index: make(map[string]int)}
}

// Add appends e. The first entry with a given name wins; Add reports false
// and leaves the catalog unchanged for a duplicate.
func (c *ImportCatalog) Add(e Entry) bool {
	if _, ok := c.index[e.Name]; ok {
		return false
	}
	c.index[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	return true
}

// Get returns the entry with the exact name.
func (c *ImportCatalog) Get(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the entries in insertion order.
func (c *ImportCatalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns the entry names in insertion order.
func (c *ImportCatalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (c *ImportCatalog) Len() int {
	return len(c.entries)
}

// ManifestCatalog maps lowercased package names to the version and location
// reported by the manifest registry.
type ManifestCatalog struct {
	records map[string]Record
}

// NewManifestCatalog returns an empty catalog.
func NewManifestCatalog() *ManifestCatalog {
	return &ManifestCatalog{records: make(map[string]Record)}
}

// Set records r under the lowercased name.
func (c *ManifestCatalog) Set(name string, r Record) {
	c.records[Key(name)] = r
}

// Lookup finds a record, ignoring case.
func (c *ManifestCatalog) Lookup(name string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	r, ok := c.records[Key(name)]
	return r, ok
}

// Names returns the lowercased keys, sorted.
func (c *ManifestCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.records))
	for name := range c.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records. A nil catalog is empty.
func (c *ManifestCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}
