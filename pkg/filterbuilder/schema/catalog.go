package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Catalog is a thread-safe set of schemas indexed by name, for hosts that
// offer filters over several datasets.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Config
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*Config),
	}
}

// Register adds or replaces a schema.
func (c *Catalog) Register(name string, cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cfg
}

// Get returns the schema registered under name.
func (c *Catalog) Get(name string) (*Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.entries[name]
	return cfg, ok
}

// MustGet returns the schema registered under name, panicking if absent.
func (c *Catalog) MustGet(name string) *Config {
	cfg, ok := c.Get(name)
	if !ok {
		panic("schema: catalog has no schema " + name)
	}
	return cfg
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LoadDir registers every schema document in dir, named by file name
// without extension. Files with other extensions are skipped. Nothing is
// registered if any document fails to load.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	loaded := make(map[string]*Config)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		cfg, err := FromFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("load %s: %w", e.Name(), err)
		}
		loaded[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = cfg
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, cfg := range loaded {
		c.entries[name] = cfg
	}
	return nil
}
