// Package assets embeds the site's stylesheet and browser script and serves
// them under fingerprinted names.
//
// At startup the embedded files are hashed into a manifest mapping source
// names to fingerprinted ones:
//
//	"site.css" -> "site.3f2a9c1b.css"
//	"live.js"  -> "live.8d04e6aa.js"
//
// Views resolve URLs through a Resolver, and Handler serves both names:
// fingerprinted ones with an immutable cache policy, plain ones uncached.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed static
var embedded embed.FS

// Static returns the embedded asset files, rooted at their source names.
func Static() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Manifest holds the mapping from source asset names to fingerprinted names.
// It is safe for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
	sources map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
		sources: make(map[string]string),
	}
}

// Build hashes every regular file in fsys and returns the manifest.
func Build(fsys fs.FS) (*Manifest, error) {
	m := NewManifest()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		m.Set(p, Fingerprint(p, data))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Fingerprint inserts a short content hash before the extension of name.
func Fingerprint(name string, data []byte) string {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:4])
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hash + ext
}

// Resolve returns the fingerprinted name for source, or source unchanged.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Source maps a fingerprinted name back to its source name.
func (m *Manifest) Source(fingerprinted string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sources[fingerprinted]
	return s, ok
}

// Has returns true if the manifest contains the given source name.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Set adds or updates an entry.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[source]; ok {
		delete(m.sources, old)
	}
	m.entries[source] = resolved
	m.sources[resolved] = source
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Names returns the source names in sorted order.
func (m *Manifest) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.entries))
	for k := range m.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
