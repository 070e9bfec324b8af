// Package overlay persists user-applied discovery API writes to a state.toml
// file layered atop the static base configuration, grounded on
// _examples/original_source/src/config/persist.rs's StateManager: same
// directory as the base config, same write-to-temp-then-rename discipline,
// same "clear resets the file but not the in-memory store" semantics
// (spec.md §4.2).
package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/yarhs-io/yarhs/internal/config"
)

const stateFileName = "state.toml"

// Document is the overlay's on-disk shape. Every section is independently
// optional; an absent section means "use the base configuration value"
// during the field-wise merge performed by Merge.
type Document struct {
	Server      *config.ServerConfig  `toml:"server,omitempty"`
	Logging     *config.Logging       `toml:"logging,omitempty"`
	HTTP        *config.HTTP          `toml:"http,omitempty"`
	Performance *config.Performance   `toml:"performance,omitempty"`
	Route       *config.Route         `toml:"routes,omitempty"`
	VirtualHost []config.VirtualHost  `toml:"virtual_hosts,omitempty"`
}

// Manager owns the overlay file and the last-loaded Document, matching the
// Rust StateManager's RwLock<PersistentState> cache.
type Manager struct {
	mu        sync.RWMutex
	statePath string
	doc       Document
	enabled   bool
}

// NewManager derives state.toml's path from configPath's directory. When
// enabled is false, no file is read or written; Merge then applies only the
// sections set by Update* calls made on this Manager.
func NewManager(configPath string, enabled bool) *Manager {
	dir := filepath.Dir(configPath)
	m := &Manager{
		statePath: filepath.Join(dir, stateFileName),
		enabled:   enabled,
	}
	if enabled {
		if doc, err := loadDocument(m.statePath); err == nil {
			m.doc = doc
		}
	}
	return m
}

func loadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("overlay: parsing %s: %w", path, err)
	}
	return doc, nil
}

// Merge overlays the currently-loaded document atop base, field-wise per
// section: the overlay's section wins if present, else the base value
// stands.
func (m *Manager) Merge(base config.Base) config.Base {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := base
	if m.doc.Server != nil {
		out.Server = *m.doc.Server
	}
	if m.doc.Logging != nil {
		out.Logging = *m.doc.Logging
	}
	if m.doc.HTTP != nil {
		out.HTTP = *m.doc.HTTP
	}
	if m.doc.Performance != nil {
		out.Performance = *m.doc.Performance
	}
	if m.doc.Route != nil {
		out.Route = *m.doc.Route
	}
	if len(m.doc.VirtualHost) > 0 {
		out.VirtualHost = m.doc.VirtualHost
	}
	return out
}

// Enabled reports whether persistence is turned on.
func (m *Manager) Enabled() bool { return m.enabled }

// StatePath returns the resolved path to state.toml.
func (m *Manager) StatePath() string { return m.statePath }

// Document returns a copy of the currently-loaded overlay document, for the
// discovery API's GET /v1/state.
func (m *Manager) Document() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc
}

// UpdateServer persists a new server section and writes it to disk. Per
// spec.md §4.2, the in-memory store must already have been updated by the
// caller before this is invoked; a write failure here is logged by the
// caller, not rolled back.
func (m *Manager) UpdateServer(v config.ServerConfig) error {
	m.mu.Lock()
	m.doc.Server = &v
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) UpdateLogging(v config.Logging) error {
	m.mu.Lock()
	m.doc.Logging = &v
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) UpdateHTTP(v config.HTTP) error {
	m.mu.Lock()
	m.doc.HTTP = &v
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) UpdatePerformance(v config.Performance) error {
	m.mu.Lock()
	m.doc.Performance = &v
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) UpdateRoute(v config.Route) error {
	m.mu.Lock()
	m.doc.Route = &v
	m.mu.Unlock()
	return m.save()
}

func (m *Manager) UpdateVirtualHosts(v []config.VirtualHost) error {
	m.mu.Lock()
	m.doc.VirtualHost = append([]config.VirtualHost(nil), v...)
	m.mu.Unlock()
	return m.save()
}

// save serializes the current document and writes it atomically
// (write-to-temp, then rename), matching the Rust original's
// toml::to_string_pretty + fs::write pairing but replacing the file by rename
// rather than truncating it in place. Neither file is fsync'd.
func (m *Manager) save() error {
	if !m.enabled {
		return nil
	}

	m.mu.RLock()
	doc := m.doc
	m.mu.RUnlock()

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("overlay: serializing state: %w", err)
	}

	tmp := m.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("overlay: writing temp state file: %w", err)
	}
	if err := os.Rename(tmp, m.statePath); err != nil {
		return fmt.Errorf("overlay: renaming state file: %w", err)
	}
	return nil
}

// Clear resets the overlay document to empty and deletes state.toml. The
// in-memory resource store is untouched — callers must subsequently apply
// desired values through the discovery API to revert (spec.md §4.2).
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.doc = Document{}
	m.mu.Unlock()

	if !m.enabled {
		return nil
	}
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("overlay: removing state file: %w", err)
	}
	return nil
}
