package world

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Manager keeps loaded maps by ID.
type Manager struct {
	maps  map[string]*Map
	paths map[string]string
}

// NewManager creates an empty map manager.
func NewManager() *Manager {
	return &Manager{
		maps:  make(map[string]*Map),
		paths: make(map[string]string),
	}
}

// LoadMap loads a map file and registers it under its ID.
func (m *Manager) LoadMap(path string) (*Map, error) {
	mp, err := Load(path)
	if err != nil {
		return nil, err
	}
	if prev, ok := m.paths[mp.ID]; ok && prev != path {
		return nil, fmt.Errorf("map id %q defined by both %s and %s", mp.ID, prev, path)
	}
	m.maps[mp.ID] = mp
	m.paths[mp.ID] = path
	return mp, nil
}

// LoadDir loads every *.yaml file in dir.
func (m *Manager) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("listing maps: %w", err)
	}
	for _, f := range files {
		if _, err := m.LoadMap(f); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a map by ID.
func (m *Manager) Get(id string) (*Map, bool) {
	mp, ok := m.maps[id]
	return mp, ok
}

// IDs returns the loaded map IDs in sorted order.
func (m *Manager) IDs() []string {
	ids := make([]string, 0, len(m.maps))
	for id := range m.maps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of loaded maps.
func (m *Manager) Count() int {
	return len(m.maps)
}
