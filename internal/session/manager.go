package session

import (
	"fmt"
	"sync"

	"partydeck/internal/game"
)

// Manager owns the controller link lifecycle. At most one controller
// exists at a time regardless of how many presenter instances exist:
// opening a controller for a new folder closes the previous link before
// establishing the new one.
type Manager struct {
	hub    *Hub
	store  game.ContentStore
	logger game.Logger

	mu      sync.Mutex
	current *Controller
}

// NewManager creates a manager over the given hub and store.
func NewManager(hub *Hub, store game.ContentStore, logger game.Logger) *Manager {
	if logger == nil {
		logger = game.NewNopLogger()
	}
	return &Manager{hub: hub, store: store, logger: logger}
}

// OpenController opens the controller for a folder, replacing any
// controller already open.
func (m *Manager) OpenController(folderID string, kind game.Kind) (*Controller, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folder id is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind: %s", kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
		m.logger.Info("controller replaced", "folder", m.current.FolderID())
	}

	c := newController(m.hub, m.store, m.logger, folderID, kind)
	m.current = c
	m.logger.Info("controller opened", "folder", folderID, "kind", string(kind))
	return c, nil
}

// CloseController closes the open controller, if any.
func (m *Manager) CloseController() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	m.current.Close()
	m.logger.Info("controller closed", "folder", m.current.FolderID())
	m.current = nil
}

// Controller returns the open controller, or nil.
func (m *Manager) Controller() *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
