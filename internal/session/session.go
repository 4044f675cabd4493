// Package session holds the console's application context: the bearer token,
// the logged-in username and the UI theme, persisted between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Session is the persisted state
type Session struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Theme    Theme  `json:"theme"`
}

type Store interface {
	Load() (Session, error)
	Save(Session) error
}

// FileStore keeps the session as a JSON file readable only by its owner
type FileStore struct {
	Path string
}

func (f FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{Theme: ThemeLight}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session %s: %w", f.Path, err)
	}
	return s, nil
}

func (f FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session for the life of the process
type MemoryStore struct {
	mu sync.Mutex
	s  Session
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

// Manager is the live session, passed explicitly to the API client and the workflows
type Manager struct {
	mu    sync.RWMutex
	store Store
	state Session
}

// Open loads the persisted session
func Open(store Store) (*Manager, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if state.Theme != ThemeDark {
		state.Theme = ThemeLight
	}
	return &Manager{store: store, state: state}, nil
}

func (m *Manager) Login(token, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Token = token
	m.state.Username = username
	return m.store.Save(m.state)
}

// Logout clears the token; the theme survives
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Token = ""
	m.state.Username = ""
	return m.store.Save(m.state)
}

func (m *Manager) ToggleTheme() (Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Theme == ThemeDark {
		m.state.Theme = ThemeLight
	} else {
		m.state.Theme = ThemeDark
	}
	return m.state.Theme, m.store.Save(m.state)
}

// Token implements waterlog.TokenSource
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Username
}

func (m *Manager) Theme() Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Theme
}

// RequireLogin fails with ErrNotLoggedIn when there is no token
func (m *Manager) RequireLogin() error {
	if m.Token() == "" {
		return ErrNotLoggedIn
	}
	return nil
}
