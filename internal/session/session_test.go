package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTripAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := FileStore{Path: path}

	m, err := Open(store)
	if err != nil {
		t.Fatal(err)
	}
	if m.Theme() != ThemeLight || m.Token() != "" {
		t.Fatalf("unexpected fresh session: %s %q", m.Theme(), m.Token())
	}
	if err := m.RequireLogin(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	if err := m.Login("tok", "admin"); err != nil {
		t.Fatal(err)
	}
	if theme, err := m.ToggleTheme(); err != nil || theme != ThemeDark {
		t.Fatalf("unexpected toggle %s (%v)", theme, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file should be private, got %v", info.Mode().Perm())
	}

	reopened, err := Open(store)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Token() != "tok" || reopened.Username() != "admin" || reopened.Theme() != ThemeDark {
		t.Fatalf("session not restored: %q %q %s", reopened.Token(), reopened.Username(), reopened.Theme())
	}
}

func TestLogoutKeepsTheme(t *testing.T) {
	store := &MemoryStore{}
	m, _ := Open(store)
	m.Login("tok", "admin")
	m.ToggleTheme()

	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}
	saved, _ := store.Load()
	if saved.Token != "" || saved.Username != "" {
		t.Fatalf("token should be cleared: %+v", saved)
	}
	if saved.Theme != ThemeDark {
		t.Fatalf("theme should survive logout: %+v", saved)
	}
	if err := m.RequireLogin(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{not json"), 0o600)

	if _, err := Open(FileStore{Path: path}); err == nil {
		t.Fatal("expected parse error")
	}
}
