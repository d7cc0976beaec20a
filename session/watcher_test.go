package session_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/PhamBaBac/kanban-shopping-client/session"
)

func TestWatcherReportsAuthDataChanges(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(dir)

	changed := make(chan struct{}, 8)
	watcher, err := session.NewWatcher(dir, zerolog.Nop(), func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, store.Write(testRecord()))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification after Write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(dir)

	changed := make(chan struct{}, 8)
	watcher, err := session.NewWatcher(dir, zerolog.Nop(), func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, store.SetPreference(session.PreferenceThemeMode, "dark"))

	select {
	case <-changed:
		t.Fatal("preference writes must not notify")
	case <-time.After(300 * time.Millisecond):
	}
}
