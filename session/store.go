package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store is the sole access point to the persisted session state. Refresh and
// retry logic depend only on this interface so they can be tested against an
// in-memory fake.
type Store interface {
	// Read returns the current AuthRecord, or nil when none exists.
	// Malformed persisted data reads as nil rather than surfacing an error.
	Read() *AuthRecord

	// Write persists the full record, replacing any existing one.
	Write(record *AuthRecord) error

	// PatchAccessToken replaces only the access token of the current record.
	// It is a no-op when no record exists: a refresh must not resurrect a
	// logged-out session.
	PatchAccessToken(token string) error

	// Clear removes the record.
	Clear() error

	// SessionID returns the persisted anonymous session identifier,
	// generating and persisting a new one on first call.
	SessionID() (string, error)
}

// File names mirror the storefront's original client-storage keys.
const (
	authDataFile  = "authData.json"
	sessionIDFile = "sessionId"
)

// Preference keys recognised by FileStore.Preference / SetPreference.
const (
	PreferenceCartID    = "cartId"
	PreferenceThemeMode = "themeMode"
)

var _ Store = (*FileStore)(nil)

// FileStore persists session state as individual files under a directory,
// so sibling processes (and the Watcher) can observe changes.
type FileStore struct {
	dir  string
	lock sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (fs *FileStore) Read() *AuthRecord {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.readLocked()
}

func (fs *FileStore) Write(record *AuthRecord) error {
	if record == nil {
		return errors.New("[FileStore.Write] record is required")
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.writeLocked(record)
}

func (fs *FileStore) PatchAccessToken(token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	record := fs.readLocked()
	if record == nil {
		return nil
	}
	record.AccessToken = token
	return fs.writeLocked(record)
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(filepath.Join(fs.dir, authDataFile)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] os.Remove")
	}
	return nil
}

func (fs *FileStore) SessionID() (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path := filepath.Join(fs.dir, sessionIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := fs.writeFileLocked(sessionIDFile, []byte(id)); err != nil {
		return "", errors.Wrap(err, "[FileStore.SessionID] persist")
	}
	return id, nil
}

// Preference returns the stored value for one of the Preference* keys, or ""
// when unset.
func (fs *FileStore) Preference(name string) string {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetPreference stores a value under one of the Preference* keys.
func (fs *FileStore) SetPreference(name, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := fs.writeFileLocked(name, []byte(value)); err != nil {
		return errors.Wrap(err, "[FileStore.SetPreference] persist")
	}
	return nil
}

func (fs *FileStore) readLocked() *AuthRecord {
	data, err := os.ReadFile(filepath.Join(fs.dir, authDataFile))
	if err != nil {
		return nil
	}
	record := &AuthRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil
	}
	return record
}

func (fs *FileStore) writeLocked(record *AuthRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[FileStore] marshal record")
	}
	if err := fs.writeFileLocked(authDataFile, data); err != nil {
		return errors.Wrap(err, "[FileStore] persist record")
	}
	return nil
}

func (fs *FileStore) writeFileLocked(name string, data []byte) error {
	if err := os.MkdirAll(fs.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(fs.dir, name), data, 0o600)
}
