package storefakes

import (
	"sync"

	"github.com/google/uuid"

	"github.com/PhamBaBac/kanban-shopping-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests. It counts Clear and
// PatchAccessToken calls so tests can assert the exactly-once guarantees.
type FakeStore struct {
	record     *session.AuthRecord
	sessionID  string
	ClearCalls int
	PatchCalls int
	lock       sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Read() *session.AuthRecord {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.record == nil {
		return nil
	}
	copied := *fs.record
	return &copied
}

func (fs *FakeStore) Write(record *session.AuthRecord) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	copied := *record
	fs.record = &copied
	return nil
}

func (fs *FakeStore) PatchAccessToken(token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.PatchCalls++
	if fs.record == nil {
		return nil
	}
	fs.record.AccessToken = token
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.ClearCalls++
	fs.record = nil
	return nil
}

func (fs *FakeStore) SessionID() (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.sessionID == "" {
		fs.sessionID = uuid.New().String()
	}
	return fs.sessionID, nil
}
