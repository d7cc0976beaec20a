package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PhamBaBac/kanban-shopping-client/session"
)

func testRecord() *session.AuthRecord {
	return &session.AuthRecord{
		AccessToken: "token-1",
		UserID:      "user-1",
		Email:       "john.doe@example.com",
		MFAEnabled:  true,
		FirstName:   "John",
		LastName:    "Doe",
		Avatar:      "https://cdn.example.com/a.png",
	}
}

func TestFileStoreWriteReadClear(t *testing.T) {
	store := session.NewFileStore(t.TempDir())

	require.Nil(t, store.Read())

	record := testRecord()
	require.NoError(t, store.Write(record))
	require.Equal(t, record, store.Read())

	require.NoError(t, store.Clear())
	require.Nil(t, store.Read())

	// Clearing an already-empty store must not fail
	require.NoError(t, store.Clear())
}

func TestFileStoreMalformedDataReadsAsAnonymous(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "authData.json"), []byte("{not json"), 0o600))

	store := session.NewFileStore(dir)
	require.Nil(t, store.Read())
}

func TestFileStoreMissingDirectoryDegrades(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.Nil(t, store.Read())
	require.NoError(t, store.Clear())
}

func TestPatchAccessTokenReplacesOnlyToken(t *testing.T) {
	store := session.NewFileStore(t.TempDir())
	require.NoError(t, store.Write(testRecord()))

	require.NoError(t, store.PatchAccessToken("token-2"))

	record := store.Read()
	require.NotNil(t, record)
	require.Equal(t, "token-2", record.AccessToken)
	require.Equal(t, "john.doe@example.com", record.Email)
	require.True(t, record.MFAEnabled)
}

func TestPatchAccessTokenDoesNotResurrectSession(t *testing.T) {
	store := session.NewFileStore(t.TempDir())

	require.NoError(t, store.PatchAccessToken("token-2"))
	require.Nil(t, store.Read())
}

func TestSessionIDIsStable(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(dir)

	first, err := store.SessionID()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.SessionID()
	require.NoError(t, err)
	require.Equal(t, first, second)

	// A new store over the same directory sees the persisted id
	again, err := session.NewFileStore(dir).SessionID()
	require.NoError(t, err)
	require.Equal(t, first, again)
}

func TestPreferences(t *testing.T) {
	store := session.NewFileStore(t.TempDir())

	require.Empty(t, store.Preference(session.PreferenceThemeMode))
	require.NoError(t, store.SetPreference(session.PreferenceThemeMode, "dark"))
	require.Equal(t, "dark", store.Preference(session.PreferenceThemeMode))

	require.NoError(t, store.SetPreference(session.PreferenceCartID, "cart-9"))
	require.Equal(t, "cart-9", store.Preference(session.PreferenceCartID))
}
