package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/session"
)

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRefreshLeadRefreshesBeforeSending(t *testing.T) {
	f := newFixture(t, client.WithRefreshLead(time.Minute))
	expiring := signedToken(t, time.Now().Add(10*time.Second))
	f.loggedIn(expiring)
	f.handleRefresh(freshToken, http.StatusOK, 0)
	f.handleProtected("/orders", freshToken, `{"data":[]}`)

	_, err := f.client.Do(context.Background(), http.MethodGet, "/orders", nil)
	require.NoError(t, err)

	require.EqualValues(t, 1, f.refreshCalls.Load())
	// Refreshed up front: the endpoint never saw the expiring token
	seen := f.headersSeen("/orders")
	require.Len(t, seen, 1)
	require.Equal(t, []string{"Bearer " + freshToken}, seen[0])
}

func TestTokenSourceReturnsLiveStoredToken(t *testing.T) {
	f := newFixture(t)
	live := signedToken(t, time.Now().Add(time.Hour))
	f.loggedIn(live)

	token, err := f.client.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, live, token.AccessToken)
	require.Equal(t, "Bearer", token.TokenType)
	require.False(t, token.Expiry.IsZero())
	require.Zero(t, f.refreshCalls.Load())
}

func TestTokenSourceRefreshesWhenAnonymous(t *testing.T) {
	f := newFixture(t)
	f.handleRefresh(freshToken, http.StatusOK, 0)

	token, err := f.client.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, freshToken, token.AccessToken)
	require.EqualValues(t, 1, f.refreshCalls.Load())
}

func TestTokenSourceSurfacesRefreshFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(&session.AuthRecord{}))
	f.handleRefresh("", http.StatusUnauthorized, 0)

	_, err := f.client.TokenSource().Token()

	var refreshErr *client.RefreshFailedError
	require.ErrorAs(t, err, &refreshErr)
}
