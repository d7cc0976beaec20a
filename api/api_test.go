package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PhamBaBac/kanban-shopping-client/api"
	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/session"
	"github.com/PhamBaBac/kanban-shopping-client/session/storefakes"
)

type fixture struct {
	store  *storefakes.FakeStore
	mux    *http.ServeMux
	server *httptest.Server
	client *client.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: storefakes.NewFakeStore(),
		mux:   http.NewServeMux(),
	}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)

	apiClient, err := client.New(f.server.URL, f.store)
	require.NoError(t, err)
	f.client = apiClient
	return f
}

func TestAuthenticatePersistsFullRecord(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc(client.AuthenticatePath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"accessToken":"T1","mfaEnabled":false}}`)
	})
	f.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"id":"user-1","email":"john.doe@example.com","firstName":"John","lastName":"Doe","avatar":"a.png"}}`)
	})

	auth := api.NewAuth(f.client, f.store)
	result, err := auth.Authenticate(context.Background(), "john.doe@example.com", "password123")
	require.NoError(t, err)
	require.False(t, result.MFAEnabled)

	record := f.store.Read()
	require.NotNil(t, record)
	require.Equal(t, "T1", record.AccessToken)
	require.Equal(t, "user-1", record.UserID)
	require.Equal(t, "john.doe@example.com", record.Email)
	require.Equal(t, "John", record.FirstName)
}

func TestAuthenticateWithMFADefersRecord(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc(client.AuthenticatePath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"accessToken":"","mfaEnabled":true}}`)
	})
	f.mux.HandleFunc("/auth/verify-mfa", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"accessToken":"T1"}}`)
	})
	f.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"user-1","email":"john.doe@example.com"}}`)
	})

	auth := api.NewAuth(f.client, f.store)
	result, err := auth.Authenticate(context.Background(), "john.doe@example.com", "password123")
	require.NoError(t, err)
	require.True(t, result.MFAEnabled)
	require.Nil(t, f.store.Read(), "no record until MFA completes")

	require.NoError(t, auth.VerifyMFA(context.Background(), "123456"))

	record := f.store.Read()
	require.NotNil(t, record)
	require.Equal(t, "T1", record.AccessToken)
	require.True(t, record.MFAEnabled)
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(&session.AuthRecord{AccessToken: "T1", Email: "john.doe@example.com"}))

	f.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"code":"SERVER_DOWN","message":"boom"}`)
	})

	err := api.NewAuth(f.client, f.store).Logout(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, f.store.ClearCalls)
	require.Nil(t, f.store.Read())
}

func TestCartsAttachSessionIDHeader(t *testing.T) {
	f := newFixture(t)
	sessionID, err := f.store.SessionID()
	require.NoError(t, err)

	f.mux.HandleFunc("/carts", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, sessionID, r.Header.Get("X-Session-Id"))
		fmt.Fprint(w, `{"data":{"id":"cart-1","items":[{"productId":"p1","title":"Shoes","quantity":2,"price":49.5}],"total":99.0}}`)
	})

	cart, err := api.NewCarts(f.client, f.store).Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "cart-1", cart.ID)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Items[0].Quantity)
}

func TestProductsListUsesQueryFilters(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "shoes", r.URL.Query().Get("q"))
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Empty(t, r.URL.Query().Get("categoryId"), "zero fields are omitted")
		fmt.Fprint(w, `{"data":[{"id":"p1","title":"Shoes","price":49.5}]}`)
	})

	products, err := api.NewProducts(f.client).List(context.Background(), api.ProductFilter{
		Query: "shoes",
		Page:  2,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "p1", products[0].ID)
}

func TestReviewsCreate(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"r1","productId":"p1","rating":5,"comment":"great"}}`)
	})

	review, err := api.NewReviews(f.client).Create(context.Background(), "p1", 5, "great")
	require.NoError(t, err)
	require.Equal(t, "r1", review.ID)
	require.Equal(t, "great", review.CommentText())
}
