package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/PhamBaBac/kanban-shopping-client/client"
	"github.com/PhamBaBac/kanban-shopping-client/session"
)

// Auth wraps the backend's authentication endpoints and owns writing the
// resulting AuthRecord to the store.
type Auth struct {
	client *client.Client
	store  session.Store
}

func NewAuth(c *client.Client, store session.Store) *Auth {
	return &Auth{client: c, store: store}
}

// LoginResult is the authenticate response. When MFAEnabled is set the login
// is not complete until VerifyMFA succeeds.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	MFAEnabled  bool   `json:"mfaEnabled"`
}

// Profile is the /users/me payload.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Avatar     string `json:"avatar"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

// Authenticate exchanges credentials for an access token. Without MFA the
// session record is persisted immediately; with MFA the caller must follow
// up with VerifyMFA.
func (a *Auth) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	result, err := client.Unwrap[LoginResult](ctx, a.client, http.MethodPost, client.AuthenticatePath, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Auth.Authenticate]")
	}
	if result.MFAEnabled {
		return &result, nil
	}
	if err := a.completeLogin(ctx, result.AccessToken, result.MFAEnabled); err != nil {
		return nil, errors.Wrap(err, "[Auth.Authenticate]")
	}
	return &result, nil
}

// VerifyMFA completes an MFA-gated login with the one-time code.
func (a *Auth) VerifyMFA(ctx context.Context, code string) error {
	result, err := client.Unwrap[LoginResult](ctx, a.client, http.MethodPost, "/auth/verify-mfa", map[string]string{"code": code})
	if err != nil {
		return errors.Wrap(err, "[Auth.VerifyMFA]")
	}
	if err := a.completeLogin(ctx, result.AccessToken, true); err != nil {
		return errors.Wrap(err, "[Auth.VerifyMFA]")
	}
	return nil
}

// Me fetches the authenticated user's profile.
func (a *Auth) Me(ctx context.Context) (*Profile, error) {
	profile, err := client.Unwrap[Profile](ctx, a.client, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Auth.Me]")
	}
	return &profile, nil
}

// Logout clears the local session. The server call is best effort: a dead
// backend must not leave the client logged in.
func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.client.Do(ctx, http.MethodPost, "/auth/logout", nil)
	if clearErr := a.store.Clear(); clearErr != nil {
		return errors.Wrap(clearErr, "[Auth.Logout] store.Clear")
	}
	if err != nil && !errors.Is(err, client.ErrEmptyResponse) {
		return errors.Wrap(err, "[Auth.Logout]")
	}
	return nil
}

// completeLogin persists the token first so the profile fetch is
// authenticated, then fills in the full record.
func (a *Auth) completeLogin(ctx context.Context, accessToken string, mfaEnabled bool) error {
	if err := a.store.Write(&session.AuthRecord{AccessToken: accessToken, MFAEnabled: mfaEnabled}); err != nil {
		return errors.Wrap(err, "store.Write token")
	}
	profile, err := a.Me(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch profile")
	}
	record := &session.AuthRecord{
		AccessToken: accessToken,
		UserID:      profile.ID,
		Email:       profile.Email,
		MFAEnabled:  mfaEnabled,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Avatar:      profile.Avatar,
	}
	if err := a.store.Write(record); err != nil {
		return errors.Wrap(err, "store.Write record")
	}
	return nil
}
