package client

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenSource adapts the client's store and refresh coordinator to
// oauth2.TokenSource, for callers composing with the golang.org/x/oauth2
// ecosystem. The stored token is returned while it is still live; an absent
// or expiring token goes through the shared single-flight refresh.
type TokenSource struct {
	c *Client
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// TokenSource returns an oauth2.TokenSource view over the client.
func (c *Client) TokenSource() oauth2.TokenSource {
	return &TokenSource{c: c}
}

// Token implements oauth2.TokenSource. The interface carries no context, so
// the refresh call runs under context.Background.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	if record := ts.c.store.Read(); record != nil && record.AccessToken != "" {
		expiry, ok := record.TokenExpiry()
		if !ok || time.Until(expiry) > ts.c.refreshLead {
			token := &oauth2.Token{AccessToken: record.AccessToken, TokenType: "Bearer"}
			if ok {
				token.Expiry = expiry
			}
			return token, nil
		}
	}

	token, err := ts.c.coordinator.Token(context.Background())
	if err != nil {
		return nil, &RefreshFailedError{Err: err}
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
