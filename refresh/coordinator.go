package refresh

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PhamBaBac/kanban-shopping-client/session"
)

// Func performs the network call that exchanges the refresh credential for a
// new access token. Declared as a function type so the coordinator stays
// decoupled from the transport and no import cycle forms with the client.
type Func func(ctx context.Context) (string, error)

type result struct {
	token string
	err   error
}

// Coordinator guarantees at most one in-flight call to the refresh endpoint
// regardless of how many requests fail with an auth error at the same time.
// The first caller performs the network refresh; every caller arriving while
// it is in flight is queued and receives the shared outcome. Refresh tokens
// are typically single-use, so collapsing the burst into one call is the
// central correctness property here, not an optimisation.
//
// On success the store's access token is patched once, on failure the store
// is cleared once — both before any waiter can observe the outcome, so no
// queued retry ever reads a stale token.
type Coordinator struct {
	refresh Func
	store   session.Store
	log     zerolog.Logger

	lock       sync.Mutex
	refreshing bool
	waiters    []chan result
}

// CoordinatorOption modifies a Coordinator at construction time.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger used for refresh lifecycle events.
func WithLogger(logger zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = logger
	}
}

// NewCoordinator creates a Coordinator with required dependencies.
func NewCoordinator(refresh Func, store session.Store, options ...CoordinatorOption) (*Coordinator, error) {
	if refresh == nil {
		return nil, errors.New("[NewCoordinator] refresh func is required")
	}
	if store == nil {
		return nil, errors.New("[NewCoordinator] store is required")
	}

	coordinator := &Coordinator{
		refresh: refresh,
		store:   store,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(coordinator)
	}
	return coordinator, nil
}

// Token returns a freshly minted access token, never a stale one. Concurrent
// callers share a single refresh call and all receive its result. A caller
// whose context is cancelled stops waiting, but its queue entry is still
// settled exactly once (the channel is buffered, so the drain never blocks
// on a departed waiter).
func (c *Coordinator) Token(ctx context.Context) (string, error) {
	c.lock.Lock()
	if c.refreshing {
		waiter := make(chan result, 1)
		c.waiters = append(c.waiters, waiter)
		c.lock.Unlock()

		select {
		case res := <-waiter:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.lock.Unlock()

	c.log.Debug().Msg("refreshing access token")
	token, err := c.refresh(ctx)

	// Settle: store mutation, state reset, and waiter detachment happen under
	// the lock so no second refresh can interleave between them.
	c.lock.Lock()
	if err != nil {
		c.log.Err(err).Msg("token refresh failed, clearing session")
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Err(clearErr).Msg("failed to clear session after refresh failure")
		}
	} else if patchErr := c.store.PatchAccessToken(token); patchErr != nil {
		c.log.Err(patchErr).Msg("failed to persist refreshed access token")
	}
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.lock.Unlock()

	for _, waiter := range waiters {
		waiter <- result{token: token, err: err}
	}
	return token, err
}
