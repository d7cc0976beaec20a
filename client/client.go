package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PhamBaBac/kanban-shopping-client/refresh"
	"github.com/PhamBaBac/kanban-shopping-client/session"
)

// Backend auth endpoints. A failure on either must never trigger a
// refresh-and-retry: retrying a failed login or a failed refresh with
// "refresh the token" would recurse.
const (
	AuthenticatePath = "/auth/authenticate"
	RefreshTokenPath = "/auth/refresh-token"
)

const defaultTimeout = 30 * time.Second

// Client is the single entry point to the storefront backend. It attaches
// the bearer token before every request, unwraps the {data: T} response
// envelope, and recovers exactly once from an expired access token by
// coordinating a single-flight refresh and resending the original request.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	store       session.Store
	coordinator *refresh.Coordinator
	refreshFn   refresh.Func
	refreshLead time.Duration
	log         zerolog.Logger
}

// Option modifies a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached when the given client has none, since the default refresher
// transports the refresh token via cookie.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for retry and refresh events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithRefreshLead enables proactive refresh: when the current access token
// expires within lead, the client refreshes before sending instead of
// waiting for the 401. The 401-driven recovery path is unchanged.
func WithRefreshLead(lead time.Duration) Option {
	return func(c *Client) {
		c.refreshLead = lead
	}
}

// WithRefreshFunc replaces the default cookie-based refresher, for backends
// that expect the refresh token as an explicit parameter.
func WithRefreshFunc(fn refresh.Func) Option {
	return func(c *Client) {
		c.refreshFn = fn
	}
}

// New creates a Client with required dependencies.
func New(baseURL string, store session.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[client.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[client.New] store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "[client.New] cookiejar.New")
		}
		c.httpClient.Jar = jar
	}
	if c.refreshFn == nil {
		c.refreshFn = c.refreshAccessToken
	}

	coordinator, err := refresh.NewCoordinator(c.refreshFn, store, refresh.WithLogger(c.log))
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] refresh.NewCoordinator")
	}
	c.coordinator = coordinator
	return c, nil
}

// RequestOption modifies a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers http.Header
}

// WithHeader merges an extra header over the request defaults.
func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.headers.Set(key, value)
	}
}

// attempt is the transient per-call state. The retried flag is sticky: a
// request is resent at most once, so a second 401 on the resend rejects
// instead of looping.
type attempt struct {
	method  string
	url     string
	body    []byte
	headers http.Header
	token   string // set after a refresh, overrides the stored token
	retried bool
}

// Do sends a request and returns the unwrapped payload of the {data: T}
// envelope. GET bodies are encoded as query parameters; other methods send a
// JSON body, with an explicit null when the caller passed none (the backend
// requires the body key to be present on non-GET verbs).
//
// Failures are tagged: *DomainError for application errors, *TransportError
// when no usable response exists, *RefreshFailedError when 401-recovery
// failed (the session is cleared by then), ErrEmptyResponse for a 2xx
// envelope without a data key.
func (c *Client) Do(ctx context.Context, method, path string, body any, options ...RequestOption) (json.RawMessage, error) {
	reqOptions := requestOptions{headers: http.Header{}}
	for _, opt := range options {
		opt(&reqOptions)
	}

	method = strings.ToUpper(method)
	att := &attempt{
		method:  method,
		headers: reqOptions.headers,
	}

	target := c.baseURL + path
	if method == http.MethodGet {
		query, err := queryParams(body)
		if err != nil {
			return nil, &TransportError{Err: errors.Wrap(err, "[Client.Do] encode query")}
		}
		if query != "" {
			target += "?" + query
		}
	} else {
		payload, err := json.Marshal(body) // Marshal(nil) yields the explicit null body
		if err != nil {
			return nil, &TransportError{Err: errors.Wrap(err, "[Client.Do] marshal body")}
		}
		att.body = payload
	}
	att.url = target

	return c.send(ctx, att)
}

func (c *Client) send(ctx context.Context, att *attempt) (json.RawMessage, error) {
	if c.refreshLead > 0 && !att.retried {
		c.maybeRefreshAhead(ctx, att)
	}

	req, err := c.newRequest(ctx, att)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "[Client.send] read body")}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return unwrap(resp.StatusCode, payload)
	}

	if resp.StatusCode == http.StatusUnauthorized && !att.retried && !c.isAuthEndpoint(att.url) {
		att.retried = true
		token, refreshErr := c.coordinator.Token(ctx)
		if refreshErr != nil {
			return nil, &RefreshFailedError{Err: refreshErr}
		}
		c.log.Debug().Str("url", att.url).Msg("resending request with refreshed token")
		att.token = token
		return c.send(ctx, att)
	}

	return nil, domainError(resp.StatusCode, payload)
}

// newRequest rebuilds the outbound request for an attempt. Header injection
// is idempotent: every attempt starts from fresh headers, and Authorization
// is overwritten with the current token, never appended.
func (c *Client) newRequest(ctx context.Context, att *attempt) (*http.Request, error) {
	var body io.Reader
	if att.body != nil {
		body = bytes.NewReader(att.body)
	}
	req, err := http.NewRequestWithContext(ctx, att.method, att.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.newRequest] http.NewRequestWithContext")
	}

	req.Header.Set("Accept", "application/json")
	if att.method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	token := att.token
	if token == "" {
		if record := c.store.Read(); record != nil {
			token = record.AccessToken
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// Extra headers merge over the defaults.
	for key, values := range att.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

// maybeRefreshAhead refreshes proactively when the stored token expires
// within the configured lead. Best effort: on failure the request proceeds
// and the ordinary 401 path decides the outcome.
func (c *Client) maybeRefreshAhead(ctx context.Context, att *attempt) {
	if c.isAuthEndpoint(att.url) {
		return
	}
	record := c.store.Read()
	if record == nil {
		return
	}
	expiry, ok := record.TokenExpiry()
	if !ok || time.Until(expiry) > c.refreshLead {
		return
	}
	token, err := c.coordinator.Token(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("proactive refresh failed")
		return
	}
	att.token = token
}

func (c *Client) isAuthEndpoint(target string) bool {
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.HasSuffix(parsed.Path, AuthenticatePath) || strings.HasSuffix(parsed.Path, RefreshTokenPath)
}

// refreshAccessToken is the default refresher. The refresh token itself
// travels in a cookie held by the client's jar; the call carries no body.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshTokenPath, bytes.NewReader([]byte("null")))
	if err != nil {
		return "", errors.Wrap(err, "[Client.refreshAccessToken] http.NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[Client.refreshAccessToken] http do")
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "[Client.refreshAccessToken] read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domainError(resp.StatusCode, payload)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
		Data        *struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", errors.Wrap(err, "[Client.refreshAccessToken] decode response")
	}
	token := body.AccessToken
	if token == "" && body.Data != nil {
		token = body.Data.AccessToken
	}
	if token == "" {
		return "", errors.New("[Client.refreshAccessToken] response carried no access token")
	}
	return token, nil
}

func unwrap(status int, payload []byte) (json.RawMessage, error) {
	if status == http.StatusNoContent {
		return nil, nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyResponse
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "[Client] malformed success payload")}
	}
	data, ok := env["data"]
	if !ok {
		return nil, ErrEmptyResponse
	}
	return data, nil
}

func domainError(status int, payload []byte) error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && (body.Code != "" || body.Message != "") {
		return &DomainError{Status: status, Code: body.Code, Message: body.Message}
	}
	message := strings.TrimSpace(string(payload))
	if message == "" {
		message = http.StatusText(status)
	}
	return &DomainError{Status: status, Message: message}
}

// queryParams flattens a body value into URL query parameters for GET
// requests. Nested values are not supported; the storefront's list filters
// are flat key/value sets.
func queryParams(body any) (string, error) {
	if body == nil {
		return "", nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return "", errors.New("GET body must flatten to key/value pairs")
	}

	values := url.Values{}
	for key, value := range fields {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}
	return values.Encode(), nil
}

// Unwrap performs a request through c and decodes the unwrapped payload into
// T. A nil payload (204, or {"data": null}) decodes to T's zero value.
func Unwrap[T any](ctx context.Context, c *Client, method, path string, body any, options ...RequestOption) (T, error) {
	var out T
	raw, err := c.Do(ctx, method, path, body, options...)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &TransportError{Err: errors.Wrap(err, "[client.Unwrap] decode payload")}
	}
	return out, nil
}
