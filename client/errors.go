package client

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse reports a 2xx response whose envelope carried no data key.
// An explicit empty payload ({"data": []} or {"data": null}) and a 204 No
// Content are successes; only a missing key is classified as this error.
var ErrEmptyResponse = errors.New("request failed: empty response payload")

// DomainError is a non-2xx application response. Code carries the backend's
// application-specific error code so callers can branch on it.
type DomainError struct {
	Status  int
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return "domain error"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// TransportError reports a request that never produced a usable response:
// the call failed before reaching the server, or the response body could not
// be read or decoded.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RefreshFailedError reports that recovery from an expired access token
// failed. The session has already been cleared by the time callers see it;
// the expected handling is a redirect to login.
type RefreshFailedError struct {
	Err error
}

func (e *RefreshFailedError) Error() string {
	if e == nil || e.Err == nil {
		return "token refresh failed"
	}
	return "token refresh failed: " + e.Err.Error()
}

func (e *RefreshFailedError) Unwrap() error {
	return e.Err
}
