// Package client contains the HTTP client the gophauth CLI uses to talk to
// the account API.
//
// # Overview
//
// The Client interface is the transport-agnostic contract: registration,
// login and session renewal, the account endpoints and a liveness Ping.
// HTTPClient implements it over net/http. It keeps the session and CSRF
// cookies in a cookie jar, sends the session token as "Authorization: JWT"
// and echoes the readable x_csft cookie in the X-CSRF-TOKEN header on
// protected calls.
//
// # Error Handling
//
// Non-2xx responses are mapped onto sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden,
// ErrConflict, ErrNotFound, ErrInvalidInput and ErrServer. The server's
// message is appended to the wrapped error.
package client
