package testutil

import (
	"net/http"
	"time"

	id "mandate/pkg/domain"
	"mandate/pkg/requestcontext"
)

// WithActor stamps the request context the way the auth middleware would for
// an authenticated caller. Invalid IDs are silently ignored so table-driven
// tests can pass junk.
func WithActor(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
}

// WithAdmin marks the request as coming from an administrator.
func WithAdmin(req *http.Request, userID string) *http.Request {
	req = WithActor(req, userID)
	return req.WithContext(requestcontext.WithAdmin(req.Context(), true))
}

// WithClock pins the request clock, so handlers that stamp timestamps
// produce deterministic output.
func WithClock(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
