package testutil

import (
	"net/http"
)

// WithAdminToken sets the admin token header used by the override and purge
// endpoints.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set("X-Admin-Token", token)
	return req
}

// WithRequestID sets an explicit request ID so log assertions are stable.
func WithRequestID(req *http.Request, id string) *http.Request {
	req.Header.Set("X-Request-ID", id)
	return req
}
