package server

import "net/http"

// Middleware wraps a handler with cross-cutting behavior such as request
// logging or API-key auth.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middleware so that the first one listed
// ends up outermost, seeing the request first.
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}
