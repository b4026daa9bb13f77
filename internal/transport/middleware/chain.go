package middleware

import (
	"log/slog"
	"net/http"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws outermost first: Chain(a, b)(h) is a(b(h)).
// Nil entries are skipped.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] == nil {
				continue
			}
			h = mws[i](h)
		}
		return h
	}
}

// Standard is the stack in front of the health endpoints. RequestID runs
// first so the access log and panic log share an id, and Recovery sits inside
// Logger so a recovered panic is logged as a 500.
func Standard(logger *slog.Logger) Middleware {
	return Chain(
		RequestID(),
		Logger(logger),
		Recovery(logger),
	)
}
