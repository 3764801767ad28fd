// Package middleware casts HTTP request bodies against a schema before they
// reach a handler.
package middleware

import (
	"context"
	"errors"
	"net/http"

	j "github.com/goccy/go-json"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/source"
)

type ctxKeyDecoded struct{}

// ContextWithDecoded attaches a cast request body to ctx.
func ContextWithDecoded(ctx context.Context, d tarams.Decoded) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded{}, d)
}

// DecodedFromContext retrieves the cast request body stored by Bind.
func DecodedFromContext(ctx context.Context) (tarams.Decoded, bool) {
	d, ok := ctx.Value(ctxKeyDecoded{}).(tarams.Decoded)
	return d, ok
}

// DefaultSourceOptions is the recommended reading policy at HTTP JSON
// boundaries: duplicate keys are errors and nesting is bounded.
func DefaultSourceOptions() source.Options {
	return source.Options{MaxDepth: source.DefaultMaxDepth}
}

// ErrorPayload shapes field errors for JSON responses.
func ErrorPayload(errs tarams.Errors) map[string]any {
	return map[string]any{"errors": errs}
}

// Bind reads the JSON request body, casts it with c and stores the result
// in the request context. Unreadable bodies get 400; field errors get 422
// with ErrorPayload.
func Bind(c *tarams.Canonical, opt source.Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, err := source.JSONWith(r.Body, opt)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			d, err := c.CastWithMeta(r.Context(), in)
			if err != nil {
				if errs, ok := tarams.AsErrors(err); ok {
					writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(errs))
					return
				}
				status := http.StatusBadRequest
				if !errors.Is(err, tarams.ErrInvalidInput) {
					status = http.StatusInternalServerError
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), d)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}
