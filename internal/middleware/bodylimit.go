package middleware

import "net/http"

// MaxBodySize returns a middleware that caps the request body size.
// Contact avatars travel as data URIs, so the limit is generous; anything
// beyond it fails the JSON decode downstream with a 400.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
