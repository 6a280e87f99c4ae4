package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// AllowContentType rejects requests carrying a body whose Content-Type is
// not one of contentTypes with 415 and a JSON error payload.
// Requests without a body pass through.
func AllowContentType(contentTypes ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(contentTypes))
	for _, ct := range contentTypes {
		allowed[strings.TrimSpace(strings.ToLower(ct))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
			if _, ok := allowed[strings.ToLower(strings.TrimSpace(mediaType))]; ok {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnsupportedMediaType)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "unsupported media type, expected " + strings.Join(contentTypes, " or "),
			})
		})
	}
}
