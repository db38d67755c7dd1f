package middleware

import (
	"net/http"
	"strings"
)

type BodyLimitOverride struct {
	PathPrefix string
	PathSuffix string
	MaxBytes   int64
}

// LimitBodyBytesWithOverrides caps request bodies, with larger caps for
// specific routes (feed file uploads need more room than JSON bodies).
func LimitBodyBytesWithOverrides(defaultMax int64, overrides []BodyLimitOverride) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			maxBytes := defaultMax
			path := r.URL.Path
			apiPath := strings.TrimPrefix(path, "/api")
			for _, override := range overrides {
				if override.MaxBytes <= 0 {
					continue
				}
				if override.PathPrefix != "" &&
					(strings.HasPrefix(path, override.PathPrefix) || strings.HasPrefix(apiPath, override.PathPrefix)) {
					maxBytes = override.MaxBytes
					break
				}
				if override.PathSuffix != "" && strings.HasSuffix(path, override.PathSuffix) {
					maxBytes = override.MaxBytes
					break
				}
			}
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
