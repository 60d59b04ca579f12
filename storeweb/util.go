package storeweb

import (
	"net/http"
	"strings"
)

func parseDefault[T any](s string, parse func(string) (T, error), def T) T {
	if v, err := parse(s); err == nil {
		return v
	}
	return def
}

// requestExplicitlyAccepts reports whether any of the acceptable media types
// appears in the request's Accept header. A missing or wildcard-only Accept
// header is not an explicit accept.
func requestExplicitlyAccepts(r *http.Request, acceptable ...string) bool {
	for _, mediaType := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType = strings.TrimSpace(mediaType)
		if i := strings.Index(mediaType, ";"); i >= 0 {
			mediaType = strings.TrimSpace(mediaType[:i])
		}
		for _, want := range acceptable {
			if mediaType == want {
				return true
			}
		}
	}
	return false
}
