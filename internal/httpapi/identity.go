package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// resolveIdentity returns the caller identity used for admission: the
// first entry of X-Forwarded-For, else X-Real-IP, else the connection
// peer address. Trusting the forwarded headers requires a trusted
// fronting proxy; operators without one should not set them.
func resolveIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
