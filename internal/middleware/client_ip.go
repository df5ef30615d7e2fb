package middleware

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared fallback identifier for connections whose
// address cannot be resolved. All such callers share one quota bucket.
const UnknownClient = "unknown"

// ClientIP resolves the rate-limit key for an inbound request.
// Precedence: first X-Forwarded-For entry, then X-Real-IP, then the
// transport remote address with its port stripped, then UnknownClient.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return UnknownClient
}
