package clientip

import (
	"net"
	"net/http"
	"strings"
)

// TrustProxy makes RealClientIP honor X-Forwarded-For and X-Real-IP.
// Enable it only when every request passes a proxy that overwrites them.
var TrustProxy bool

// RealClientIP returns the client IP from the request, used as the key
// for rate limiting and in logs.
func RealClientIP(r *http.Request) string {
	if TrustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

func forwardedIP(r *http.Request) string {
	// First hop is the original client.
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(real) != nil {
		return real
	}
	return ""
}
