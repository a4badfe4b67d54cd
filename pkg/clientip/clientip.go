package clientip

import (
	"net"
	"net/http"
	"strings"
)

var headerPriority = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP address from r, checking proxy headers
// in priority order before falling back to RemoteAddr. It never panics and
// always returns a string, even if no valid IP could be determined.
func GetIP(r *http.Request) string {
	for _, header := range headerPriority {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		if header == "X-Forwarded-For" {
			for _, candidate := range strings.Split(value, ",") {
				if ip := valid(strings.TrimSpace(candidate)); ip != "" {
					return ip
				}
			}
			continue
		}

		if ip := valid(strings.TrimSpace(value)); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := valid(host); ip != "" {
		return ip
	}

	return r.RemoteAddr
}

// valid normalizes and validates a candidate IP string, rejecting the
// unspecified address since it never identifies a real client.
func valid(s string) string {
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
