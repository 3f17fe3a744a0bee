package api

import "net/url"

// AllowedOriginHosts are the browser origin hosts accepted for CORS and
// WebSocket upgrades, on any port.
var AllowedOriginHosts = []string{"localhost", "127.0.0.1", "::1"}

// IsAllowedOrigin reports whether a browser origin may talk to the API.
func IsAllowedOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	for _, allowed := range AllowedOriginHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
