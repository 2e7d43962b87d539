// Package tenant resolves and propagates per-request store identity.
package tenant

import (
	"net/netip"
	"strings"
)

// SubdomainFromHost extracts the tenant subdomain from a raw Host header.
// It returns "" when the host maps to the apex/marketing site:
// localhost, loopback names, literal IPv4 addresses, bare two-label
// domains, and the www alias all resolve to no tenant.
//
// The function is pure and performs no I/O.
func SubdomainFromHost(host string) string {
	if host == "" {
		return ""
	}

	// Strip a trailing port segment if present.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if host == "" || host == "localhost" {
		return ""
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		_ = addr // any literal IP address is the apex
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}

	label := parts[0]
	if label == "" || label == "www" {
		return ""
	}
	return label
}
