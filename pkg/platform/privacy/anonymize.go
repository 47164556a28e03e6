// Package privacy holds deterministic PII masking helpers shared by the
// erasure service and by log/audit call sites that must not leak raw values.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
	"strings"
)

// Fixed replacement markers. They are valid values for their field so rows stay
// well formed after erasure.
const (
	DeletedEmail = "deleted@site.invalid"
	DeletedURL   = "https://site.invalid"
	ZeroIPv4     = "0.0.0.0"
	ZeroIPv6     = "::"
)

var (
	ipv4Mask = 24
	ipv6Mask = 48
)

// AnonymizeIP truncates an address to its network prefix: the last octet of an
// IPv4 address and everything past the first 48 bits of an IPv6 address are
// zeroed. Unparseable input collapses to ZeroIPv4.
func AnonymizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ZeroIPv4
	}
	// strip a zone or bracketed form before parsing
	ip = strings.TrimSuffix(strings.TrimPrefix(ip, "["), "]")
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		if strings.Contains(ip, ":") {
			return ZeroIPv6
		}
		return ZeroIPv4
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	bits := ipv6Mask
	if addr.Is4() {
		bits = ipv4Mask
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return ZeroIPv4
	}
	return prefix.Addr().String()
}

// HashEmail returns the hex SHA-256 of the normalised address. Used where an
// identity must be correlated (audit trails) without storing the address.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
