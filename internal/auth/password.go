// Package auth derives per-server credentials and drives the login
// fallback state machine.
package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
)

// Mode selects the host-truncation generation used when deriving a
// credential. Legacy mode matches credentials stored by servers that
// registered under the older derivation scheme.
type Mode int

const (
	ModeCurrent Mode = iota
	ModeLegacy
)

// TruncateHost reduces a host string to the form used for derivation:
// the first three "/"-delimited segments, and in legacy mode further
// the first two "."-delimited segments of that result.
func TruncateHost(host string, mode Mode) string {
	parts := strings.SplitN(host, "/", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	host = strings.Join(parts, "/")

	if mode == ModeLegacy {
		dots := strings.SplitN(host, ".", 3)
		if len(dots) > 2 {
			dots = dots[:2]
		}
		host = strings.Join(dots, ".")
	}
	return host
}

// DerivePassword produces the deterministic credential for a claimed
// identity. Identical inputs always yield identical output; the login
// retry protocol depends on this.
func DerivePassword(name, host, secret string, mode Mode) string {
	seed := fmt.Sprintf("%s@%s, secret: %s", name, TruncateHost(host, mode), secret)
	sum := sha512.Sum512([]byte(seed))
	return hex.EncodeToString(sum[:])
}

func dotSegments(host string) int {
	return len(strings.Split(host, "."))
}
