package auth

import "strings"

// Chain enumerates the credential fallback order for one server. It is
// a pure function of its fields: slot 0 is the current-mode derivation,
// slot 1 the legacy-mode derivation against the server's own host, and
// slots 2+ alternate current/legacy derivations against the host with
// the new-domain marker replaced by each configured legacy domain.
type Chain struct {
	Name   string
	Host   string
	Secret string

	LegacyEnabled bool
	NewDomain     string
	LegacyDomains []string
}

// Credential returns the credential for a slot, or ok=false when the
// slot is ineligible for this host.
func (c *Chain) Credential(slot int) (string, bool) {
	switch {
	case slot == 0:
		return DerivePassword(c.Name, c.Host, c.Secret, ModeCurrent), true

	case !c.LegacyEnabled:
		return "", false

	case slot == 1:
		// Legacy truncation on a host with two or fewer dot segments
		// derives the same credential as slot 0.
		if dotSegments(c.Host) <= 2 {
			return "", false
		}
		return DerivePassword(c.Name, c.Host, c.Secret, ModeLegacy), true

	default:
		if c.NewDomain == "" || !strings.Contains(c.Host, c.NewDomain) {
			return "", false
		}
		i := (slot - 2) / 2
		if i >= len(c.LegacyDomains) {
			return "", false
		}
		host := strings.Replace(c.Host, c.NewDomain, c.LegacyDomains[i], 1)
		mode := ModeCurrent
		if slot%2 == 1 {
			mode = ModeLegacy
		}
		return DerivePassword(c.Name, host, c.Secret, mode), true
	}
}

// Next returns the first eligible slot after the given one, so a caller
// retrying never repeats a previously-tried credential. Slots whose
// derivation collides with an earlier slot are skipped: legacy
// truncation keeps only the first two dot segments, so every
// domain-substituted host sharing those segments derives the same
// legacy credential. ok=false means the chain is exhausted.
func (c *Chain) Next(after int) (cred string, slot int, ok bool) {
	last := 1 + 2*len(c.LegacyDomains)
	seen := make(map[string]bool)
	for s := 0; s <= after && s <= last; s++ {
		if cred, ok := c.Credential(s); ok {
			seen[cred] = true
		}
	}
	for s := after + 1; s <= last; s++ {
		cred, ok := c.Credential(s)
		if !ok || seen[cred] {
			continue
		}
		return cred, s, true
	}
	return "", 0, false
}
