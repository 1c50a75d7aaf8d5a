// Package identity canonicalizes WhatsApp user identifiers.
//
// Every component keys per-user state by the same canonical form: the bare
// phone number with a leading "+", no transport prefixes and no JID server
// suffix. Identities are normalized once at the boundary and never mutated
// afterwards.
package identity

import "strings"

// Normalize converts a raw sender identifier into canonical form.
// Accepts values like "whatsapp:+919876543210", "919876543210@s.whatsapp.net"
// or "919876543210" and returns "+919876543210". An empty input stays empty.
func Normalize(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	v = strings.TrimPrefix(v, "whatsapp:")
	if idx := strings.IndexByte(v, '@'); idx >= 0 {
		v = v[:idx]
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "+") {
		v = "+" + v
	}
	return v
}

// Bare returns the canonical identity without the leading "+", the form
// WhatsApp JIDs use for the user part.
func Bare(id string) string {
	return strings.TrimPrefix(Normalize(id), "+")
}
