// Package normalize centralizes input normalization for identity fields.
// Domain parsing lives here so auto-association never re-implements it.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims a role-id. Role-ids are opaque, case-sensitive tokens; an
// organization-defined "Reviewer" is distinct from "reviewer".
func Role(s string) string {
	return strings.TrimSpace(s)
}

// Domain lowercases and trims an email domain.
func Domain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailDomain extracts the domain part of an email address, lowercased.
// Returns "" if the address has no "@" or an empty domain.
func EmailDomain(email string) string {
	e := Email(email)
	at := strings.LastIndex(e, "@")
	if at < 0 || at == len(e)-1 {
		return ""
	}
	return e[at+1:]
}
