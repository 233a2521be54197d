// Package security guards file names built from session data.
package security

import "strings"

// maxNameLen bounds a sanitized name.
const maxNameLen = 64

// SanitizeFilename makes a single path element from an arbitrary string such
// as a driver code read from a CSV file. ASCII letters, digits, dot,
// underscore and dash are kept; every other run of characters becomes one
// underscore. Leading and trailing dots and underscores are trimmed so the
// result can never be "." or "..". An empty result is "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxNameLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
