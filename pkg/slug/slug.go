// Package slug converts human-entered team display names into the
// URL-safe identifiers the forge uses to address teams.
package slug

import "strings"

// Make converts a display name into a team slug: the name is lower-cased
// and every run of dots and whitespace collapses to a single hyphen.
// The conversion is total; it never fails.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '.' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('-')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
