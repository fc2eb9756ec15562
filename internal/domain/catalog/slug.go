package catalog

import "strings"

// Slugify lowercases the name and collapses runs of non-alphanumerics
// into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
