package article

import (
	"regexp"
	"strings"
)

// AuthorName assembles a display name from PubMed name parts.
// Empty parts are dropped; a single remaining part is returned unchanged,
// otherwise the given-name equivalent precedes the family-name equivalent.
// With no given name the initials take its place.
func AuthorName(family, given, initials string) string {
	var parts []string
	for _, p := range []string{family, given, initials} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[1] + " " + parts[0]
	}
}

// emailPattern is intentionally loose: affiliation text is noisy. The local
// part stops at any Unicode space, including no-break and thin spaces.
var emailPattern = regexp.MustCompile(`([^\s\p{Z}]+?@.+)\.`)

// FindEmail returns the first email-like substring of text, or "".
func FindEmail(text string) string {
	m := emailPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// AuthorMail formats the "Name:email" entry recorded for an author.
func AuthorMail(name, email string) string {
	return name + ":" + email
}
