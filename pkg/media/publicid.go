package media

import "strings"

// PublicIDFromURL takes the last path segment of a stored object URL and drops
// everything from its first dot.
//
// The rule only holds for URLs this service produced. A query string, a fragment or
// a dotted object name yields a wrong id; callers must not feed it foreign URLs.
func PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	last := parts[len(parts)-1]
	id, _, _ := strings.Cut(last, ".")
	return id
}
