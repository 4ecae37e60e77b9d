package services

import "strings"

const MaxTags = 2

// NormalizeTags accepts form values that are either one entry per tag or a single
// comma-joined string. Entries are split on commas, trimmed, empty ones dropped and
// the result cut to MaxTags.
func NormalizeTags(raw []string) []string {
	tags := []string{}
	for _, entry := range raw {
		for _, t := range strings.Split(entry, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			tags = append(tags, t)
			if len(tags) == MaxTags {
				return tags
			}
		}
	}
	return tags
}
