package transaction

import "strings"

// NormalizeTags trims tags, drops empties and commas (the storage separator)
// and removes case-insensitive duplicates while keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// JoinTags encodes tags for the comma-separated tags column.
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// SplitTags decodes the tags column.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
