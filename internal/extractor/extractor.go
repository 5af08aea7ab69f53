// Package extractor finds email addresses in arbitrary page text.
package extractor

import "regexp"

var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Extract returns the distinct addresses found in text, in discovery order.
// Duplicates are compared case-sensitively.
func Extract(text string) []string {
	matches := addressPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
