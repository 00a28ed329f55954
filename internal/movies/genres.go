package movies

import "strings"

// ParseGenres splits a comma-separated genre string, trimming whitespace and
// dropping blanks, preserving input order.
func ParseGenres(raw string) []string {
	var genres []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
