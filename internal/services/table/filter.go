package table

import "strings"

// Filter keeps the items where any of the texts returned by fields contains
// query, ignoring case. An empty query keeps everything.
func Filter[T any](items []T, query string, fields func(item T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if q == "" || matches(fields(item), q) {
			out = append(out, item)
		}
	}
	return out
}

func matches(texts []string, q string) bool {
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
