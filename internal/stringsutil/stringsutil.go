package stringsutil

import (
	"sort"
	"strings"
)

// SplitLines splits s into lines, trimming a trailing carriage return from each
// and dropping lines that are blank.
func SplitLines(s string) []string {
	parts := strings.Split(s, "\n")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if strings.TrimSpace(p) != "" {
			result = append(result, p)
		}
	}
	return result
}

// UniqueStrings returns a new slice with duplicates removed, preserving first-seen order.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}

// SortedUnique returns the distinct values in ascending order.
func SortedUnique(values []string) []string {
	unique := UniqueStrings(values)
	sort.Strings(unique)
	return unique
}

// Contains reports whether values holds target.
func Contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
