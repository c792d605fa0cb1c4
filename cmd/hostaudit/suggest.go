package main

import (
	"cmp"
	"slices"
)

// maxSuggestions caps the "Did you mean" list.
const maxSuggestions = 3

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	if la < lb {
		a, b = b, a
		la, lb = lb, la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// suggestIDs returns the known check IDs closest to input by edit distance,
// nearest first. Exact matches and IDs further than half the input length
// (at least 3) are left out.
func suggestIDs(input string, known []string) []string {
	type candidate struct {
		id   string
		dist int
	}

	maxDist := max(len(input)/2, 3)

	var candidates []candidate
	for _, id := range known {
		if d := levenshtein(input, id); d > 0 && d <= maxDist {
			candidates = append(candidates, candidate{id: id, dist: d})
		}
	}

	slices.SortFunc(candidates, func(x, y candidate) int {
		return cmp.Or(cmp.Compare(x.dist, y.dist), cmp.Compare(x.id, y.id))
	})

	out := make([]string, 0, maxSuggestions)
	for _, c := range candidates[:min(len(candidates), maxSuggestions)] {
		out = append(out, c.id)
	}
	return out
}
