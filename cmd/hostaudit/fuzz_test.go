package main

import (
	"testing"
)

// FuzzLevenshtein exercises the edit distance function with random string pairs
// to ensure it never panics and stays a symmetric, bounded distance.
func FuzzLevenshtein(f *testing.F) {
	f.Add("firewall", "firewal")
	f.Add("", "")
	f.Add("abc", "")
	f.Add("", "xyz")
	f.Add("disk_encryption", "disk-encrypt")
	f.Add("a", "a")
	f.Add("kitten", "sitting")

	f.Fuzz(func(t *testing.T, a, b string) {
		d := levenshtein(a, b)
		if d < 0 || d > max(len(a), len(b)) {
			t.Errorf("levenshtein(%q, %q) = %d, want within [0, %d]", a, b, d, max(len(a), len(b)))
		}
		if d2 := levenshtein(b, a); d != d2 {
			t.Errorf("levenshtein(%q, %q) = %d but levenshtein(%q, %q) = %d", a, b, d, b, a, d2)
		}
		if (d == 0) != (a == b) {
			t.Errorf("levenshtein(%q, %q) = %d, zero only for equal strings", a, b, d)
		}
	})
}
