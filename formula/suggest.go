// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"sort"
	"strings"
)

// levenshtein computes the classic edit distance between a and b. No
// library in the retrieval pack provides fuzzy string matching, so this
// is a small self-contained implementation (justified in DESIGN.md).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minOf3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(rb)]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// suggest returns up to max candidate names within maxDistance edits of
// name, closest first, per §4.7's "unknown function names yield
// suggestions (distance <= 3, up to three suggestions)".
func suggest(name string, candidates []string, maxDistance, max int) []string {
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	upper := strings.ToUpper(name)
	for _, c := range candidates {
		d := levenshtein(upper, c)
		if d <= maxDistance {
			matches = append(matches, scored{name: c, dist: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > max {
		matches = matches[:max]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
