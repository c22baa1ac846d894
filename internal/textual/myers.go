package textual

import "strings"

// Line diffing for the three-way driver. The driver needs, for every base
// line, the index of the matching line in the derived version (or -1).
// That alignment is derived from a Myers shortest-edit-script run over
// the two line slices.

// splitLines splits s into lines without a trailing empty element. The
// empty string yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// normalizeLine returns the comparison form of a line. With ignoreWhitespace
// all whitespace is removed, so lines differing only in spacing compare
// equal.
func normalizeLine(line string, ignoreWhitespace bool) string {
	if !ignoreWhitespace {
		return line
	}
	return strings.Join(strings.Fields(line), "")
}

func normalizeLines(lines []string, ignoreWhitespace bool) []string {
	if !ignoreWhitespace {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = normalizeLine(l, true)
	}
	return out
}

// align returns a slice the length of a where align[i] is the index in b
// matching a[i], or -1 when a[i] has no counterpart. Matches are strictly
// increasing in b.
func align(a, b []string) []int {
	out := make([]int, len(a))
	for i := range out {
		out[i] = -1
	}
	for _, m := range myersMatches(a, b) {
		out[m[0]] = m[1]
	}
	return out
}

// myersMatches runs the greedy O(ND) shortest-edit-script algorithm and
// returns the matched index pairs (i in a, j in b) in increasing order.
func myersMatches(a, b []string) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	max := n + m
	// v[k+max] holds the furthest x on diagonal k. A copy per D round is
	// kept for backtracking.
	v := make([]int, 2*max+2)
	var trace [][]int

outer:
	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1+max] < v[k+1+max]) {
				x = v[k+1+max] // insertion: move down
			} else {
				x = v[k-1+max] + 1 // deletion: move right
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[k+max] = x
			if x >= n && y >= m {
				break outer
			}
		}
	}

	// Backtrack from (n, m) collecting diagonal moves as matches.
	var matches [][2]int
	x, y := n, m
	for d := len(trace) - 1; d > 0; d-- {
		vPrev := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && vPrev[k-1+max] < vPrev[k+1+max]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		// Diagonal run after the edit step.
		for x > prevX && y > prevY {
			x--
			y--
			matches = append(matches, [2]int{x, y})
		}
		if d > 0 {
			x, y = prevX, prevY
		}
	}
	// Diagonal run before the first edit.
	for x > 0 && y > 0 {
		x--
		y--
		matches = append(matches, [2]int{x, y})
	}

	// Reverse into increasing order.
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches
}
