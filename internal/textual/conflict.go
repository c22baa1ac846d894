package textual

import "strings"

// MergeConflict is one bracketed conflict region extracted from merged
// text. Base is empty unless the region was emitted with show-base.
type MergeConflict struct {
	Left  string
	Base  string
	Right string
}

// HasConflict reports whether s contains at least one conflict region.
func HasConflict(s string) bool {
	return strings.Contains(s, MarkerMine)
}

// CountConflicts returns the number of conflict regions in s.
func CountConflicts(s string) int {
	return strings.Count(s, MarkerMine)
}

// ExtractConflicts parses every conflict region in s, in order. Lines
// outside conflict regions are ignored. Malformed trailing regions
// (unclosed markers) are dropped.
func ExtractConflicts(s string) []MergeConflict {
	var conflicts []MergeConflict

	lines := strings.Split(s, "\n")
	const (
		outside = iota
		inLeft
		inBase
		inRight
	)
	state := outside
	var left, base, right []string

	for _, line := range lines {
		marker := strings.TrimSpace(line)
		switch {
		case state == outside && strings.HasPrefix(marker, MarkerMine):
			state = inLeft
			left, base, right = nil, nil, nil
		case state == inLeft && strings.HasPrefix(marker, MarkerBase):
			state = inBase
		case (state == inLeft || state == inBase) && marker == MarkerSeparator:
			state = inRight
		case state == inRight && strings.HasPrefix(marker, MarkerYours):
			conflicts = append(conflicts, MergeConflict{
				Left:  strings.Join(left, "\n"),
				Base:  strings.Join(base, "\n"),
				Right: strings.Join(right, "\n"),
			})
			state = outside
		default:
			switch state {
			case inLeft:
				left = append(left, line)
			case inBase:
				base = append(base, line)
			case inRight:
				right = append(right, line)
			}
		}
	}

	return conflicts
}

// FormatConflict renders one conflict region. Empty contributions still
// get their section so the marker layout stays well formed.
func FormatConflict(left, base, right string, showBase bool) string {
	var out []string
	out = append(out, MarkerMine)
	if left != "" {
		out = append(out, splitLines(left)...)
	}
	if showBase {
		out = append(out, MarkerBase)
		if base != "" {
			out = append(out, splitLines(base)...)
		}
	}
	out = append(out, MarkerSeparator)
	if right != "" {
		out = append(out, splitLines(right)...)
	}
	out = append(out, MarkerYours)
	return strings.Join(out, "\n") + "\n"
}

// CompareAndMerge is the lightweight three-way merge used for scalar
// fragments such as comment prefixes: the changed side wins, identical
// changes collapse, and diverging changes resolve left-biased.
func CompareAndMerge(left, base, right string) string {
	lt := strings.TrimSpace(left)
	bt := strings.TrimSpace(base)
	rt := strings.TrimSpace(right)
	switch {
	case lt == bt:
		return right
	case rt == bt:
		return left
	case lt == rt:
		return left
	default:
		return left
	}
}
