package textual

import (
	"io"
	"strings"

	diff3 "github.com/epiclabs-io/diff3"
)

// Diff3 is the conventional line-based three-way merge strategy. The
// default comparator path (exact whitespace, no base in conflicts) is
// served by the diff3 library; the extended modes run the in-house
// region driver below.
type Diff3 struct {
	showBase bool
}

// NewDiff3 creates the strategy. showBase controls whether conflict hunks
// include the base contribution between MINE and YOURS.
func NewDiff3(showBase bool) *Diff3 {
	return &Diff3{showBase: showBase}
}

func (d *Diff3) Merge(left, base, right string, ignoreWhitespace bool) (string, error) {
	if !d.showBase && !ignoreWhitespace {
		return mergeLibrary(left, base, right)
	}
	regions := threeWayRegions(left, base, right, ignoreWhitespace)
	return formatRegions(regions, d.showBase), nil
}

// mergeLibrary delegates to the diff3 library with git-style markers.
func mergeLibrary(left, base, right string) (string, error) {
	res, err := diff3.Merge(
		strings.NewReader(left),
		strings.NewReader(base),
		strings.NewReader(right),
		true, // inject conflict markers
		"MINE",
		"YOURS",
	)
	if err != nil {
		return "", &MergeError{Left: left, Base: base, Right: right, Err: err}
	}
	merged, err := io.ReadAll(res.Result)
	if err != nil {
		return "", &MergeError{Left: left, Base: base, Right: right, Err: err}
	}
	return string(merged), nil
}

// ---------------------------------------------------------------------------
// Region driver
// ---------------------------------------------------------------------------

// region is a contiguous slice of the merge result: either resolved text
// or a conflict carrying the three contributions.
type region struct {
	conflict bool
	text     []string // resolved lines; nil for conflicts

	left, base, right []string // conflict contributions
}

// threeWayRegions aligns left and right against base line-by-line and
// classifies each unstable stretch: take the changed side when only one
// side changed, take left when both made the same change, merge line by
// line when all three versions of the stretch have the same number of
// lines and no line changed differently on both sides, and emit a
// conflict region otherwise.
func threeWayRegions(left, base, right string, ignoreWhitespace bool) []region {
	l := splitLines(left)
	b := splitLines(base)
	r := splitLines(right)

	nl := normalizeLines(l, ignoreWhitespace)
	nb := normalizeLines(b, ignoreWhitespace)
	nr := normalizeLines(r, ignoreWhitespace)

	toLeft := align(nb, nl)
	toRight := align(nb, nr)

	var regions []region
	appendResolved := func(lines []string) {
		if len(lines) == 0 {
			return
		}
		if len(regions) > 0 && !regions[len(regions)-1].conflict {
			last := &regions[len(regions)-1]
			last.text = append(last.text, lines...)
			return
		}
		regions = append(regions, region{text: append([]string(nil), lines...)})
	}

	i, j, k := 0, 0, 0
	for i < len(b) || j < len(l) || k < len(r) {
		if i < len(b) && toLeft[i] == j && toRight[i] == k {
			// Stable line: present in all three.
			appendResolved(l[j : j+1])
			i, j, k = i+1, j+1, k+1
			continue
		}

		// Advance to the next base line matched in both derived versions.
		i2 := i
		for i2 < len(b) && (toLeft[i2] < 0 || toRight[i2] < 0) {
			i2++
		}
		j2, k2 := len(l), len(r)
		if i2 < len(b) {
			j2, k2 = toLeft[i2], toRight[i2]
		}

		leftEq := linesEqual(nb[i:i2], nl[j:j2])
		rightEq := linesEqual(nb[i:i2], nr[k:k2])
		switch {
		case leftEq && rightEq:
			appendResolved(b[i:i2])
		case leftEq:
			appendResolved(r[k:k2])
		case rightEq:
			appendResolved(l[j:j2])
		case linesEqual(nl[j:j2], nr[k:k2]):
			// Both sides made the same change.
			appendResolved(l[j:j2])
		default:
			// Equal-length stretches merge line by line unless some line changed differently on both sides.
			merged, ok := []string(nil), j2-j == i2-i && k2-k == i2-i
			for x := 0; ok && x < i2-i; x++ {
				if nl[j+x] == nb[i+x] {
					merged = append(merged, r[k+x])
				} else if ok = nr[k+x] == nb[i+x] || nl[j+x] == nr[k+x]; ok {
					merged = append(merged, l[j+x])
				}
			}
			if ok {
				appendResolved(merged)
				break
			}
			regions = append(regions, region{
				conflict: true,
				left:     append([]string(nil), l[j:j2]...),
				base:     append([]string(nil), b[i:i2]...),
				right:    append([]string(nil), r[k:k2]...),
			})
		}
		i, j, k = i2, j2, k2
	}

	return regions
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// formatRegions renders regions into merged text, bracketing conflicts
// with the conventional markers.
func formatRegions(regions []region, showBase bool) string {
	var out []string
	for _, reg := range regions {
		if !reg.conflict {
			out = append(out, reg.text...)
			continue
		}
		out = append(out, MarkerMine)
		out = append(out, reg.left...)
		if showBase {
			out = append(out, MarkerBase)
			out = append(out, reg.base...)
		}
		out = append(out, MarkerSeparator)
		out = append(out, reg.right...)
		out = append(out, MarkerYours)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
