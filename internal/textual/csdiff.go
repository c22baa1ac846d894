package textual

import "strings"

// CSDiffAndDiff3 refines the plain diff3 result with a consistent-signature
// pass: a conflict whose three contributions share the same structural line
// signature (the token skeleton with identifiers and literals blanked) is
// re-merged token by token, resolving refactored-argument cases that line
// granularity reports as conflicts. Anything the signature pass cannot
// resolve falls back to the plain diff3 conflict.
type CSDiffAndDiff3 struct {
	showBase bool
}

func NewCSDiffAndDiff3(showBase bool) *CSDiffAndDiff3 {
	return &CSDiffAndDiff3{showBase: showBase}
}

func (c *CSDiffAndDiff3) Merge(left, base, right string, ignoreWhitespace bool) (string, error) {
	regions := threeWayRegions(left, base, right, ignoreWhitespace)
	for i, reg := range regions {
		if !reg.conflict {
			continue
		}
		if resolved, ok := mergeBySignature(reg.left, reg.base, reg.right); ok {
			regions[i] = region{text: resolved}
		}
	}
	return formatRegions(regions, c.showBase), nil
}

// mergeBySignature merges a conflict region line-wise by token when every
// line triple shares a signature. All three contributions must have the
// same line count.
func mergeBySignature(left, base, right []string) ([]string, bool) {
	if len(left) != len(base) || len(base) != len(right) {
		return nil, false
	}
	out := make([]string, len(base))
	for i := range base {
		merged, ok := mergeLineTokens(left[i], base[i], right[i])
		if !ok {
			return nil, false
		}
		out[i] = merged
	}
	return out, true
}

// mergeLineTokens merges one line triple. The lines must tokenize to the
// same signature and the same token count; each word token is then merged
// as a scalar three-way value.
func mergeLineTokens(left, base, right string) (string, bool) {
	lt := tokenizeLine(left)
	bt := tokenizeLine(base)
	rt := tokenizeLine(right)

	if len(lt) != len(bt) || len(bt) != len(rt) {
		return "", false
	}
	if lineSignature(lt) != lineSignature(bt) || lineSignature(bt) != lineSignature(rt) {
		return "", false
	}

	var b strings.Builder
	for i := range bt {
		if !bt[i].word {
			// Structural token: identical modulo spacing, keep left's form.
			b.WriteString(lt[i].text)
			continue
		}
		merged, ok := mergeScalar(lt[i].text, bt[i].text, rt[i].text)
		if !ok {
			return "", false
		}
		b.WriteString(merged)
	}
	return b.String(), true
}

// mergeScalar merges a single token three-way: the changed side wins,
// identical changes collapse, and diverging changes fail.
func mergeScalar(left, base, right string) (string, bool) {
	switch {
	case left == base:
		return right, true
	case right == base:
		return left, true
	case left == right:
		return left, true
	default:
		return "", false
	}
}

// token is a maximal run of word characters (identifier or literal) or of
// structural characters (punctuation, operators, spacing).
type token struct {
	text string
	word bool
}

func isWordChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '$' || r == '.':
		return true
	}
	return false
}

func tokenizeLine(line string) []token {
	var tokens []token
	var cur strings.Builder
	curWord := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{text: cur.String(), word: curWord})
			cur.Reset()
		}
	}
	for _, r := range line {
		w := isWordChar(r)
		if cur.Len() > 0 && w != curWord {
			flush()
		}
		curWord = w
		cur.WriteRune(r)
	}
	flush()
	return tokens
}

// lineSignature blanks word tokens and strips spacing from structural
// tokens, leaving the token skeleton, e.g. `f(1, 2);` -> `$($,$);`.
func lineSignature(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.word {
			b.WriteByte('$')
			continue
		}
		for _, r := range t.text {
			switch r {
			case ' ', '\t':
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
