package textual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractConflicts_TwoWay(t *testing.T) {
	text := "before\n" +
		"<<<<<<< MINE\n" +
		"left line\n" +
		"=======\n" +
		"right line\n" +
		">>>>>>> YOURS\n" +
		"after\n"

	conflicts := ExtractConflicts(text)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "left line", conflicts[0].Left)
	assert.Equal(t, "right line", conflicts[0].Right)
	assert.Empty(t, conflicts[0].Base)
}

func TestExtractConflicts_WithBase(t *testing.T) {
	text := FormatConflict("l1\nl2", "b1", "r1", true)

	conflicts := ExtractConflicts(text)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "l1\nl2", conflicts[0].Left)
	assert.Equal(t, "b1", conflicts[0].Base)
	assert.Equal(t, "r1", conflicts[0].Right)
}

func TestExtractConflicts_Multiple(t *testing.T) {
	text := FormatConflict("a", "", "b", false) + "middle\n" + FormatConflict("c", "", "d", false)

	conflicts := ExtractConflicts(text)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "a", conflicts[0].Left)
	assert.Equal(t, "d", conflicts[1].Right)
	assert.Equal(t, 2, CountConflicts(text))
}

func TestExtractConflicts_IndentedMarkers(t *testing.T) {
	text := "    <<<<<<< MINE\n    left\n    =======\n    right\n    >>>>>>> YOURS\n"

	conflicts := ExtractConflicts(text)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Left, "left")
	assert.Contains(t, conflicts[0].Right, "right")
}

func TestExtractConflicts_UnclosedDropped(t *testing.T) {
	text := "<<<<<<< MINE\nleft\n=======\nright\n"
	assert.Empty(t, ExtractConflicts(text))
}

func TestFormatConflict_Shape(t *testing.T) {
	got := FormatConflict("left", "base", "right", false)
	assert.Equal(t, "<<<<<<< MINE\nleft\n=======\nright\n>>>>>>> YOURS\n", got)

	got = FormatConflict("left", "base", "right", true)
	assert.Equal(t, "<<<<<<< MINE\nleft\n||||||| BASE\nbase\n=======\nright\n>>>>>>> YOURS\n", got)

	got = FormatConflict("", "", "right", false)
	assert.Equal(t, "<<<<<<< MINE\n=======\nright\n>>>>>>> YOURS\n", got, "empty side keeps the layout well formed")
}

func TestCompareAndMerge(t *testing.T) {
	assert.Equal(t, "changed", CompareAndMerge("same", "same", "changed"), "right change wins")
	assert.Equal(t, "changed", CompareAndMerge("changed", "same", "same"), "left change wins")
	assert.Equal(t, "both", CompareAndMerge("both", "same", "both"), "identical changes collapse")
	assert.Equal(t, "left", CompareAndMerge("left", "base", "right"), "diverging changes resolve left-biased")
	assert.Equal(t, "  same  ", CompareAndMerge("  same  ", "same", "  same  "), "comparison trims, result does not")
}
