package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOneLine(t *testing.T) {
	assert.Equal(t, "voidm(){x();}", NormalizeOneLine("void m() {\n    x();\n}"))
	assert.Equal(t, "", NormalizeOneLine("   \n\t  "))
	assert.Equal(t, "a", NormalizeOneLine("a"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("void m() { x(); }", "void  m() {\nx();\n}"),
		"whitespace-only differences are identical")
	assert.Equal(t, 0.0, Similarity("a", "b"), "too short for bigrams")

	renamed := Similarity(
		"void m() { alpha(); beta(); gamma(); }",
		"void renamed() { alpha(); beta(); gamma(); }")
	assert.Greater(t, renamed, 0.7, "a rename keeps most of the body")

	unrelated := Similarity(
		"void m() { alpha(); beta(); gamma(); }",
		"int totallyDifferentThing = 42;")
	assert.Less(t, unrelated, 0.4)
	assert.Greater(t, renamed, unrelated)
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("plain")))
	assert.Equal(t, EncodingUTF8BOM, DetectEncoding([]byte{0xEF, 0xBB, 0xBF, 'a'}))
	assert.Equal(t, EncodingUTF16LE, DetectEncoding([]byte{0xFF, 0xFE, 'a', 0x00}))
	assert.Equal(t, EncodingUTF16BE, DetectEncoding([]byte{0xFE, 0xFF, 0x00, 'a'}))
}

func TestReadText_Missing(t *testing.T) {
	_, _, err := ReadText(filepath.Join(t.TempDir(), "nope.java"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)

	content, err := ReadTextOrEmpty(filepath.Join(t.TempDir(), "nope.java"))
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestReadWrite_RoundTripUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.java")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("class A {}\n")...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	content, enc, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8BOM, enc)
	assert.Equal(t, "class A {}\n", content, "decoded content carries no BOM")

	out := filepath.Join(dir, "out", "A.java")
	require.NoError(t, WriteText(out, content, enc))
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, raw, written, "output re-encodes with the detected BOM")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(""))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
	assert.False(t, Exists(dir), "directories are not mergeable files")

	path := filepath.Join(dir, "f.java")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.True(t, Exists(path))
}
