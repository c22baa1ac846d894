// Package files handles source file IO for the merge engine: reading
// with encoding detection, writing back in the base file's encoding, and
// the whitespace-normalized comparison forms used throughout the merge.
package files

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrMissing marks a merge input that does not exist on disk, meaning the
// file was deleted in one version.
var ErrMissing = errors.New("file does not exist")

// Encoding identifies the byte encoding of a source file. It is detected
// once from the base file; all outputs use the base encoding.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingUTF8BOM:
		return "UTF-8 BOM"
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	default:
		return "unknown"
	}
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return unicode.UTF8
	}
}

// DetectEncoding inspects the leading bytes for a byte-order mark.
// BOM-less content is assumed UTF-8.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadText reads path and decodes it to a UTF-8 string, reporting the
// detected source encoding.
func ReadText(path string) (string, Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", EncodingUTF8, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return "", EncodingUTF8, err
	}
	enc := DetectEncoding(data)
	decoded, err := enc.codec().NewDecoder().Bytes(data)
	if err != nil {
		return "", enc, fmt.Errorf("decode %s as %s: %w", path, enc, err)
	}
	return string(decoded), enc, nil
}

// ReadTextOrEmpty reads path, treating a missing or empty path as empty
// content.
func ReadTextOrEmpty(path string) (string, error) {
	if !Exists(path) {
		return "", nil
	}
	content, _, err := ReadText(path)
	return content, err
}

// WriteText encodes content with enc and writes it to path, creating
// parent directories as needed.
func WriteText(path, content string, enc Encoding) error {
	encoded, err := enc.codec().NewEncoder().Bytes([]byte(content))
	if err != nil {
		return fmt.Errorf("encode %s as %s: %w", path, enc, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Comparison forms
// ---------------------------------------------------------------------------

// NormalizeOneLine collapses content to a single line with all whitespace
// removed. Every structural comparison in the merge (edit detection,
// rename candidates, duplicate bodies) uses this form.
func NormalizeOneLine(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Similarity computes a Dice coefficient over character bigrams of the
// normalized forms, in [0, 1]. Used to pair renamed declarations with
// their origin.
func Similarity(a, b string) float64 {
	na := NormalizeOneLine(a)
	nb := NormalizeOneLine(b)
	if na == nb {
		return 1
	}
	if len(na) < 2 || len(nb) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i+2 <= len(na); i++ {
		bigrams[na[i:i+2]]++
	}
	matches := 0
	for i := 0; i+2 <= len(nb); i++ {
		if bigrams[nb[i:i+2]] > 0 {
			bigrams[nb[i:i+2]]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(na)-1+len(nb)-1)
}
