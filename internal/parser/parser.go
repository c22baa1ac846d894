// Package parser turns source files into the feature-structure trees the
// merge engine superimposes, and serializes merged trees back to source.
// Parsing is backed by tree-sitter grammars; a builder per language maps
// the concrete syntax tree onto terminals and non-terminals.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/dusk-indust/structmerge/internal/tree"
)

// Language identifies a supported source language.
type Language string

const (
	LangJava Language = "java"
	LangGo   Language = "go"
)

// ParseError reports input that is not valid source in the target
// language.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// builder maps a language's concrete syntax tree onto the FST shape.
type builder interface {
	Build(root *tree_sitter.Node, source []byte) (tree.Node, error)
}

// Parser builds FSTs from source files. A new tree-sitter parser is
// created per Parse call; the Parser itself only holds the language and
// builder tables, which Parse reads but never modifies.
type Parser struct {
	languages map[Language]*tree_sitter.Language
	builders  map[Language]builder
}

// New creates a Parser with the Java and Go grammars registered.
func New() *Parser {
	return &Parser{
		languages: map[Language]*tree_sitter.Language{
			LangJava: tree_sitter.NewLanguage(tree_sitter_java.Language()),
			LangGo:   tree_sitter.NewLanguage(tree_sitter_go.Language()),
		},
		builders: map[Language]builder{
			LangJava: &javaBuilder{},
			LangGo:   &goBuilder{},
		},
	}
}

// DetectLanguage maps a file extension to its language. strict rejects
// unknown extensions; in loose mode (git merge-driver temp names) the
// default language is assumed.
func DetectLanguage(path string, strict bool) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java":
		return LangJava, nil
	case ".go":
		return LangGo, nil
	}
	if !strict {
		return LangJava, nil
	}
	return "", fmt.Errorf("unsupported file extension on %s", path)
}

// Parse builds the FST for one source file's content.
func (p *Parser) Parse(path, source string, lang Language) (tree.Node, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	b, ok := p.builders[lang]
	if !ok {
		return nil, fmt.Errorf("no builder for language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	src := []byte(source)
	t := parser.Parse(src, nil)
	if t == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("tree-sitter returned nil tree")}
	}
	defer t.Close()

	root := t.RootNode()
	if root.HasError() {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("source contains syntax errors")}
	}

	fst, err := b.Build(root, src)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return fst, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *Parser) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	return langs
}

// ---------------------------------------------------------------------------
// Shared builder helpers
// ---------------------------------------------------------------------------

// sliceText returns the dedented source text of [start, end).
func sliceText(source []byte, start, end uint) string {
	if start >= end || end > uint(len(source)) {
		return ""
	}
	return dedent(string(source[start:end]))
}

// dedent normalizes a sliced fragment to column zero. The slice starts
// at the member itself, so the first line carries no indentation; the
// continuation lines lose their longest common leading whitespace run.
// The printer re-indents by nesting depth.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= 1 {
		return s
	}
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return s
	}
	for i, line := range lines[1:] {
		if len(line) >= margin && strings.TrimLeft(line[:margin], " \t") == "" {
			lines[i+1] = line[margin:]
		} else {
			lines[i+1] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// collapseWhitespace reduces every whitespace run to one space, producing
// the single-line form used in node names.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
