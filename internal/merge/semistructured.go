package merge

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/parser"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// ConflictHandler is one post-processor of the merged tree, resolving or
// reshaping a specific family of conflicts. Handlers run in a fixed
// order and must be idempotent.
type ConflictHandler interface {
	Handle(ctx *Context) error
}

// Files merges three versions of one source file and returns the merged
// source. The handler pipeline runs after the tree carries textually
// merged leaf bodies. The returned context is valid even on error, so
// callers can fall back to a pure textual merge.
func Files(leftPath, basePath, rightPath string, opts *config.Options, handlers []ConflictHandler) (string, *Context, error) {
	ctx := NewContext(opts)

	for _, path := range []string{leftPath, basePath, rightPath} {
		if !files.Exists(path) {
			return "", ctx, &SemistructuredError{Message: DeletedFileMessage, Context: ctx}
		}
	}

	lang, err := parser.DetectLanguage(basePath, !opts.Git)
	if err != nil {
		return "", ctx, semistructuredErr(ctx, err)
	}

	p := parser.New()
	parse := func(path string) (tree.Node, error) {
		source, enc, err := files.ReadText(path)
		if err != nil {
			return nil, err
		}
		if path == basePath {
			ctx.Encoding = enc
		}
		return p.Parse(path, source, lang)
	}

	leftTree, err := parse(leftPath)
	if err != nil {
		return "", ctx, semistructuredErr(ctx, err)
	}
	baseTree, err := parse(basePath)
	if err != nil {
		return "", ctx, semistructuredErr(ctx, err)
	}
	rightTree, err := parse(rightPath)
	if err != nil {
		return "", ctx, semistructuredErr(ctx, err)
	}

	if err := Trees(leftTree, baseTree, rightTree, ctx, handlers); err != nil {
		return "", ctx, err
	}

	output := parser.Print(ctx.SuperimposedTree)
	if !opts.Git {
		log.Debug("semistructured merge completed",
			"file", basePath, "conflicts", textual.CountConflicts(output))
	}
	return output, ctx, nil
}

// Trees merges three already-parsed trees in place on ctx and runs the
// handler pipeline. Failures inside a handler are wrapped into a
// SemistructuredError carrying the current context.
func Trees(left, base, right tree.Node, ctx *Context, handlers []ConflictHandler) error {
	if err := MergeTrees(left, base, right, ctx); err != nil {
		var tme *textual.MergeError
		if errors.As(err, &tme) {
			return err
		}
		var sme *SemistructuredError
		if errors.As(err, &sme) {
			return err
		}
		return semistructuredErr(ctx, err)
	}

	// The serialized partial result is needed by several handlers.
	ctx.SemistructuredOutput = parser.Print(ctx.SuperimposedTree)

	for _, handler := range handlers {
		if err := handler.Handle(ctx); err != nil {
			return semistructuredErr(ctx, err)
		}
	}
	return nil
}
