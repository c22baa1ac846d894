// Package structmerge merges three versions of a source file — a common
// ancestor and two descendants — by superimposing their syntax trees and
// falling back to line-based merging inside matched leaves. Conflict
// handlers then refine the raw result: renamings, deletions versus
// edits, duplicated declarations, ambiguous imports, and initializer
// blocks.
package structmerge

import (
	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/merge/handlers"
	"github.com/dusk-indust/structmerge/internal/textual"
)

// Options re-exports the run configuration.
type Options = config.Options

// Strategy re-exports the textual strategy selector.
type Strategy = config.Strategy

const (
	StrategyDiff3          = config.StrategyDiff3
	StrategyCSDiffAndDiff3 = config.StrategyCSDiffAndDiff3
)

// DefaultOptions returns the standard option set.
func DefaultOptions() *Options { return config.Default() }

// LoadOptions resolves options from defaults plus the project file in
// dir.
func LoadOptions(dir string) (*Options, error) { return config.Load(dir) }

// Result carries the merged source plus run metadata.
type Result struct {
	Output string

	// Conflicts is the number of conflict regions in Output.
	Conflicts int

	// Encoding is the base file's encoding; writers should use it.
	Encoding files.Encoding
}

// SemistructuredMerge merges the three files with the handler pipeline
// the options enable.
func SemistructuredMerge(leftPath, basePath, rightPath string, opts *Options) (*Result, error) {
	return SemistructuredMergeWithHandlers(leftPath, basePath, rightPath, opts, handlers.Assemble(opts))
}

// SemistructuredMergeWithHandlers merges the three files with an
// explicit handler pipeline.
func SemistructuredMergeWithHandlers(leftPath, basePath, rightPath string, opts *Options, pipeline []merge.ConflictHandler) (*Result, error) {
	output, ctx, err := merge.Files(leftPath, basePath, rightPath, opts, pipeline)
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:    output,
		Conflicts: textual.CountConflicts(output),
		Encoding:  ctx.Encoding,
	}, nil
}

// ThreeWayTextualMerge merges the three files line-by-line without any
// tree structure. Missing files are treated as empty.
func ThreeWayTextualMerge(leftPath, basePath, rightPath string, ignoreWhitespace bool) (string, error) {
	left, err := files.ReadTextOrEmpty(leftPath)
	if err != nil {
		return "", err
	}
	base, err := files.ReadTextOrEmpty(basePath)
	if err != nil {
		return "", err
	}
	right, err := files.ReadTextOrEmpty(rightPath)
	if err != nil {
		return "", err
	}
	return merge.StrategyFor(config.Default()).Merge(left, base, right, ignoreWhitespace)
}
