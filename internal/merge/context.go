// Package merge implements semistructured three-way merge: two
// superimposition passes combine the left, base, and right trees into
// one, leaf bodies carry their three contributions until the content
// merger dispatches them to a textual strategy, and a pipeline of
// conflict handlers refines the raw result.
package merge

import (
	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// RenamedCandidate pairs a terminal whose body one side emptied with the
// base content it held, for the renaming handler to classify as a rename
// or a deletion.
type RenamedCandidate struct {
	BaseContent string
	Node        *tree.Terminal
}

// Context is the bookkeeping accumulated while merging one file. It is
// created empty before superimposition, mutated by the superimposer and
// content merger, read and mutated by each handler in sequence, and
// discarded after serialization.
type Context struct {
	LeftTree  tree.Node
	BaseTree  tree.Node
	RightTree tree.Node

	// SuperimposedTree is the running merge result.
	SuperimposedTree tree.Node

	// SemistructuredOutput is the serialized intermediate taken after
	// content merging, before the handlers run.
	SemistructuredOutput string

	// New non-terminal-level children introduced by one side.
	AddedLeftNodes  []tree.Node
	AddedRightNodes []tree.Node

	// Base children absent from one side, and their intersection.
	NodesDeletedByLeft  []tree.Node
	NodesDeletedByRight []tree.Node
	DeletedBaseNodes    []tree.Node

	// Terminals whose body differs from base on exactly that side.
	EditedLeftNodes  []*tree.Terminal
	EditedRightNodes []*tree.Terminal

	// Terminals one side emptied relative to base: rename or deletion
	// candidates.
	PossibleRenamedLeftNodes  []RenamedCandidate
	PossibleRenamedRightNodes []RenamedCandidate

	// Encoding detected from the base file; outputs use it.
	Encoding files.Encoding

	Options  *config.Options
	Strategy textual.Strategy
}

// NewContext creates an empty context for one merge run.
func NewContext(opts *config.Options) *Context {
	return &Context{
		Options:  opts,
		Strategy: StrategyFor(opts),
	}
}

// StrategyFor builds the textual strategy the options select.
func StrategyFor(opts *config.Options) textual.Strategy {
	if opts.TextualMergeStrategy == config.StrategyCSDiffAndDiff3 {
		return textual.NewCSDiffAndDiff3(opts.ShowBase)
	}
	return textual.NewDiff3(opts.ShowBase)
}

// ContainsNode reports membership by pointer identity. Two deep-cloned
// base children can be structurally identical while representing
// different nodes, so structural equality is never used here.
func ContainsNode(list []tree.Node, n tree.Node) bool {
	for _, m := range list {
		if m == n {
			return true
		}
	}
	return false
}

// EditedByLeft reports whether t was edited by left only.
func (c *Context) EditedByLeft(t *tree.Terminal) bool {
	for _, e := range c.EditedLeftNodes {
		if e == t {
			return true
		}
	}
	return false
}

// EditedByRight reports whether t was edited by right only.
func (c *Context) EditedByRight(t *tree.Terminal) bool {
	for _, e := range c.EditedRightNodes {
		if e == t {
			return true
		}
	}
	return false
}

// similarityThreshold is the body similarity above which an added node is
// considered a renamed version of a deleted one.
const similarityThreshold = 0.7

// MostSimilarNode returns the candidate whose body is most similar to
// content, provided it clears the similarity threshold.
func MostSimilarNode(content string, candidates []*tree.Terminal) *tree.Terminal {
	var best *tree.Terminal
	bestScore := similarityThreshold
	for _, c := range candidates {
		if score := files.Similarity(content, c.Body()); score >= bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}
