// Package handlers contains the ordered post-processors that refine a
// raw semistructured merge: renaming and deletion classification,
// duplicate and ambiguity detection, initializer-block composition, and
// the final deletions sweep. The order of assembly is part of the
// contract between handlers.
package handlers

import (
	"github.com/samber/lo"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// Assemble builds the handler pipeline the options enable. The deletions
// handler is always on, and the multiple-blocks initializer variant only
// runs when the single-block one is disabled.
func Assemble(opts *config.Options) []merge.ConflictHandler {
	var hs []merge.ConflictHandler

	if opts.TypeAmbiguityErrorHandler {
		hs = append(hs, &TypeAmbiguity{})
	}
	if opts.NewElementReferencingEditedOneHandler {
		hs = append(hs, &NewElementReference{})
	}
	if opts.MethodAndConstructorRenamingAndDeletionHandler {
		hs = append(hs, &RenamingAndDeletion{})
	}
	if !opts.InitializationBlocksHandler && opts.InitializationBlocksHandlerMultipleBlocks {
		hs = append(hs, &InitializationBlocksMultiple{})
	}
	if opts.InitializationBlocksHandler {
		hs = append(hs, &InitializationBlocks{})
	}
	if opts.DuplicatedDeclarationHandler {
		hs = append(hs, &DuplicatedDeclaration{})
	}

	hs = append(hs, &Deletions{})
	return hs
}

// Side identifies which descendant a change came from.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// declarationTerminals flattens a set of added nodes into the terminals
// of the given kinds, in tree order.
func declarationTerminals(nodes []tree.Node, kinds ...string) []*tree.Terminal {
	var out []*tree.Terminal
	for _, n := range nodes {
		for _, t := range tree.Terminals(n) {
			if lo.Contains(kinds, t.Kind()) {
				out = append(out, t)
			}
		}
	}
	return out
}

// detach removes a node from its parent if it is still attached.
func detach(n tree.Node) {
	if parent := n.Parent(); parent != nil {
		parent.RemoveChild(n)
	}
}
