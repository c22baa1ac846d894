package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// RenamingAndDeletion classifies every declaration one side emptied
// relative to base. A similar declaration added on the same side means a
// renaming: when the other side's edits merge cleanly into the renamed
// body the rename is safe and the conflict vanishes; otherwise both
// candidates are bracketed in a single textual conflict. Without a
// similar added declaration the emptying is a genuine deletion, owned by
// the deletions handler.
type RenamingAndDeletion struct{}

func (h *RenamingAndDeletion) Handle(ctx *merge.Context) error {
	if err := h.handleSide(ctx, ctx.PossibleRenamedLeftNodes, ctx.AddedLeftNodes, SideLeft); err != nil {
		return err
	}
	return h.handleSide(ctx, ctx.PossibleRenamedRightNodes, ctx.AddedRightNodes, SideRight)
}

func (h *RenamingAndDeletion) handleSide(ctx *merge.Context, candidates []merge.RenamedCandidate, added []tree.Node, side Side) error {
	addedDecls := declarationTerminals(added, tree.KindMethodDecl, tree.KindConstructorDecl)

	for _, cand := range candidates {
		node := cand.Node
		conflicts := textual.ExtractConflicts(node.Body())
		if len(conflicts) == 0 {
			// Clean deletion, or already resolved on a previous run.
			continue
		}

		renamed := merge.MostSimilarNode(cand.BaseContent, addedDecls)
		if renamed == nil {
			continue
		}

		// The opposite side's contribution survives inside the conflict
		// the content merger emitted on the emptied node.
		opposite := conflicts[0].Right
		if side == SideRight {
			opposite = conflicts[0].Left
		}

		var mergedBody string
		var err error
		if side == SideLeft {
			mergedBody, err = ctx.Strategy.Merge(renamed.Body(), cand.BaseContent, opposite, ctx.Options.IgnoreWhitespace)
		} else {
			mergedBody, err = ctx.Strategy.Merge(opposite, cand.BaseContent, renamed.Body(), ctx.Options.IgnoreWhitespace)
		}
		if err != nil {
			return err
		}

		if !textual.HasConflict(mergedBody) {
			// Safe rename: the renamed declaration absorbs the other
			// side's edits and the emptied node vanishes.
			renamed.SetBody(strings.TrimRight(mergedBody, "\n"))
			node.SetBody("")
			node.SetPrefix("")
			continue
		}

		// Unsafe rename: one conflict bracketing both candidates.
		if side == SideLeft {
			node.SetBody(textual.FormatConflict(renamed.Body(), cand.BaseContent, opposite, ctx.Options.ShowBase))
		} else {
			node.SetBody(textual.FormatConflict(opposite, cand.BaseContent, renamed.Body(), ctx.Options.ShowBase))
		}
		detach(renamed)
	}
	return nil
}
