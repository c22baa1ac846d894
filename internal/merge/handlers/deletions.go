package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// Deletions is the always-on final sweep. Bilaterally deleted base nodes
// must be gone from the tree; a declaration block deleted on one side
// either vanishes entirely (the other side left it untouched, so every
// member merged to nothing) or keeps its delete-versus-edit conflicts,
// in which case the enclosing header is restored from base so the
// surviving members print inside a valid declaration.
type Deletions struct{}

func (h *Deletions) Handle(ctx *merge.Context) error {
	for _, n := range ctx.DeletedBaseNodes {
		detach(n)
	}

	h.pruneOrRestore(ctx, ctx.NodesDeletedByLeft)
	h.pruneOrRestore(ctx, ctx.NodesDeletedByRight)
	return nil
}

func (h *Deletions) pruneOrRestore(ctx *merge.Context, deleted []tree.Node) {
	for _, n := range deleted {
		nt, ok := n.(*tree.NonTerminal)
		if !ok {
			// Terminal deletions resolve during content merging: the
			// emptied side either wins cleanly or the textual merge
			// already emitted the delete-versus-edit conflict.
			continue
		}

		live, ok := tree.Find(ctx.SuperimposedTree, nt.Kind(), nt.Name()).(*tree.NonTerminal)
		if !ok || live == nil {
			continue
		}

		conflicted := false
		empty := true
		for _, t := range tree.Terminals(live) {
			if textual.HasConflict(t.Body()) {
				conflicted = true
			}
			if strings.TrimSpace(t.Body()) != "" {
				empty = false
			}
		}

		switch {
		case conflicted:
			h.restoreHeader(live, ctx.BaseTree)
		case empty:
			detach(live)
		}
	}
}

// restoreHeader copies the base header body onto a live declaration
// whose header merged to nothing.
func (h *Deletions) restoreHeader(live *tree.NonTerminal, baseTree tree.Node) {
	header := tree.FindTerminal(live, tree.KindTypeHeader, tree.NameHeader)
	if header == nil || strings.TrimSpace(header.Body()) != "" {
		return
	}
	baseDecl, ok := tree.Find(baseTree, live.Kind(), live.Name()).(*tree.NonTerminal)
	if !ok || baseDecl == nil {
		return
	}
	baseHeader := tree.FindTerminal(baseDecl, tree.KindTypeHeader, tree.NameHeader)
	if baseHeader != nil {
		header.SetBody(baseHeader.Body())
	}
}
