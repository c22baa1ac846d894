package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// InitializationBlocks handles the single-block case: initializer blocks
// share one name per flavor, so when both sides independently add a block
// to a class that had none, superimposition pairs them and the textual
// merge reports a whole-block conflict. Two independent insertions
// compose instead.
type InitializationBlocks struct{}

func (h *InitializationBlocks) Handle(ctx *merge.Context) error {
	for _, block := range initBlockTerminals(ctx.SuperimposedTree) {
		conflicts := textual.ExtractConflicts(block.Body())
		if len(conflicts) != 1 {
			continue
		}
		c := conflicts[0]
		if !wholeBodyConflict(block.Body()) {
			continue
		}
		if strings.TrimSpace(c.Left) == "" || strings.TrimSpace(c.Right) == "" {
			continue
		}
		if baseHasBlock(ctx.BaseTree, block) {
			// A real edit collision over an existing block stays a
			// conflict.
			continue
		}
		block.SetBody(c.Left + "\n\n" + c.Right)
	}
	return nil
}

// wholeBodyConflict reports whether the body is one conflict region with
// nothing around it.
func wholeBodyConflict(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, textual.MarkerMine) &&
		strings.HasSuffix(trimmed, textual.MarkerYours)
}

// baseHasBlock reports whether the base tree declares an initializer
// block of the same flavor under the same enclosing declaration.
func baseHasBlock(baseTree tree.Node, block *tree.Terminal) bool {
	parentName := ""
	if p := block.Parent(); p != nil {
		parentName = p.Name()
	}
	for _, b := range initBlockTerminals(baseTree) {
		bParent := ""
		if p := b.Parent(); p != nil {
			bParent = p.Name()
		}
		if b.Name() == block.Name() && bParent == parentName {
			return true
		}
	}
	return false
}

// initBlockTerminals collects every initializer block under root in tree
// order.
func initBlockTerminals(root tree.Node) []*tree.Terminal {
	var out []*tree.Terminal
	for _, t := range tree.Terminals(root) {
		if t.Kind() == tree.KindInitBlock {
			out = append(out, t)
		}
	}
	return out
}
