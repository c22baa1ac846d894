package handlers

import (
	"sort"
	"strings"

	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// InitializationBlocksMultiple re-merges initializer blocks when a class
// declares two or more of the same flavor. All blocks of a flavor share
// one node name, so superimposition pairs them first-with-first and
// mismatched pairings produce spurious conflicts. This handler discards
// the naive pairing, re-matches blocks across the three versions by
// content similarity, and rebuilds the block list: matched triples merge
// textually, unmatched base blocks follow their surviving side, and
// blocks added by either side are appended in order.
type InitializationBlocksMultiple struct{}

// blockMatchThreshold is looser than the renaming threshold: initializer
// blocks are often short and edits weigh heavily in the ratio.
const blockMatchThreshold = 0.5

func (h *InitializationBlocksMultiple) Handle(ctx *merge.Context) error {
	for _, group := range blockGroups(ctx) {
		if err := h.rebuildGroup(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

// blockGroup keys one rebuild unit: all blocks of one flavor inside one
// enclosing declaration.
type blockGroup struct {
	parentName string
	blockName  string
}

func blockGroups(ctx *merge.Context) []blockGroup {
	seen := map[blockGroup]bool{}
	collect := func(root tree.Node) {
		if root == nil {
			return
		}
		for _, b := range initBlockTerminals(root) {
			parent := ""
			if p := b.Parent(); p != nil {
				parent = p.Name()
			}
			seen[blockGroup{parentName: parent, blockName: b.Name()}] = true
		}
	}
	collect(ctx.LeftTree)
	collect(ctx.BaseTree)
	collect(ctx.RightTree)

	groups := make([]blockGroup, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].parentName != groups[j].parentName {
			return groups[i].parentName < groups[j].parentName
		}
		return groups[i].blockName < groups[j].blockName
	})
	return groups
}

func (h *InitializationBlocksMultiple) rebuildGroup(ctx *merge.Context, g blockGroup) error {
	leftBlocks := groupBlocks(ctx.LeftTree, g)
	baseBlocks := groupBlocks(ctx.BaseTree, g)
	rightBlocks := groupBlocks(ctx.RightTree, g)

	live := groupBlocks(ctx.SuperimposedTree, g)
	if len(live) == 0 {
		return nil
	}
	if len(leftBlocks) <= 1 && len(baseBlocks) <= 1 && len(rightBlocks) <= 1 {
		// Nothing for this handler; the naive pairing is already right.
		return nil
	}

	parent := live[0].Parent()
	if parent == nil {
		return nil
	}
	at := parent.ChildIndex(live[0])
	for _, b := range live {
		detach(b)
	}
	if at < 0 || at > len(parent.Children()) {
		at = len(parent.Children())
	}

	usedLeft := make([]bool, len(leftBlocks))
	usedRight := make([]bool, len(rightBlocks))

	var rebuilt []*tree.Terminal
	for _, b := range baseBlocks {
		li := bestMatch(b, leftBlocks, usedLeft)
		ri := bestMatch(b, rightBlocks, usedRight)

		leftContent := ""
		prefix := ""
		if li >= 0 {
			usedLeft[li] = true
			leftContent = leftBlocks[li].Body()
			prefix = leftBlocks[li].Prefix()
		}
		rightContent := ""
		if ri >= 0 {
			usedRight[ri] = true
			rightContent = rightBlocks[ri].Body()
		}
		if prefix == "" {
			prefix = b.Prefix()
		}

		mergedBody, err := ctx.Strategy.Merge(leftContent, b.Body(), rightContent, ctx.Options.IgnoreWhitespace)
		if err != nil {
			return err
		}
		mergedBody = strings.TrimRight(mergedBody, "\n")
		if strings.TrimSpace(mergedBody) == "" {
			continue // deleted on the surviving side(s)
		}
		rebuilt = append(rebuilt, tree.NewTerminal(b.Kind(), b.Name(), mergedBody, prefix, b.Mechanism()))
	}

	for i, b := range leftBlocks {
		if !usedLeft[i] {
			rebuilt = append(rebuilt, tree.NewTerminal(b.Kind(), b.Name(), b.Body(), b.Prefix(), b.Mechanism()))
		}
	}
	for i, b := range rightBlocks {
		if !usedRight[i] {
			rebuilt = append(rebuilt, tree.NewTerminal(b.Kind(), b.Name(), b.Body(), b.Prefix(), b.Mechanism()))
		}
	}

	for i, b := range rebuilt {
		parent.InsertChild(b, at+i)
	}
	return nil
}

func groupBlocks(root tree.Node, g blockGroup) []*tree.Terminal {
	if root == nil {
		return nil
	}
	var out []*tree.Terminal
	for _, b := range initBlockTerminals(root) {
		parent := ""
		if p := b.Parent(); p != nil {
			parent = p.Name()
		}
		if parent == g.parentName && b.Name() == g.blockName {
			out = append(out, b)
		}
	}
	return out
}

// bestMatch returns the index of the unused block most similar to b, or
// -1 when nothing clears the threshold.
func bestMatch(b *tree.Terminal, candidates []*tree.Terminal, used []bool) int {
	best := -1
	bestScore := blockMatchThreshold
	for i, c := range candidates {
		if used[i] {
			continue
		}
		if score := files.Similarity(b.Body(), c.Body()); score >= bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
