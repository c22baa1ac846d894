package merge

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/tree"
)

// step labels the two superimposition passes: left over base, then the
// combined result over right.
type step int

const (
	stepLeftBase step = iota
	stepLeftBaseRight
)

// Sentinels splicing the three contributions of a leaf body into one
// string between the two passes. They never appear in legal source and
// must never survive into the final output.
const (
	semanticMarker        = "~~structmerge~~"
	contributionSeparator = "##structmerge##"
)

// MergeTrees superimposes the three trees into ctx.SuperimposedTree,
// removes bilaterally deleted base nodes, and textually merges every
// tagged leaf body.
func MergeTrees(left, base, right tree.Node, ctx *Context) error {
	// Indices are necessary for a proper matching between nodes.
	left.SetIndex(tree.LeftIndex)
	base.SetIndex(tree.BaseIndex)
	right.SetIndex(tree.RightIndex)

	ctx.LeftTree = left
	ctx.BaseTree = base
	ctx.RightTree = right

	leftBase := superimpose(left, base, nil, ctx, stepLeftBase)
	if leftBase == nil {
		return &SemistructuredError{Message: "left and base trees are structurally incompatible", Context: ctx}
	}
	merged := superimpose(leftBase, right, nil, ctx, stepLeftBaseRight)
	if merged == nil {
		return &SemistructuredError{Message: "combined and right trees are structurally incompatible", Context: ctx}
	}

	removeRemainingBaseNodes(merged, ctx)
	if err := mergeMatchedContent(merged, ctx); err != nil {
		return err
	}

	ctx.SuperimposedTree = merged
	return nil
}

// superimpose merges two compatible nodes into one, recursing over
// matched children. The result inherits nodeA's attributes and is
// stamped with nodeB's index, encoding provenance. Incompatible nodes
// yield nil.
func superimpose(nodeA, nodeB tree.Node, parent *tree.NonTerminal, ctx *Context, st step) tree.Node {
	if !tree.Compatible(nodeA, nodeB) {
		return nil
	}

	result := nodeA.ShallowClone()
	result.SetIndex(nodeB.Index())
	result.SetParent(parent)

	switch a := nodeA.(type) {
	case *tree.Terminal:
		if b, ok := nodeB.(*tree.Terminal); ok {
			return superimposeTerminals(a, b, st, result.(*tree.Terminal))
		}
	case *tree.NonTerminal:
		if b, ok := nodeB.(*tree.NonTerminal); ok {
			return superimposeNonTerminals(a, b, ctx, st, result.(*tree.NonTerminal))
		}
	}
	return nil
}

// superimposeTerminals splices both operands' body and prefix into the
// result, tagged with their origin. Default-mechanism leaves carry the
// first operand's content untouched.
func superimposeTerminals(a, b *tree.Terminal, st step, result *tree.Terminal) tree.Node {
	if a.Mechanism() == tree.MechanismDefault {
		result.SetBody(a.Body())
		result.SetPrefix(a.Prefix())
		return result
	}
	result.SetBody(markContributions(a.Body(), b.Body(), st, a.Index()))
	result.SetPrefix(markContributions(a.Prefix(), b.Prefix(), st, a.Index()))
	return result
}

func superimposeNonTerminals(a, b *tree.NonTerminal, ctx *Context, st step, result *tree.NonTerminal) tree.Node {
	mergeMatchedChildren(a, b, ctx, st, result)
	carryUnmatchedChildren(a, b, ctx, st, result)
	return result
}

// mergeMatchedChildren walks B's children. A matched child recurses; an
// unmatched one is a base node deleted by left (first pass) or a node
// added by right (second pass) and is carried over as a deep clone.
func mergeMatchedChildren(a, b *tree.NonTerminal, ctx *Context, st step, result *tree.NonTerminal) {
	for _, childB := range b.Children() {
		childA := a.CompatibleChild(childB)

		if childA == nil {
			cloneB := cloneChild(b, childB)
			// Deleted base nodes stay in the tree for now; the post-pass
			// detaches the bilaterally deleted ones.
			result.AddChild(cloneB)

			if st == stepLeftBase {
				ctx.NodesDeletedByLeft = append(ctx.NodesDeletedByLeft, cloneB)
			} else {
				ctx.AddedRightNodes = append(ctx.AddedRightNodes, cloneB)
			}
			continue
		}

		inheritIndex(a, childA)
		inheritIndex(b, childB)

		if st == stepLeftBaseRight && ContainsNode(ctx.AddedLeftNodes, childA) {
			// The same declaration was added on both sides.
			ctx.AddedRightNodes = append(ctx.AddedRightNodes, childB)
		}

		result.AddChild(superimpose(childA, childB, result, ctx, st))
	}
}

// carryUnmatchedChildren walks A's children with no correspondent in B:
// nodes added by left (first pass) or deleted by right (second pass).
// Each clone is placed next to its original neighbours in A.
func carryUnmatchedChildren(a, b *tree.NonTerminal, ctx *Context, st step, result *tree.NonTerminal) {
	children := a.Children()
	for i, childA := range children {
		if b.CompatibleChild(childA) != nil {
			continue
		}

		cloneA := cloneChild(a, childA)

		var leftNeighbour, rightNeighbour tree.Node
		if i > 0 {
			leftNeighbour = children[i-1]
		}
		if i < len(children)-1 {
			rightNeighbour = children[i+1]
		}
		addNearNeighbour(cloneA, leftNeighbour, rightNeighbour, result)

		switch {
		case st == stepLeftBase:
			ctx.AddedLeftNodes = append(ctx.AddedLeftNodes, cloneA)

		case ContainsNode(ctx.AddedLeftNodes, childA):
			// Added by left and absent from right: not a deletion. Point
			// the context at the clone that survives in the final tree.
			replaceNode(ctx.AddedLeftNodes, childA, cloneA)

		default:
			ctx.NodesDeletedByRight = append(ctx.NodesDeletedByRight, cloneA)
			if ContainsNode(ctx.NodesDeletedByLeft, childA) {
				// Deleted on both sides.
				ctx.DeletedBaseNodes = append(ctx.DeletedBaseNodes, cloneA)
			}
		}
	}
}

// cloneChild deep-clones child after resolving an inherited index.
func cloneChild(parent *tree.NonTerminal, child tree.Node) tree.Node {
	inheritIndex(parent, child)
	clone := child.DeepClone()
	clone.SetIndex(child.Index())
	return clone
}

// inheritIndex propagates the parent's origin when a child's index is
// still unset at the moment of processing.
func inheritIndex(parent *tree.NonTerminal, child tree.Node) {
	if child.Index() == tree.UnsetIndex {
		child.SetIndex(parent.Index())
	}
}

func replaceNode(list []tree.Node, old, new tree.Node) {
	for i, n := range list {
		if n == old {
			list[i] = new
			return
		}
	}
}

// markContributions tags a leaf body with its origin. A body already
// carrying the marker is a first-pass result being extended with right's
// contribution; otherwise the slots are laid out so that after both
// passes every tagged body reads marker, left, separator, base,
// separator, right.
func markContributions(bodyA, bodyB string, st step, indexA int) string {
	if strings.Contains(bodyA, semanticMarker) {
		return bodyA + bodyB
	}
	if st == stepLeftBase {
		return semanticMarker + bodyA + contributionSeparator + bodyB + contributionSeparator
	}
	if indexA == tree.LeftIndex {
		// A exists only in left; the base slot stays empty.
		return semanticMarker + bodyA + contributionSeparator + contributionSeparator + bodyB
	}
	return semanticMarker + contributionSeparator + bodyA + contributionSeparator + bodyB
}

// addNearNeighbour inserts node into result next to the position its
// original neighbours occupy there: right after the left neighbour,
// else right before the right neighbour, else at the end.
func addNearNeighbour(node, leftNeighbour, rightNeighbour tree.Node, result *tree.NonTerminal) {
	if leftNeighbour != nil {
		if at := compatibleChildIndex(result, leftNeighbour); at != -1 {
			result.InsertChild(node, at+1)
			return
		}
	}
	if rightNeighbour != nil {
		if at := compatibleChildIndex(result, rightNeighbour); at != -1 {
			result.InsertChild(node, at)
			return
		}
	}
	result.AddChild(node)
}

// compatibleChildIndex locates a node's counterpart in result by
// compatibility: the superimposed children are distinct objects, so
// pointer identity cannot find them.
func compatibleChildIndex(result *tree.NonTerminal, node tree.Node) int {
	for i, c := range result.Children() {
		if tree.Compatible(c, node) {
			return i
		}
	}
	return -1
}

// removeRemainingBaseNodes detaches every node recorded as bilaterally
// deleted. Comparison is by pointer identity: the context holds the
// exact clones inserted during superimposition.
func removeRemainingBaseNodes(node tree.Node, ctx *Context) {
	if len(ctx.DeletedBaseNodes) == 0 {
		return
	}
	for _, lone := range ctx.DeletedBaseNodes {
		if node == lone {
			if parent := node.Parent(); parent != nil {
				parent.RemoveChild(node)
			}
			return
		}
	}
	if nt, ok := node.(*tree.NonTerminal); ok {
		children := append([]tree.Node(nil), nt.Children()...)
		for _, c := range children {
			removeRemainingBaseNodes(c, ctx)
		}
	}
}
