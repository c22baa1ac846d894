package merge

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// mergeMatchedContent walks the superimposed tree and resolves every
// tagged leaf: bodies go to the configured textual strategy, prefixes
// (typically comments) through the lightweight scalar merge.
func mergeMatchedContent(node tree.Node, ctx *Context) error {
	switch n := node.(type) {
	case *tree.NonTerminal:
		for _, c := range n.Children() {
			if err := mergeMatchedContent(c, ctx); err != nil {
				return err
			}
		}

	case *tree.Terminal:
		if strings.Contains(n.Body(), contributionSeparator) {
			merged, err := mergeBodyContent(n, ctx)
			if err != nil {
				return err
			}
			n.SetBody(merged)
		}
		if strings.Contains(n.Prefix(), contributionSeparator) {
			left, base, right := splitContributions(n.Prefix())
			n.SetPrefix(textual.CompareAndMerge(left, base, right))
		}

	default:
		log.Warn("node is neither non-terminal nor terminal", "kind", node.Kind(), "name", node.Name())
	}
	return nil
}

// mergeBodyContent splits a tagged body into its three contributions,
// records edit and rename evidence in the context, and merges the
// contributions textually.
func mergeBodyContent(t *tree.Terminal, ctx *Context) (string, error) {
	left, base, right := splitContributions(t.Body())
	left = strings.TrimSpace(left)
	base = strings.TrimSpace(base)
	right = strings.TrimSpace(right)

	identifyNodesEditedInOnlyOneVersion(t, ctx, left, base, right)
	if ctx.Options.MethodAndConstructorRenamingAndDeletionHandler {
		identifyPossibleRenamings(t, ctx, left, base, right)
	}

	return ctx.Strategy.Merge(left, base, right, ctx.Options.IgnoreWhitespace)
}

// splitContributions breaks a tagged string into (left, base, right),
// with empty strings for absent slots.
func splitContributions(content string) (left, base, right string) {
	parts := strings.SplitN(content, contributionSeparator, 3)
	left = strings.ReplaceAll(parts[0], semanticMarker, "")
	if len(parts) > 1 {
		base = parts[1]
	}
	if len(parts) > 2 {
		right = parts[2]
	}
	return left, base, right
}

// identifyNodesEditedInOnlyOneVersion records a terminal as edited by the
// side whose content diverged when the other side still matches base.
// Comparisons use the whitespace-normalized single-line form.
func identifyNodesEditedInOnlyOneVersion(t *tree.Terminal, ctx *Context, left, base, right string) {
	l := files.NormalizeOneLine(left)
	b := files.NormalizeOneLine(base)
	r := files.NormalizeOneLine(right)
	if b == "" {
		return
	}
	if b == l && r != l {
		ctx.EditedRightNodes = append(ctx.EditedRightNodes, t)
	} else if b == r && l != r {
		ctx.EditedLeftNodes = append(ctx.EditedLeftNodes, t)
	}
}

// identifyPossibleRenamings records a terminal one side emptied relative
// to base while the other side diverged: a candidate rename or deletion
// for the renaming handler to classify.
func identifyPossibleRenamings(t *tree.Terminal, ctx *Context, left, base, right string) {
	l := files.NormalizeOneLine(left)
	b := files.NormalizeOneLine(base)
	r := files.NormalizeOneLine(right)
	if b == "" {
		return
	}
	if b != l && r == "" {
		ctx.PossibleRenamedRightNodes = append(ctx.PossibleRenamedRightNodes, RenamedCandidate{BaseContent: base, Node: t})
	} else if b != r && l == "" {
		ctx.PossibleRenamedLeftNodes = append(ctx.PossibleRenamedLeftNodes, RenamedCandidate{BaseContent: base, Node: t})
	}
}
