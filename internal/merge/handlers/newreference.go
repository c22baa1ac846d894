package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// NewElementReference flags a declaration one side added whose body
// references an identifier the other side edited or deleted. The merged
// tree shows no overlap between the two changes, so without this check
// the merge silently accepts a latent compile or behavior error.
type NewElementReference struct{}

func (h *NewElementReference) Handle(ctx *merge.Context) error {
	h.checkSide(ctx, ctx.AddedLeftNodes, ctx.EditedRightNodes, ctx.NodesDeletedByRight, SideLeft)
	h.checkSide(ctx, ctx.AddedRightNodes, ctx.EditedLeftNodes, ctx.NodesDeletedByLeft, SideRight)
	return nil
}

func (h *NewElementReference) checkSide(ctx *merge.Context, added []tree.Node, edited []*tree.Terminal, deleted []tree.Node, side Side) {
	targets := make([]*tree.Terminal, 0, len(edited))
	targets = append(targets, edited...)
	targets = append(targets, declarationTerminals(deleted,
		tree.KindMethodDecl, tree.KindConstructorDecl, tree.KindFieldDecl)...)

	decls := declarationTerminals(added,
		tree.KindMethodDecl, tree.KindConstructorDecl, tree.KindFieldDecl)

	for _, a := range decls {
		if textual.HasConflict(a.Body()) {
			continue
		}
		for _, target := range targets {
			if target == a {
				continue
			}
			ident := declarationIdentifier(target)
			if ident == "" || !referencesIdentifier(a.Body(), ident) {
				continue
			}

			cited := h.citedContent(ctx, target)
			if side == SideLeft {
				a.SetBody(textual.FormatConflict(a.Body(), "", cited, ctx.Options.ShowBase))
			} else {
				a.SetBody(textual.FormatConflict(cited, "", a.Body(), ctx.Options.ShowBase))
			}
			break
		}
	}
}

// citedContent returns the referenced declaration's current body, or its
// base body when the merge emptied it.
func (h *NewElementReference) citedContent(ctx *merge.Context, target *tree.Terminal) string {
	if strings.TrimSpace(target.Body()) != "" && !textual.HasConflict(target.Body()) {
		return target.Body()
	}
	if base := tree.FindTerminal(ctx.BaseTree, target.Kind(), target.Name()); base != nil {
		return base.Body()
	}
	return target.Body()
}

// declarationIdentifier extracts the referable name of a declaration:
// the part of the node identity before the parameter list.
func declarationIdentifier(t *tree.Terminal) string {
	name := t.Name()
	if at := strings.LastIndex(name, "("); at >= 0 {
		name = name[:at]
	}
	// Method identities may carry a receiver prefix; the identifier is
	// the last word.
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// referencesIdentifier reports whether body mentions ident as a whole
// word.
func referencesIdentifier(body, ident string) bool {
	for start := 0; ; {
		at := strings.Index(body[start:], ident)
		if at < 0 {
			return false
		}
		at += start
		end := at + len(ident)
		beforeOK := at == 0 || !isIdentRune(rune(body[at-1]))
		afterOK := end >= len(body) || !isIdentRune(rune(body[end]))
		if beforeOK && afterOK {
			return true
		}
		start = at + 1
	}
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '$':
		return true
	}
	return false
}
