package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// TypeAmbiguity detects declarations the two sides added independently
// that now resolve the same simple type name differently: two imports of
// the same simple name from different packages, or an import colliding
// with a type declared by the other side. The tree shows no overlap, so
// the ambiguity is re-emitted as a textual conflict on the import.
type TypeAmbiguity struct{}

func (h *TypeAmbiguity) Handle(ctx *merge.Context) error {
	leftImports := declarationTerminals(ctx.AddedLeftNodes, tree.KindImportDecl)
	rightImports := declarationTerminals(ctx.AddedRightNodes, tree.KindImportDecl)

	for _, l := range leftImports {
		for _, r := range rightImports {
			if l == r || l.Name() == r.Name() {
				continue
			}
			if textual.HasConflict(l.Body()) || textual.HasConflict(r.Body()) {
				continue
			}
			ln, lWild := simpleImportedName(l.Body())
			rn, rWild := simpleImportedName(r.Body())
			if lWild || rWild || ln == "" || ln != rn {
				continue
			}
			l.SetBody(textual.FormatConflict(l.Body(), "", r.Body(), ctx.Options.ShowBase))
			detach(r)
		}
	}

	h.importAgainstAddedType(ctx, leftImports, ctx.AddedRightNodes, SideLeft)
	h.importAgainstAddedType(ctx, rightImports, ctx.AddedLeftNodes, SideRight)
	return nil
}

// importAgainstAddedType flags an import whose simple name collides with
// a type declaration the opposite side added.
func (h *TypeAmbiguity) importAgainstAddedType(ctx *merge.Context, imports []*tree.Terminal, oppositeAdded []tree.Node, side Side) {
	for _, imp := range imports {
		if textual.HasConflict(imp.Body()) {
			continue
		}
		name, wild := simpleImportedName(imp.Body())
		if wild || name == "" {
			continue
		}
		for _, added := range oppositeAdded {
			nt, ok := added.(*tree.NonTerminal)
			if !ok || nt.Kind() != tree.KindTypeDecl || nt.Name() != name {
				continue
			}
			header := tree.FindTerminal(nt, tree.KindTypeHeader, tree.NameHeader)
			headerText := ""
			if header != nil {
				headerText = header.Body()
			}
			if side == SideLeft {
				imp.SetBody(textual.FormatConflict(imp.Body(), "", headerText, ctx.Options.ShowBase))
			} else {
				imp.SetBody(textual.FormatConflict(headerText, "", imp.Body(), ctx.Options.ShowBase))
			}
			break
		}
	}
}

// simpleImportedName returns the last segment of an import statement and
// whether it is an on-demand (wildcard) import.
func simpleImportedName(importText string) (string, bool) {
	s := strings.TrimSpace(importText)
	s = strings.TrimPrefix(s, "import")
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "static"))
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	if s == "" {
		return "", false
	}
	if strings.HasSuffix(s, ".*") || s == "*" {
		return "", true
	}
	if at := strings.LastIndex(s, "."); at >= 0 {
		s = s[at+1:]
	}
	return strings.TrimSpace(s), false
}
