package handlers

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// DuplicatedDeclaration detects the same method or constructor added on
// both sides under different parameter spellings, which superimposition
// cannot match because the written parameter list is part of the node
// identity. Structurally identical bodies collapse to one declaration;
// diverging bodies become a single conflict.
type DuplicatedDeclaration struct{}

func (h *DuplicatedDeclaration) Handle(ctx *merge.Context) error {
	leftDecls := declarationTerminals(ctx.AddedLeftNodes, tree.KindMethodDecl, tree.KindConstructorDecl)
	rightDecls := declarationTerminals(ctx.AddedRightNodes, tree.KindMethodDecl, tree.KindConstructorDecl)

	for _, l := range leftDecls {
		for _, r := range rightDecls {
			if l == r || l.Kind() != r.Kind() {
				continue
			}
			if l.Name() == r.Name() {
				continue // matched by superimposition already
			}
			if simpleSignature(l.Name()) != simpleSignature(r.Name()) {
				continue
			}
			if textual.HasConflict(l.Body()) || textual.HasConflict(r.Body()) {
				continue // already reported
			}

			if files.NormalizeOneLine(l.Body()) == files.NormalizeOneLine(r.Body()) {
				detach(r)
				continue
			}

			l.SetBody(textual.FormatConflict(l.Body(), "", r.Body(), ctx.Options.ShowBase))
			detach(r)
		}
	}
	return nil
}

// simpleSignature reduces a written signature to name plus parameter
// types, dropping parameter names: "m(int a, String b)" -> "m(int,String)".
func simpleSignature(name string) string {
	open := strings.Index(name, "(")
	closeIdx := strings.LastIndex(name, ")")
	if open < 0 || closeIdx <= open {
		return name
	}
	params := name[open+1 : closeIdx]
	if strings.TrimSpace(params) == "" {
		return name[:open] + "()"
	}
	var types []string
	for _, p := range strings.Split(params, ",") {
		fields := strings.Fields(strings.TrimSpace(p))
		if len(fields) == 0 {
			continue
		}
		// Everything but the trailing parameter name is the type.
		if len(fields) == 1 {
			types = append(types, fields[0])
		} else {
			types = append(types, strings.Join(fields[:len(fields)-1], " "))
		}
	}
	return name[:open] + "(" + strings.Join(types, ",") + ")"
}
