package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/structmerge/internal/tree"
)

// goBuilder maps the tree-sitter Go CST onto a flat FST: one terminal per
// top-level declaration. Go has no nested member structure the handler
// set operates on, so files merge at declaration granularity.
type goBuilder struct{}

func (b *goBuilder) Build(root *tree_sitter.Node, source []byte) (tree.Node, error) {
	unit := tree.NewNonTerminal(tree.KindCompilationUnit, "program")

	lastEnd := root.StartByte()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind == "comment" {
			continue // folded into the next declaration's prefix
		}

		prefix := memberPrefix(source, lastEnd, child.StartByte())
		body := sliceText(source, child.StartByte(), child.EndByte())

		switch kind {
		case "package_clause":
			unit.AddChild(tree.NewTerminal(tree.KindPackageDecl, tree.NamePackage, body, prefix, tree.MechanismLineBased))

		case "import_declaration":
			unit.AddChild(tree.NewTerminal(tree.KindImportDecl, stripWhitespace(body), body, prefix, tree.MechanismLineBased))

		case "function_declaration", "method_declaration":
			unit.AddChild(tree.NewTerminal(tree.KindFuncDecl, b.funcName(child, source), body, prefix, tree.MechanismLineBased))

		case "type_declaration":
			unit.AddChild(tree.NewTerminal(tree.KindGoTypeDecl, b.specName(child, source, "type_spec", "type_alias"), body, prefix, tree.MechanismLineBased))

		case "var_declaration":
			unit.AddChild(tree.NewTerminal(tree.KindVarDecl, b.specName(child, source, "var_spec"), body, prefix, tree.MechanismLineBased))

		case "const_declaration":
			unit.AddChild(tree.NewTerminal(tree.KindConstDecl, b.specName(child, source, "const_spec"), body, prefix, tree.MechanismLineBased))

		default:
			continue
		}
		lastEnd = child.EndByte()
	}

	return unit, nil
}

// funcName builds the identity of a function or method: receiver (when
// present), name, and the collapsed parameter list.
func (b *goBuilder) funcName(node *tree_sitter.Node, source []byte) string {
	out := ""
	if r := node.ChildByFieldName("receiver"); r != nil {
		out += collapseWhitespace(r.Utf8Text(source)) + " "
	}
	if n := node.ChildByFieldName("name"); n != nil {
		out += n.Utf8Text(source)
	}
	if p := node.ChildByFieldName("parameters"); p != nil {
		out += collapseWhitespace(p.Utf8Text(source))
	}
	return out
}

// specName returns the first spec identifier inside a grouped
// declaration, e.g. "Foo" for `type Foo struct{...}`.
func (b *goBuilder) specName(node *tree_sitter.Node, source []byte, specKinds ...string) string {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		for _, k := range specKinds {
			if child.Kind() == k {
				if n := child.ChildByFieldName("name"); n != nil {
					return n.Utf8Text(source)
				}
			}
		}
	}
	return stripWhitespace(node.Utf8Text(source))
}
