package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/structmerge/internal/tree"
)

// javaBuilder maps the tree-sitter Java CST onto the FST shape: type
// declarations become non-terminals holding a header terminal plus one
// terminal per member; everything else at file level is a terminal.
// Member names are the merge identity: fields use the declarator name,
// methods and constructors use the whitespace-collapsed signature.
type javaBuilder struct{}

func (b *javaBuilder) Build(root *tree_sitter.Node, source []byte) (tree.Node, error) {
	unit := tree.NewNonTerminal(tree.KindCompilationUnit, "program")
	b.addMembers(unit, root, source, root.StartByte())
	return unit, nil
}

// addMembers walks container's named children, turning each into a child
// of parent. lastEnd tracks the byte position after the previous member
// so the gap (comments, whitespace) becomes the next member's prefix.
func (b *javaBuilder) addMembers(parent *tree.NonTerminal, container *tree_sitter.Node, source []byte, lastEnd uint) {
	for i := uint(0); i < container.NamedChildCount(); i++ {
		child := container.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind == "line_comment" || kind == "block_comment" {
			continue // folded into the next member's prefix
		}

		prefix := memberPrefix(source, lastEnd, child.StartByte())
		body := sliceText(source, child.StartByte(), child.EndByte())

		switch kind {
		case "package_declaration":
			parent.AddChild(tree.NewTerminal(tree.KindPackageDecl, tree.NamePackage, body, prefix, tree.MechanismLineBased))

		case "import_declaration":
			parent.AddChild(tree.NewTerminal(tree.KindImportDecl, stripWhitespace(body), body, prefix, tree.MechanismLineBased))

		case "class_declaration", "interface_declaration", "enum_declaration":
			parent.AddChild(b.buildType(child, source, prefix))

		case "field_declaration":
			parent.AddChild(tree.NewTerminal(tree.KindFieldDecl, b.fieldName(child, source), body, prefix, tree.MechanismLineBased))

		case "method_declaration":
			parent.AddChild(tree.NewTerminal(tree.KindMethodDecl, b.signature(child, source), body, prefix, tree.MechanismLineBased))

		case "constructor_declaration":
			parent.AddChild(tree.NewTerminal(tree.KindConstructorDecl, b.signature(child, source), body, prefix, tree.MechanismLineBased))

		case "static_initializer":
			parent.AddChild(tree.NewTerminal(tree.KindInitBlock, tree.NameStaticInitializer, body, prefix, tree.MechanismLineBased))

		case "block":
			// Instance initializer inside a class body.
			parent.AddChild(tree.NewTerminal(tree.KindInitBlock, tree.NameInitializer, body, prefix, tree.MechanismLineBased))

		default:
			// Stray tokens (lone semicolons, annotations attached ahead of
			// their member) ride along in the following member's prefix.
			continue
		}
		lastEnd = child.EndByte()
	}
}

// buildType creates the non-terminal for a class, interface, or enum
// declaration: a header terminal carrying everything before the opening
// brace, then the members of its body.
func (b *javaBuilder) buildType(node *tree_sitter.Node, source []byte, prefix string) tree.Node {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = n.Utf8Text(source)
	}

	decl := tree.NewNonTerminal(tree.KindTypeDecl, name)

	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		// A bodyless declaration degenerates to a single terminal.
		text := sliceText(source, node.StartByte(), node.EndByte())
		decl.AddChild(tree.NewTerminal(tree.KindTypeHeader, tree.NameHeader, text, prefix, tree.MechanismLineBased))
		return decl
	}

	header := strings.TrimSpace(sliceText(source, node.StartByte(), bodyNode.StartByte()))
	decl.AddChild(tree.NewTerminal(tree.KindTypeHeader, tree.NameHeader, header, prefix, tree.MechanismLineBased))

	// Skip the opening brace when computing the first member's prefix.
	b.addMembers(decl, bodyNode, source, bodyNode.StartByte()+1)
	return decl
}

// fieldName returns the first declarator identifier of a field
// declaration, e.g. "k" for `int k = 0;`.
func (b *javaBuilder) fieldName(node *tree_sitter.Node, source []byte) string {
	if d := node.ChildByFieldName("declarator"); d != nil {
		if n := d.ChildByFieldName("name"); n != nil {
			return n.Utf8Text(source)
		}
	}
	// Fall back to the whole normalized declaration.
	return stripWhitespace(node.Utf8Text(source))
}

// signature returns the identity of a method or constructor: the name
// followed by the whitespace-collapsed parameter list as written,
// e.g. "m(int a, String b)".
func (b *javaBuilder) signature(node *tree_sitter.Node, source []byte) string {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = n.Utf8Text(source)
	}
	params := ""
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = collapseWhitespace(p.Utf8Text(source))
	}
	return name + params
}

// memberPrefix extracts the special tokens (comments, annotations,
// blank lines) between two members. A gap of pure whitespace is dropped.
func memberPrefix(source []byte, lastEnd, start uint) string {
	if lastEnd >= start || start > uint(len(source)) {
		return ""
	}
	gap := string(source[lastEnd:start])
	if strings.TrimSpace(gap) == "" {
		return ""
	}
	return strings.Trim(dedent(gap), "\n")
}

// stripWhitespace removes every whitespace rune, the strictest
// normalization used for name identity.
func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
