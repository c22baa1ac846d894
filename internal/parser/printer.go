package parser

import (
	"strings"

	"github.com/dusk-indust/structmerge/internal/tree"
)

// Print serializes a (possibly merged) FST back to source with canonical
// indentation: members are re-indented by nesting depth, blank lines
// separate siblings, and emptied nodes vanish. Parsing loses the original
// layout, so output is canonical rather than byte-faithful.
func Print(n tree.Node) string {
	out := printNode(n, 0)
	if out == "" {
		return ""
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func printNode(n tree.Node, depth int) string {
	switch node := n.(type) {
	case *tree.Terminal:
		return printTerminal(node, depth)
	case *tree.NonTerminal:
		if node.Kind() == tree.KindTypeDecl {
			return printTypeDecl(node, depth)
		}
		return joinMembers(node.Children(), depth)
	default:
		return ""
	}
}

// joinMembers renders children in order, separated by blank lines.
// Emptied children produce nothing.
func joinMembers(children []tree.Node, depth int) string {
	var parts []string
	for _, c := range children {
		if rendered := printNode(c, depth); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}

func printTerminal(t *tree.Terminal, depth int) string {
	body := strings.TrimRight(t.Body(), " \t\n")
	prefix := strings.TrimSpace(t.Prefix())
	if body == "" && prefix == "" {
		return ""
	}
	var b strings.Builder
	if prefix != "" {
		b.WriteString(indent(t.Prefix(), depth))
		b.WriteString("\n")
	}
	if body != "" {
		b.WriteString(indent(body, depth))
	}
	return strings.TrimRight(b.String(), "\n")
}

// printTypeDecl renders a type declaration: header line plus opening
// brace, members one level deeper, closing brace. A declaration whose
// header and members all merged to nothing vanishes entirely.
func printTypeDecl(n *tree.NonTerminal, depth int) string {
	var header *tree.Terminal
	var members []tree.Node
	for _, c := range n.Children() {
		if t, ok := c.(*tree.Terminal); ok && t.Kind() == tree.KindTypeHeader && header == nil {
			header = t
			continue
		}
		members = append(members, c)
	}

	body := joinMembers(members, depth+1)

	headerText := ""
	var headerPrefix string
	if header != nil {
		headerText = strings.TrimSpace(header.Body())
		headerPrefix = strings.TrimSpace(header.Prefix())
	}
	if headerText == "" && headerPrefix == "" && body == "" {
		return ""
	}
	if headerText == "" {
		// Header lost (e.g. one side deleted the type while the other
		// edited members); fall back to a minimal declaration.
		headerText = "class " + n.Name()
	}

	var b strings.Builder
	if header != nil && headerPrefix != "" {
		b.WriteString(indent(header.Prefix(), depth))
		b.WriteString("\n")
	}
	b.WriteString(indent(headerText, depth))
	b.WriteString(" {\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(indent("}", depth))
	return b.String()
}

// indent prefixes every non-blank line of s with depth indentation units.
func indent(s string, depth int) string {
	if depth == 0 {
		return s
	}
	pad := strings.Repeat("    ", depth)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
