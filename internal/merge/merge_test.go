package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func unit(children ...tree.Node) *tree.NonTerminal {
	root := tree.NewNonTerminal(tree.KindCompilationUnit, "program")
	for _, c := range children {
		root.AddChild(c)
	}
	return root
}

func method(name, body string) *tree.Terminal {
	return tree.NewTerminal(tree.KindMethodDecl, name, body, "", tree.MechanismLineBased)
}

func field(name, body string) *tree.Terminal {
	return tree.NewTerminal(tree.KindFieldDecl, name, body, "", tree.MechanismLineBased)
}

func mergeUnits(t *testing.T, left, base, right *tree.NonTerminal) *Context {
	t.Helper()
	ctx := NewContext(config.Default())
	require.NoError(t, MergeTrees(left, base, right, ctx))
	return ctx
}

func terminalBody(t *testing.T, ctx *Context, kind, name string) string {
	t.Helper()
	term := tree.FindTerminal(ctx.SuperimposedTree, kind, name)
	require.NotNil(t, term, "terminal %s %s not found in merged tree", kind, name)
	return term.Body()
}

const mBody = "void m() {\n    a();\n    b();\n}"

// ---------------------------------------------------------------------------
// Core properties
// ---------------------------------------------------------------------------

func TestMergeTrees_Identity(t *testing.T) {
	ctx := mergeUnits(t,
		unit(method("m()", mBody)),
		unit(method("m()", mBody)),
		unit(method("m()", mBody)))

	got := terminalBody(t, ctx, tree.KindMethodDecl, "m()")
	assert.Equal(t, mBody, strings.TrimRight(got, "\n"))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	assert.Len(t, root.Children(), 1)
	assert.Empty(t, ctx.AddedLeftNodes)
	assert.Empty(t, ctx.DeletedBaseNodes)
	assert.Empty(t, ctx.EditedLeftNodes)
	assert.Empty(t, ctx.EditedRightNodes)
}

func TestMergeTrees_LeftNull(t *testing.T) {
	edited := strings.Replace(mBody, "a();", "a(1);", 1)

	// merge(x, x, y) == y
	ctx := mergeUnits(t,
		unit(method("m()", mBody)),
		unit(method("m()", mBody)),
		unit(method("m()", edited)))
	assert.Equal(t, edited, strings.TrimRight(terminalBody(t, ctx, tree.KindMethodDecl, "m()"), "\n"))
	require.Len(t, ctx.EditedRightNodes, 1)
	assert.Empty(t, ctx.EditedLeftNodes)

	// merge(y, x, x) == y
	ctx = mergeUnits(t,
		unit(method("m()", edited)),
		unit(method("m()", mBody)),
		unit(method("m()", mBody)))
	assert.Equal(t, edited, strings.TrimRight(terminalBody(t, ctx, tree.KindMethodDecl, "m()"), "\n"))
	require.Len(t, ctx.EditedLeftNodes, 1)
	assert.Empty(t, ctx.EditedRightNodes)
}

func TestMergeTrees_NoMarkersSurvive(t *testing.T) {
	ctx := mergeUnits(t,
		unit(method("m()", strings.Replace(mBody, "a();", "a(1);", 1)), method("n()", "void n() {}")),
		unit(method("m()", mBody)),
		unit(method("m()", strings.Replace(mBody, "b();", "b(2);", 1))))

	for _, term := range tree.Terminals(ctx.SuperimposedTree) {
		assert.NotContains(t, term.Body(), semanticMarker)
		assert.NotContains(t, term.Body(), contributionSeparator)
		assert.NotContains(t, term.Prefix(), semanticMarker)
		assert.NotContains(t, term.Prefix(), contributionSeparator)
	}
}

func TestMergeTrees_Determinism(t *testing.T) {
	build := func() (*tree.NonTerminal, *tree.NonTerminal, *tree.NonTerminal) {
		return unit(method("m()", strings.Replace(mBody, "a();", "a(1);", 1)), method("x()", "void x() {}")),
			unit(method("m()", mBody)),
			unit(method("m()", strings.Replace(mBody, "a();", "a(2);", 1)))
	}

	l, b, r := build()
	first := mergeUnits(t, l, b, r)
	firstBody := terminalBody(t, first, tree.KindMethodDecl, "m()")

	for i := 0; i < 3; i++ {
		l, b, r = build()
		again := mergeUnits(t, l, b, r)
		assert.Equal(t, firstBody, terminalBody(t, again, tree.KindMethodDecl, "m()"))
	}
}

// ---------------------------------------------------------------------------
// Structural changes
// ---------------------------------------------------------------------------

func TestMergeTrees_LeftAddition_PlacedNearNeighbour(t *testing.T) {
	ctx := mergeUnits(t,
		unit(method("a()", "void a() {}"), method("b()", "void b() {}"), method("c()", "void c() {}")),
		unit(method("a()", "void a() {}"), method("c()", "void c() {}")),
		unit(method("a()", "void a() {}"), method("c()", "void c() {}")))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a()", "b()", "c()"}, names, "addition keeps its position next to its left neighbour")

	require.Len(t, ctx.AddedLeftNodes, 1)
	added := ctx.AddedLeftNodes[0]
	assert.True(t, ContainsNode(root.Children(), added),
		"the context points at the clone surviving in the final tree")
	assert.Empty(t, ctx.NodesDeletedByRight, "an addition is not a deletion by the other side")
}

func TestMergeTrees_RightAddition(t *testing.T) {
	ctx := mergeUnits(t,
		unit(method("a()", "void a() {}")),
		unit(method("a()", "void a() {}")),
		unit(method("a()", "void a() {}"), method("b()", "void b() {}")))

	require.Len(t, ctx.AddedRightNodes, 1)
	assert.Equal(t, "void b() {}", strings.TrimRight(terminalBody(t, ctx, tree.KindMethodDecl, "b()"), "\n"))
}

func TestMergeTrees_BilateralDeletion_RemovesBaseNode(t *testing.T) {
	ctx := mergeUnits(t,
		unit(),
		unit(method("m()", mBody)),
		unit())

	require.Len(t, ctx.NodesDeletedByLeft, 1)
	require.Len(t, ctx.NodesDeletedByRight, 1)
	require.Len(t, ctx.DeletedBaseNodes, 1)

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	assert.Empty(t, root.Children(), "bilaterally deleted base node is detached")
	for _, lone := range ctx.DeletedBaseNodes {
		assert.Nil(t, lone.Parent(), "no node in the tree is the recorded deletion")
	}
}

func TestMergeTrees_DeleteVersusEdit_Conflict(t *testing.T) {
	edited := strings.Replace(mBody, "b();", "b(2);", 1)

	ctx := mergeUnits(t,
		unit(),
		unit(method("m()", mBody)),
		unit(method("m()", edited)))

	body := terminalBody(t, ctx, tree.KindMethodDecl, "m()")
	require.True(t, textual.HasConflict(body))

	conflicts := textual.ExtractConflicts(body)
	require.Len(t, conflicts, 1)
	assert.Empty(t, strings.TrimSpace(conflicts[0].Left))
	assert.Contains(t, conflicts[0].Right, "b(2);")

	require.Len(t, ctx.PossibleRenamedLeftNodes, 1, "an emptied body is a rename/deletion candidate")
	assert.Equal(t, mBody, strings.TrimSpace(ctx.PossibleRenamedLeftNodes[0].BaseContent))
}

func TestMergeTrees_DeleteVersusUntouched_Empties(t *testing.T) {
	ctx := mergeUnits(t,
		unit(),
		unit(method("m()", mBody)),
		unit(method("m()", mBody)))

	body := terminalBody(t, ctx, tree.KindMethodDecl, "m()")
	assert.Empty(t, strings.TrimSpace(body), "unopposed deletion empties the node")
	assert.Empty(t, ctx.PossibleRenamedLeftNodes, "a clean deletion is not a rename candidate")
}

func TestMergeTrees_SameAdditionBothSides_SingleCopy(t *testing.T) {
	ctx := mergeUnits(t,
		unit(field("k", "int k = 0;")),
		unit(),
		unit(field("k", "int k = 0;")))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	require.Len(t, root.Children(), 1)
	assert.Equal(t, "int k = 0;", strings.TrimRight(terminalBody(t, ctx, tree.KindFieldDecl, "k"), "\n"))

	require.Len(t, ctx.AddedLeftNodes, 1)
	require.Len(t, ctx.AddedRightNodes, 1, "the duplicate addition is recorded for the handlers")
}

func TestMergeTrees_DivergingAdditionBothSides_Conflict(t *testing.T) {
	ctx := mergeUnits(t,
		unit(field("k", "int k = 0;")),
		unit(),
		unit(field("k", "int k = 1;")))

	body := terminalBody(t, ctx, tree.KindFieldDecl, "k")
	require.True(t, textual.HasConflict(body))
	conflicts := textual.ExtractConflicts(body)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Left, "int k = 0;")
	assert.Contains(t, conflicts[0].Right, "int k = 1;")
}

func TestMergeTrees_IncompatibleRoots(t *testing.T) {
	other := tree.NewNonTerminal(tree.KindTypeDecl, "NotAUnit")
	ctx := NewContext(config.Default())

	err := MergeTrees(other, unit(), unit(), ctx)
	require.Error(t, err)
	var sme *SemistructuredError
	require.ErrorAs(t, err, &sme)
	assert.NotNil(t, sme.Context)
}

func TestMergeTrees_NestedTypeMembers(t *testing.T) {
	makeType := func(methodBody string) *tree.NonTerminal {
		decl := tree.NewNonTerminal(tree.KindTypeDecl, "Foo")
		decl.AddChild(tree.NewTerminal(tree.KindTypeHeader, tree.NameHeader, "class Foo", "", tree.MechanismLineBased))
		decl.AddChild(method("m()", methodBody))
		return decl
	}

	edited := strings.Replace(mBody, "a();", "a(1);", 1)
	ctx := mergeUnits(t,
		unit(makeType(edited)),
		unit(makeType(mBody)),
		unit(makeType(mBody)))

	assert.Equal(t, edited, strings.TrimRight(terminalBody(t, ctx, tree.KindMethodDecl, "m()"), "\n"))
	assert.Equal(t, "class Foo", strings.TrimRight(terminalBody(t, ctx, tree.KindTypeHeader, tree.NameHeader), "\n"))
}

func TestMergeTrees_DefaultMechanismLeftUntouched(t *testing.T) {
	def := func(body string) *tree.Terminal {
		return tree.NewTerminal(tree.KindMethodDecl, "m()", body, "", tree.MechanismDefault)
	}

	ctx := mergeUnits(t,
		unit(def("left body")),
		unit(def("base body")),
		unit(def("right body")))

	got := terminalBody(t, ctx, tree.KindMethodDecl, "m()")
	assert.Equal(t, "left body", got, "Default leaves carry the first operand's content unmerged")
}

// ---------------------------------------------------------------------------
// Contribution tagging
// ---------------------------------------------------------------------------

func TestMarkContributions_FirstPass(t *testing.T) {
	got := markContributions("left", "base", stepLeftBase, tree.LeftIndex)
	assert.Equal(t, semanticMarker+"left"+contributionSeparator+"base"+contributionSeparator, got)
}

func TestMarkContributions_SecondPassExtendsTagged(t *testing.T) {
	tagged := markContributions("left", "base", stepLeftBase, tree.LeftIndex)
	got := markContributions(tagged, "right", stepLeftBaseRight, tree.BaseIndex)

	left, base, right := splitContributions(got)
	assert.Equal(t, "left", left)
	assert.Equal(t, "base", base)
	assert.Equal(t, "right", right)
}

func TestMarkContributions_SecondPassUntagged(t *testing.T) {
	// A node only left has: the base slot stays empty.
	got := markContributions("leftOnly", "right", stepLeftBaseRight, tree.LeftIndex)
	left, base, right := splitContributions(got)
	assert.Equal(t, "leftOnly", left)
	assert.Empty(t, base)
	assert.Equal(t, "right", right)

	// A base node deleted by left: the left slot stays empty.
	got = markContributions("baseOnly", "right", stepLeftBaseRight, tree.BaseIndex)
	left, base, right = splitContributions(got)
	assert.Empty(t, left)
	assert.Equal(t, "baseOnly", base)
	assert.Equal(t, "right", right)
}
