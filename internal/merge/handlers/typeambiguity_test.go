package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

func TestTypeAmbiguity_SameSimpleNameDifferentPackages(t *testing.T) {
	ctx := mergeTrees(t, config.Default(),
		unit(importDecl("import java.util.List;")),
		unit(),
		unit(importDecl("import java.awt.List;")))

	require.NoError(t, (&TypeAmbiguity{}).Handle(ctx))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	require.Len(t, root.Children(), 1, "the colliding import folds into the conflict")

	body := root.Children()[0].(*tree.Terminal).Body()
	require.True(t, textual.HasConflict(body))
	assert.Contains(t, body, "java.util.List")
	assert.Contains(t, body, "java.awt.List")
}

func TestTypeAmbiguity_DistinctSimpleNames_LeftAlone(t *testing.T) {
	ctx := mergeTrees(t, config.Default(),
		unit(importDecl("import java.util.List;")),
		unit(),
		unit(importDecl("import java.util.Map;")))

	require.NoError(t, (&TypeAmbiguity{}).Handle(ctx))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	assert.Len(t, root.Children(), 2)
	for _, c := range root.Children() {
		assert.False(t, textual.HasConflict(c.(*tree.Terminal).Body()))
	}
}

func TestTypeAmbiguity_WildcardImportIgnored(t *testing.T) {
	ctx := mergeTrees(t, config.Default(),
		unit(importDecl("import java.util.*;")),
		unit(),
		unit(importDecl("import java.awt.List;")))

	require.NoError(t, (&TypeAmbiguity{}).Handle(ctx))

	root := ctx.SuperimposedTree.(*tree.NonTerminal)
	assert.Len(t, root.Children(), 2, "on-demand imports cannot be checked without a classpath")
}

func TestTypeAmbiguity_ImportCollidesWithAddedType(t *testing.T) {
	ctx := mergeTrees(t, config.Default(),
		unit(importDecl("import java.util.List;")),
		unit(),
		unit(typeDecl("List", "class List", method("m()", "void m() {}"))))

	require.NoError(t, (&TypeAmbiguity{}).Handle(ctx))

	imp := tree.FindTerminal(ctx.SuperimposedTree, tree.KindImportDecl, "importjava.util.List;")
	require.NotNil(t, imp)
	require.True(t, textual.HasConflict(imp.Body()))
	assert.Contains(t, imp.Body(), "class List")
}

func TestSimpleImportedName(t *testing.T) {
	name, wild := simpleImportedName("import java.util.List;")
	assert.Equal(t, "List", name)
	assert.False(t, wild)

	name, wild = simpleImportedName("import static java.util.Collections.sort;")
	assert.Equal(t, "sort", name)
	assert.False(t, wild)

	_, wild = simpleImportedName("import java.util.*;")
	assert.True(t, wild)
}
