package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/textual"
	"github.com/dusk-indust/structmerge/internal/tree"
)

func TestInitBlocks_IndependentInsertions_Compose(t *testing.T) {
	left := "static {\n    left();\n}"
	right := "static {\n    right();\n}"

	ctx := mergeTrees(t, config.Default(),
		unit(initBlock(tree.NameStaticInitializer, left)),
		unit(),
		unit(initBlock(tree.NameStaticInitializer, right)))

	// Sharing one node name, the two insertions superimpose into a
	// spurious whole-block conflict.
	require.True(t, textual.HasConflict(findBody(t, ctx, tree.KindInitBlock, tree.NameStaticInitializer)))

	require.NoError(t, (&InitializationBlocks{}).Handle(ctx))

	body := findBody(t, ctx, tree.KindInitBlock, tree.NameStaticInitializer)
	assert.False(t, textual.HasConflict(body))
	assert.Contains(t, body, "left();")
	assert.Contains(t, body, "right();")
	assert.Less(t, strings.Index(body, "left();"), strings.Index(body, "right();"))
}

func TestInitBlocks_EditCollisionOverExistingBlock_StaysConflict(t *testing.T) {
	base := "static {\n    value = 0;\n}"
	left := "static {\n    value = 1;\n}"
	right := "static {\n    value = 2;\n}"

	ctx := mergeTrees(t, config.Default(),
		unit(initBlock(tree.NameStaticInitializer, left)),
		unit(initBlock(tree.NameStaticInitializer, base)),
		unit(initBlock(tree.NameStaticInitializer, right)))

	require.NoError(t, (&InitializationBlocks{}).Handle(ctx))

	body := findBody(t, ctx, tree.KindInitBlock, tree.NameStaticInitializer)
	assert.True(t, textual.HasConflict(body), "a real collision over an existing block is not composed away")
}

func TestInitBlocksMultiple_RematchesEditedBlocks(t *testing.T) {
	b1 := "static {\n    one = 1;\n    setupOne();\n}"
	b2 := "static {\n    two = 2;\n    setupTwo();\n}"
	b1Edited := strings.Replace(b1, "one = 1;", "one = 10;", 1)
	b2Edited := strings.Replace(b2, "two = 2;", "two = 20;", 1)

	opts := config.Default()
	opts.InitializationBlocksHandler = false
	opts.InitializationBlocksHandlerMultipleBlocks = true

	// Left edits the second block, right edits the first; the shared
	// node name makes the naive pairing garble them.
	ctx := mergeTrees(t, opts,
		unit(initBlock(tree.NameStaticInitializer, b1), initBlock(tree.NameStaticInitializer, b2Edited)),
		unit(initBlock(tree.NameStaticInitializer, b1), initBlock(tree.NameStaticInitializer, b2)),
		unit(initBlock(tree.NameStaticInitializer, b1Edited), initBlock(tree.NameStaticInitializer, b2)))

	require.NoError(t, (&InitializationBlocksMultiple{}).Handle(ctx))

	blocks := initBlockTerminals(ctx.SuperimposedTree)
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0].Body(), "one = 10;")
	assert.Contains(t, blocks[1].Body(), "two = 20;")
	for _, b := range blocks {
		assert.False(t, textual.HasConflict(b.Body()))
	}
}

func TestInitBlocksMultiple_AddedBlockAppended(t *testing.T) {
	b1 := "static {\n    one = 1;\n    setupOne();\n}"
	b2 := "static {\n    two = 2;\n    setupTwo();\n}"
	added := "static {\n    three = 3;\n}"

	opts := config.Default()
	opts.InitializationBlocksHandler = false
	opts.InitializationBlocksHandlerMultipleBlocks = true

	ctx := mergeTrees(t, opts,
		unit(initBlock(tree.NameStaticInitializer, b1), initBlock(tree.NameStaticInitializer, b2), initBlock(tree.NameStaticInitializer, added)),
		unit(initBlock(tree.NameStaticInitializer, b1), initBlock(tree.NameStaticInitializer, b2)),
		unit(initBlock(tree.NameStaticInitializer, b1), initBlock(tree.NameStaticInitializer, b2)))

	require.NoError(t, (&InitializationBlocksMultiple{}).Handle(ctx))

	blocks := initBlockTerminals(ctx.SuperimposedTree)
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[2].Body(), "three = 3;", "a block only one side added goes after the matched ones")
}

func TestInitBlocks_SingleBlockEditsUntouchedByHandler(t *testing.T) {
	base := "static {\n    value = 0;\n}"
	left := "static {\n    value = 1;\n}"

	ctx := mergeTrees(t, config.Default(),
		unit(initBlock(tree.NameStaticInitializer, left)),
		unit(initBlock(tree.NameStaticInitializer, base)),
		unit(initBlock(tree.NameStaticInitializer, base)))

	require.NoError(t, (&InitializationBlocks{}).Handle(ctx))

	body := findBody(t, ctx, tree.KindInitBlock, tree.NameStaticInitializer)
	assert.Contains(t, body, "value = 1;")
	assert.False(t, textual.HasConflict(body))
}
