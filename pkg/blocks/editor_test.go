package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tree []Block) []string {
	out := make([]string, len(tree))
	for i := range tree {
		out[i] = tree[i].ID
	}
	return out
}

func namedBlock(id string) Block {
	b := New(BlockText)
	b.ID = id
	return b
}

func TestNewEditorClonesInitial(t *testing.T) {
	initial := []Block{namedBlock("a")}
	e := NewEditor(initial)

	initial[0].Content = "mutated outside"
	assert.Equal(t, "<p>Write something...</p>", e.Blocks()[0].Content)
}

func TestAddBlock(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		e := NewEditor(nil)
		tree := e.AddBlock(BlockText, "")
		require.Len(t, tree, 1)
		assert.Equal(t, BlockText, tree[0].Type)
	})

	t.Run("into container", func(t *testing.T) {
		section := New(BlockSection)
		e := NewEditor([]Block{section})
		tree := e.AddBlock(BlockButton, section.ID)
		require.Len(t, tree, 1)
		require.Len(t, tree[0].Children, 1)
		assert.Equal(t, BlockButton, tree[0].Children[0].Type)
	})

	t.Run("non-container parent is a no-op", func(t *testing.T) {
		text := namedBlock("a")
		e := NewEditor([]Block{text})
		tree := e.AddBlock(BlockButton, "a")
		require.Len(t, tree, 1)
		assert.Empty(t, tree[0].Children)
	})
}

func TestReorder(t *testing.T) {
	t.Run("moves active into over's position", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b"), namedBlock("c"), namedBlock("d")})
		tree := e.Reorder("d", "b")
		assert.Equal(t, []string{"a", "d", "b", "c"}, ids(tree))
	})

	t.Run("moving forward", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b"), namedBlock("c"), namedBlock("d")})
		tree := e.Reorder("a", "c")
		assert.Equal(t, []string{"b", "c", "a", "d"}, ids(tree))
	})

	t.Run("equal ids no-op", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b")})
		tree := e.Reorder("a", "a")
		assert.Equal(t, []string{"a", "b"}, ids(tree))
	})

	t.Run("unknown id no-op", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b")})
		tree := e.Reorder("a", "missing")
		assert.Equal(t, []string{"a", "b"}, ids(tree))
	})

	t.Run("within nested level", func(t *testing.T) {
		section := New(BlockSection)
		section.Children = []Block{namedBlock("x"), namedBlock("y"), namedBlock("z")}
		e := NewEditor([]Block{section})
		tree := e.Reorder("z", "x")
		assert.Equal(t, []string{"z", "x", "y"}, ids(tree[0].Children))
	})

	t.Run("ids on different levels no-op", func(t *testing.T) {
		section := New(BlockSection)
		section.Children = []Block{namedBlock("x")}
		e := NewEditor([]Block{section, namedBlock("a")})
		tree := e.Reorder("x", "a")
		assert.Equal(t, []string{"x"}, ids(tree[0].Children))
		assert.Equal(t, "a", tree[1].ID)
	})
}

func TestUpdateContent(t *testing.T) {
	section := New(BlockSection)
	section.Children = []Block{namedBlock("x")}
	e := NewEditor([]Block{section})

	tree := e.UpdateContent("x", "<p>updated</p>")
	assert.Equal(t, "<p>updated</p>", tree[0].Children[0].Content)

	tree = e.UpdateContent("missing", "ignored")
	assert.Equal(t, "<p>updated</p>", tree[0].Children[0].Content)
}

func TestDelete(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b")})
		tree := e.Delete("a")
		assert.Equal(t, []string{"b"}, ids(tree))
	})

	t.Run("nested subtree drops entirely", func(t *testing.T) {
		section := New(BlockSection)
		inner := New(BlockContainer)
		inner.Children = []Block{namedBlock("deep")}
		section.Children = []Block{inner}
		e := NewEditor([]Block{section})

		tree := e.Delete(inner.ID)
		assert.Empty(t, tree[0].Children)
		assert.Nil(t, FindByID(tree, "deep"))
	})

	t.Run("unknown id no-op", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a")})
		tree := e.Delete("missing")
		assert.Equal(t, []string{"a"}, ids(tree))
	})
}

func TestEditSession(t *testing.T) {
	t.Run("save applies draft", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a")})
		e.StartEdit("a")
		assert.Equal(t, "a", e.Editing())
		assert.Equal(t, "<p>Write something...</p>", e.Draft())

		e.SetDraft("<p>edited</p>")
		tree := e.SaveEdit()
		assert.Equal(t, "<p>edited</p>", tree[0].Content)
		assert.Equal(t, "", e.Editing())
	})

	t.Run("cancel keeps original content", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a")})
		e.StartEdit("a")
		e.SetDraft("<p>discarded</p>")
		e.CancelEdit()

		assert.Equal(t, "", e.Editing())
		assert.Equal(t, "<p>Write something...</p>", e.Blocks()[0].Content)
	})

	t.Run("starting a new edit discards the previous draft", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a"), namedBlock("b")})
		e.StartEdit("a")
		e.SetDraft("<p>lost</p>")
		e.StartEdit("b")

		assert.Equal(t, "b", e.Editing())
		tree := e.SaveEdit()
		assert.Equal(t, "<p>Write something...</p>", tree[0].Content)
	})

	t.Run("deleting the edited block clears the session", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a")})
		e.StartEdit("a")
		e.Delete("a")
		assert.Equal(t, "", e.Editing())
	})

	t.Run("unknown id no-op", func(t *testing.T) {
		e := NewEditor([]Block{namedBlock("a")})
		e.StartEdit("missing")
		assert.Equal(t, "", e.Editing())
	})
}
