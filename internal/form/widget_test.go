package form_test

import (
	"testing"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	f := newFactory(t)
	email := mustNew(t, f, "email", "leaf")
	group := mustNew(t, f, "group", form.Compound, form.WithProp("structural", true), form.WithChildren(email))
	name := mustNew(t, f, "name", "leaf")
	root := mustNew(t, f, "person", form.Compound, form.WithChildren(group, name))

	assert.Equal(t, "person", root.Path())
	assert.Equal(t, "person.email", email.Path())
	assert.Equal(t, "person", group.Path())
	assert.Equal(t, "person.name", name.Path())
	assert.Same(t, root, email.Root())
	assert.Same(t, group, root.Child("group"))
}

func TestAttachRules(t *testing.T) {
	f := newFactory(t)

	t.Run("owned child", func(t *testing.T) {
		c := mustNew(t, f, "c", "leaf")
		mustNew(t, f, "a", form.Compound, form.WithChildren(c))
		b := mustNew(t, f, "b", form.Compound)
		assert.ErrorIs(t, b.Attach(c), form.ErrValue)
	})

	t.Run("sibling names", func(t *testing.T) {
		p := mustNew(t, f, "p", form.Compound, form.WithChildren(mustNew(t, f, "c", "leaf")))
		assert.ErrorIs(t, p.Attach(mustNew(t, f, "c", "leaf")), form.ErrName)
	})

	t.Run("unnamed child", func(t *testing.T) {
		p := mustNew(t, f, "p", form.Compound)
		assert.ErrorIs(t, p.Attach(mustNew(t, f, "", "leaf")), form.ErrName)
	})

	t.Run("ancestor", func(t *testing.T) {
		child := mustNew(t, f, "child", form.Compound)
		root := mustNew(t, f, "root", form.Compound, form.WithChildren(child))
		assert.ErrorIs(t, child.Attach(root), form.ErrValue)
	})

	t.Run("duplicate dotted path through structural widget", func(t *testing.T) {
		inner := mustNew(t, f, "x", "leaf")
		group := mustNew(t, f, "g", form.Compound, form.WithProp("structural", true), form.WithChildren(inner))
		root := mustNew(t, f, "root", form.Compound, form.WithChildren(group))

		dup := mustNew(t, f, "x", "leaf")
		err := root.Attach(dup)
		assert.ErrorIs(t, err, form.ErrName)
		assert.Nil(t, dup.Parent())
		assert.Len(t, root.Children(), 1)
	})

	t.Run("insert and detach", func(t *testing.T) {
		p := mustNew(t, f, "p", form.Compound,
			form.WithChildren(mustNew(t, f, "a", "leaf"), mustNew(t, f, "c", "leaf")))
		require.NoError(t, p.Insert(1, mustNew(t, f, "b", "leaf")))
		assert.ErrorIs(t, p.Insert(9, mustNew(t, f, "z", "leaf")), form.ErrValue)

		var names []string
		for _, c := range p.Children() {
			names = append(names, c.Name())
		}
		assert.Equal(t, []string{"a", "b", "c"}, names)

		b := p.Detach("b")
		require.NotNil(t, b)
		assert.Nil(t, b.Parent())
		assert.Nil(t, p.Child("b"))
		assert.Same(t, p.Children()[1], p.Child("c"))
		assert.Nil(t, p.Detach("b"))
	})
}

func TestInvalidWidgetName(t *testing.T) {
	f := newFactory(t)
	_, err := f.New("a:b", "leaf")
	assert.ErrorIs(t, err, form.ErrName)
}

func TestCloneIsIndependent(t *testing.T) {
	f := newFactory(t)
	proto := mustNew(t, f, "proto", form.Compound,
		form.WithProp("class", "row"),
		form.WithChildren(mustNew(t, f, "a", "leaf")))

	c := form.Clone(proto, "copy")
	c.Set("class", "changed")
	c.Child("a").Set("class", "inner")

	assert.Equal(t, "copy", c.Name())
	assert.Nil(t, c.Parent())
	assert.Equal(t, proto.Chain(), c.Chain())
	v, _ := proto.Property("class")
	assert.Equal(t, "row", v)
	_, ok := proto.Child("a").Property("class")
	assert.False(t, ok)
	assert.Same(t, c, c.Child("a").Parent())
	assert.Equal(t, "copy.a", c.Child("a").Path())
}

func TestWalkStopsEarly(t *testing.T) {
	f := newFactory(t)
	root := mustNew(t, f, "r", form.Compound, form.WithChildren(
		mustNew(t, f, "a", "leaf"), mustNew(t, f, "b", "leaf"), mustNew(t, f, "c", "leaf")))

	var seen []string
	root.Walk(func(w *form.Widget) bool {
		seen = append(seen, w.Name())
		return w.Name() != "b"
	})
	assert.Equal(t, []string{"r", "a", "b"}, seen)
}
