package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
)

func TestSetInterner(t *testing.T) {
	i := newSetInterner(2)

	a := i.Intern(expansion.New("x", "y"))
	b := i.Intern(expansion.New("y", "x"))
	require.Same(t, a, b)

	empty := i.Intern(nil)
	require.NotNil(t, empty)
	require.Zero(t, empty.Len())

	// a third distinct key resets the table
	c := i.Intern(expansion.New("z"))
	require.Same(t, c, i.Intern(expansion.New("z")))
	require.NotSame(t, a, i.Intern(expansion.New("x", "y")))
}

func TestSetInterner_Disabled(t *testing.T) {
	i := newSetInterner(0)
	a := expansion.New("x")
	b := expansion.New("x")
	require.Same(t, a, i.Intern(a))
	require.Same(t, b, i.Intern(b))
}

func TestForestCache(t *testing.T) {
	now := time.Unix(0, 0)
	c := newForestCache(time.Second, func() time.Time { return now })

	_, ok := c.Get()
	require.False(t, ok)

	roots := []*orgnode.OrganizationNode{{ID: "a"}}
	c.Set(roots)
	got, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, roots, got)

	now = now.Add(time.Second)
	_, ok = c.Get()
	require.False(t, ok)

	c.Set(roots)
	c.Invalidate()
	_, ok = c.Get()
	require.False(t, ok)
}
