package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/pkg/eventbus"
)

func strPtr(s string) *string { return &s }

type fakeStore struct {
	records []orgnode.Record
	err     error
	calls   atomic.Int32
}

func (f *fakeStore) ListNodes(context.Context) ([]orgnode.Record, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeStore) GetNode(_ context.Context, id string) (orgnode.Record, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return orgnode.Record{}, ports.ErrNodeNotFound
}

func sampleStore() *fakeStore {
	return &fakeStore{records: []orgnode.Record{
		{ID: "root", Name: "Root", Leader: &orgnode.Member{ID: "u1", Name: "Ada"}},
		{ID: "dept", Name: "Dept", ParentID: strPtr("root"), DisplayOrder: 0, Members: []orgnode.Member{{ID: "u2", Name: "Bob"}}},
		{ID: "team", Name: "Team", ParentID: strPtr("dept")},
		{ID: "ops", Name: "Ops", ParentID: strPtr("root"), DisplayOrder: 1},
	}}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestForest_CachesUntilTTL(t *testing.T) {
	store := sampleStore()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewOrgTreeService(store, nil, WithCacheTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	first, err := svc.Forest(ctx)
	require.NoError(t, err)
	second, err := svc.Forest(ctx)
	require.NoError(t, err)
	require.Same(t, first[0], second[0])
	require.EqualValues(t, 1, store.calls.Load())

	clock.Advance(time.Minute)
	_, err = svc.Forest(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, store.calls.Load())

	svc.Invalidate()
	_, err = svc.Forest(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, store.calls.Load())
}

func TestForest_ZeroTTLAlwaysReloads(t *testing.T) {
	store := sampleStore()
	svc := NewOrgTreeService(store, nil, WithCacheTTL(0))
	for i := 0; i < 3; i++ {
		_, err := svc.Forest(context.Background())
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, store.calls.Load())
}

func TestForest_WrapsStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewOrgTreeService(&fakeStore{err: boom}, nil)

	_, err := svc.Forest(context.Background())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "load org tree")
}

func TestRender_RespectsExpansion(t *testing.T) {
	svc := NewOrgTreeService(sampleStore(), nil)

	rendered, err := svc.Render(context.Background(), expansion.New("root", "dept"))
	require.NoError(t, err)

	var names []string
	var indents []int
	for _, row := range renderer.FlattenForest(rendered) {
		names = append(names, row.Node.Name)
		indents = append(indents, row.Indent)
	}
	require.Equal(t, []string{"Root", "Dept", "Team", "Ops"}, names)
	require.Equal(t, []int{0, 16, 32, 16}, indents)
}

func TestRender_SharesMemoAcrossEqualSets(t *testing.T) {
	svc := NewOrgTreeService(sampleStore(), nil)
	ctx := context.Background()

	first, err := svc.Render(ctx, expansion.Parse("root"))
	require.NoError(t, err)
	second, err := svc.Render(ctx, expansion.Parse("root"))
	require.NoError(t, err)

	require.Same(t, first[0], second[0])
	require.EqualValues(t, 1, svc.RenderStats().Hits)
}

func TestRender_ReportsDepthLimit(t *testing.T) {
	svc := NewOrgTreeService(sampleStore(), nil, WithMaxDepth(1))
	_, err := svc.Render(context.Background(), expansion.New("root", "dept"))
	require.ErrorIs(t, err, renderer.ErrDepthLimitExceeded)
}

func TestToggle(t *testing.T) {
	bus := eventbus.New(nil)
	var events []*ExpansionToggledEvent
	bus.Subscribe(func(e *ExpansionToggledEvent) { events = append(events, e) })
	svc := NewOrgTreeService(sampleStore(), bus)
	ctx := context.Background()

	start := expansion.New("root")
	next, err := svc.Toggle(ctx, start, "dept")
	require.NoError(t, err)
	require.Equal(t, []string{"dept", "root"}, next.IDs())
	require.Equal(t, []string{"root"}, start.IDs())

	back, err := svc.Toggle(ctx, next, "dept")
	require.NoError(t, err)
	require.True(t, back.Equal(start))

	require.Len(t, events, 2)
	require.True(t, events[0].Expanded)
	require.False(t, events[1].Expanded)

	_, err = svc.Toggle(ctx, start, "team")
	require.ErrorIs(t, err, ErrNotExpandable)

	_, err = svc.Toggle(ctx, start, "ghost")
	require.ErrorIs(t, err, ErrNodeNotFound)

	_, err = svc.Toggle(ctx, start, "")
	require.ErrorIs(t, err, ErrInvalidNodeID)
}

func TestSelect(t *testing.T) {
	bus := eventbus.New(nil)
	var selected []*NodeSelectedEvent
	bus.Subscribe(func(e *NodeSelectedEvent) { selected = append(selected, e) })
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewOrgTreeService(sampleStore(), bus, WithClock(func() time.Time { return at }))

	details, err := svc.Select(context.Background(), "dept")
	require.NoError(t, err)
	require.Equal(t, "Dept", details.Name)
	require.Equal(t, "root", details.ParentID)
	require.Equal(t, "Root", details.ParentName)
	require.Equal(t, 1, details.ChildCount)
	require.Equal(t, []orgnode.Member{{ID: "u2", Name: "Bob"}}, details.Members)
	require.Equal(t, []PathItem{{ID: "root", Name: "Root"}, {ID: "dept", Name: "Dept"}}, details.Path)

	require.Len(t, selected, 1)
	require.Equal(t, "dept", selected[0].NodeID)
	require.Equal(t, at, selected[0].SelectedAt)

	root, err := svc.Select(context.Background(), "root")
	require.NoError(t, err)
	require.Empty(t, root.ParentID)
	require.Equal(t, "Ada", root.Leader.Name)

	_, err = svc.Select(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNodeNotFound)
	require.Len(t, selected, 2)
}

func TestSelect_ReadsCurrentRecordWhileForestIsCached(t *testing.T) {
	store := sampleStore()
	svc := NewOrgTreeService(store, nil, WithCacheTTL(time.Hour))
	ctx := context.Background()

	_, err := svc.Select(ctx, "dept")
	require.NoError(t, err)
	require.EqualValues(t, 1, store.calls.Load())

	store.records[1] = orgnode.Record{
		ID: "dept", Name: "R&D", ParentID: strPtr("root"),
		Leader:  &orgnode.Member{ID: "u9", Name: "Cy"},
		Members: []orgnode.Member{{ID: "u2", Name: "Bob"}, {ID: "u3", Name: "Dee"}},
	}
	details, err := svc.Select(ctx, "dept")
	require.NoError(t, err)
	require.EqualValues(t, 1, store.calls.Load())
	require.Equal(t, "R&D", details.Name)
	require.Equal(t, "Cy", details.Leader.Name)
	require.Len(t, details.Members, 2)
	require.Equal(t, PathItem{ID: "dept", Name: "R&D"}, details.Path[len(details.Path)-1])
	require.Equal(t, 1, details.ChildCount)

	store.records = store.records[:2]
	_, err = svc.Select(ctx, "team")
	require.ErrorIs(t, err, ErrNodeNotFound)

	_, err = svc.Forest(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, store.calls.Load())
}

func TestExpandPath(t *testing.T) {
	svc := NewOrgTreeService(sampleStore(), nil)

	set, err := svc.ExpandPath(context.Background(), expansion.New("ops"), "team")
	require.NoError(t, err)
	require.Equal(t, []string{"dept", "ops", "root"}, set.IDs())

	set, err = svc.ExpandPath(context.Background(), nil, "root")
	require.NoError(t, err)
	require.Zero(t, set.Len())

	_, err = svc.ExpandPath(context.Background(), nil, "ghost")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestExpandAll(t *testing.T) {
	svc := NewOrgTreeService(sampleStore(), nil)

	set, err := svc.ExpandAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"dept", "root"}, set.IDs())
}
