package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/eventbus"
)

var (
	ErrNodeNotFound   = ports.ErrNodeNotFound
	ErrNotExpandable  = errors.New("org node has no children to expand")
	ErrInvalidNodeID  = errors.New("org node id is required")
	defaultCacheTTL   = 30 * time.Second
	defaultInternSize = 1024
)

type PathItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NodeDetails is what the details panel shows for a selected node.
type NodeDetails struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	ParentID   string           `json:"parent_id,omitempty"`
	ParentName string           `json:"parent_name,omitempty"`
	Leader     *orgnode.Member  `json:"leader,omitempty"`
	Members    []orgnode.Member `json:"members"`
	ChildCount int              `json:"child_count"`
	Path       []PathItem       `json:"path"`
}

type Option func(*options)

type options struct {
	cacheTTL   time.Duration
	maxDepth   int
	memoSize   int
	internSize int
	now        func() time.Time
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

func WithMemoSize(size int) Option {
	return func(o *options) { o.memoSize = size }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// OrgTreeService owns the forest read from the store and the renderer that
// draws it. Expansion state stays with the caller and is passed in on every
// call.
type OrgTreeService struct {
	store    ports.TreeStore
	bus      eventbus.EventBus
	renderer *renderer.Renderer
	cache    *forestCache
	sets     *setInterner
	now      func() time.Time
}

func NewOrgTreeService(store ports.TreeStore, bus eventbus.EventBus, opts ...Option) *OrgTreeService {
	o := options{
		cacheTTL:   defaultCacheTTL,
		maxDepth:   renderer.DefaultMaxDepth,
		memoSize:   renderer.DefaultMemoSize,
		internSize: defaultInternSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	internSize := o.internSize
	if o.memoSize == 0 {
		internSize = 0
	}
	return &OrgTreeService{
		store:    store,
		bus:      bus,
		renderer: renderer.New(renderer.WithMaxDepth(o.maxDepth), renderer.WithMemoSize(o.memoSize)),
		cache:    newForestCache(o.cacheTTL, o.now),
		sets:     newSetInterner(internSize),
		now:      o.now,
	}
}

// Forest returns the current organization forest, served from cache while
// it is fresh.
func (s *OrgTreeService) Forest(ctx context.Context) ([]*orgnode.OrganizationNode, error) {
	if roots, ok := s.cache.Get(); ok {
		recordCacheRequest(true)
		return roots, nil
	}
	recordCacheRequest(false)

	records, err := s.store.ListNodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load org tree")
	}
	roots := orgnode.BuildForest(records)
	s.cache.Set(roots)
	composables.UseLogger(ctx).WithField("nodes", len(records)).Debug("org tree loaded")
	return roots, nil
}

// Invalidate drops the cached forest and every memoized render of it.
func (s *OrgTreeService) Invalidate() {
	s.cache.Invalidate()
	s.renderer.Reset()
	s.sets.Reset()
}

// Render draws the visible part of the forest for expanded.
func (s *OrgTreeService) Render(ctx context.Context, expanded *expansion.Set) ([]*renderer.RenderedNode, error) {
	roots, err := s.Forest(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rendered, err := s.renderer.RenderForest(roots, s.sets.Intern(expanded), nil)
	recordRender(start, err)
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("org tree render failed")
		return nil, err
	}
	return rendered, nil
}

func (s *OrgTreeService) RenderStats() renderer.Stats {
	return s.renderer.Stats()
}

func (s *OrgTreeService) lookup(ctx context.Context, id string) (*orgnode.OrganizationNode, []*orgnode.OrganizationNode, error) {
	if id == "" {
		return nil, nil, ErrInvalidNodeID
	}
	roots, err := s.Forest(ctx)
	if err != nil {
		return nil, nil, err
	}
	node := orgnode.FindInForest(roots, id)
	if node == nil {
		return nil, nil, errors.Wrapf(ErrNodeNotFound, "id %q", id)
	}
	return node, roots, nil
}

// Toggle flips id in set and returns the new set; set itself is unchanged.
// Only nodes with children can be toggled.
func (s *OrgTreeService) Toggle(ctx context.Context, set *expansion.Set, id string) (*expansion.Set, error) {
	node, _, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !node.HasChildren() {
		return nil, errors.Wrapf(ErrNotExpandable, "id %q", id)
	}

	next := set.Toggle(id)
	expanded := next.Contains(id)
	recordToggle(expanded)
	if s.bus != nil {
		s.bus.Publish(&ExpansionToggledEvent{NodeID: id, Expanded: expanded})
	}
	return next, nil
}

// Select returns the details of id and announces the selection. Placement
// comes from the cached forest; name, leader and members are read from the
// store so the panel is current even while the forest is cached.
func (s *OrgTreeService) Select(ctx context.Context, id string) (*NodeDetails, error) {
	node, roots, err := s.lookup(ctx, id)
	if err != nil {
		recordSelection(err)
		return nil, err
	}
	rec, err := s.store.GetNode(ctx, id)
	recordSelection(err)
	if err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			s.Invalidate()
			return nil, err
		}
		return nil, errors.Wrapf(err, "load org node %q", id)
	}

	path := orgnode.PathTo(roots, id)
	details := &NodeDetails{
		ID:         node.ID,
		Name:       rec.Name,
		Leader:     rec.Leader,
		Members:    append([]orgnode.Member{}, rec.Members...),
		ChildCount: len(node.Children),
		Path:       make([]PathItem, 0, len(path)),
	}
	for _, n := range path {
		name := n.Name
		if n.ID == id {
			name = rec.Name
		}
		details.Path = append(details.Path, PathItem{ID: n.ID, Name: name})
	}
	if len(path) > 1 {
		parent := path[len(path)-2]
		details.ParentID = parent.ID
		details.ParentName = parent.Name
	}

	if s.bus != nil {
		s.bus.Publish(&NodeSelectedEvent{NodeID: node.ID, Name: rec.Name, SelectedAt: s.now()})
	}
	return details, nil
}

// ExpandPath adds every ancestor of id to set so that id is visible.
func (s *OrgTreeService) ExpandPath(ctx context.Context, set *expansion.Set, id string) (*expansion.Set, error) {
	_, roots, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	path := orgnode.PathTo(roots, id)
	ancestors := make([]string, 0, len(path))
	for _, n := range path[:len(path)-1] {
		ancestors = append(ancestors, n.ID)
	}
	return set.With(ancestors...), nil
}

// ExpandAll returns a set holding every node that has children.
func (s *OrgTreeService) ExpandAll(ctx context.Context) (*expansion.Set, error) {
	roots, err := s.Forest(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, 64)
	for _, root := range roots {
		orgnode.Walk(root, func(n *orgnode.OrganizationNode, _ int) bool {
			if n.HasChildren() {
				ids = append(ids, n.ID)
			}
			return true
		})
	}
	return expansion.New(ids...), nil
}
