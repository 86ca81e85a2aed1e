// Package renderer turns an organization tree plus an externally owned
// expansion set into the nested structure a view draws.
//
// Rendering is a pure function of its inputs: the renderer reads the
// expansion set and reports user intent through the supplied Handlers, it
// never changes the tree or the set itself.
package renderer

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
)

// IndentStep is the horizontal offset, in pixels, added per depth level.
const IndentStep = 16

const (
	DefaultMaxDepth = 64
	DefaultMemoSize = 4096
)

var (
	ErrNilNode            = errors.New("renderer: nil node")
	ErrNegativeDepth      = errors.New("renderer: negative depth")
	ErrCycleDetected      = errors.New("renderer: children cycle back to an ancestor")
	ErrDepthLimitExceeded = errors.New("renderer: depth limit exceeded")
)

type Glyph string

const (
	GlyphCollapsed   Glyph = "collapsed"
	GlyphExpanded    Glyph = "expanded"
	GlyphPlaceholder Glyph = "placeholder"
)

// Handlers carries the two callbacks a rendered tree reports to. Pass the same
// pointer across renders so memoized subtrees can be reused.
type Handlers struct {
	OnToggle func(id string)
	OnSelect func(node *orgnode.OrganizationNode)
}

type Row struct {
	Node        *orgnode.OrganizationNode
	Depth       int
	Indent      int
	Glyph       Glyph
	HasChildren bool
	Expanded    bool
}

// RenderedNode is one visible row plus the rows rendered beneath it. Subtrees
// may be shared between renders and must be treated as read-only.
type RenderedNode struct {
	Row
	Children []*RenderedNode

	handlers *Handlers
}

// ClickRow reports a selection of this row's node, whatever its expansion
// state.
func (n *RenderedNode) ClickRow() {
	if n == nil || n.handlers == nil || n.handlers.OnSelect == nil {
		return
	}
	n.handlers.OnSelect(n.Node)
}

// ClickIndicator reports a toggle for this row's node. The interaction is
// always consumed here and never reaches the row: OnSelect is not invoked.
// The placeholder shown for nodes without children does nothing.
func (n *RenderedNode) ClickIndicator() (consumed bool) {
	if n == nil {
		return false
	}
	if n.HasChildren && n.handlers != nil && n.handlers.OnToggle != nil {
		n.handlers.OnToggle(n.Node.ID)
	}
	return true
}

// Flatten lists the visible rows in pre-order.
func (n *RenderedNode) Flatten() []Row {
	if n == nil {
		return nil
	}
	out := make([]Row, 0, 8)
	var walk func(*RenderedNode)
	walk = func(r *RenderedNode) {
		out = append(out, r.Row)
		for _, c := range r.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find returns the visible row for id, or nil when it is not rendered.
func (n *RenderedNode) Find(id string) *RenderedNode {
	if n == nil {
		return nil
	}
	if n.Node.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// FlattenForest lists the visible rows of every root in order.
func FlattenForest(roots []*RenderedNode) []Row {
	out := make([]Row, 0, len(roots))
	for _, r := range roots {
		out = append(out, r.Flatten()...)
	}
	return out
}

type memoKey struct {
	node     *orgnode.OrganizationNode
	depth    int
	expanded *expansion.Set
	handlers *Handlers
}

type Stats struct {
	Hits   uint64
	Misses uint64
}

type Option func(*Renderer)

// WithMaxDepth bounds how deep the renderer recurses. Zero disables the bound.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// WithMemoSize caps the number of memoized subtrees. Zero disables
// memoization.
func WithMemoSize(size int) Option {
	return func(r *Renderer) {
		if size >= 0 {
			r.memoSize = size
		}
	}
}

// Renderer renders trees and memoizes subtrees by reference: a node rendered
// again with the same depth, the same expansion set pointer and the same
// Handlers pointer is returned from the memo.
type Renderer struct {
	maxDepth int
	memoSize int

	mu    sync.Mutex
	memo  map[memoKey]*RenderedNode
	stats Stats
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		maxDepth: DefaultMaxDepth,
		memoSize: DefaultMemoSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.memoSize > 0 {
		r.memo = make(map[memoKey]*RenderedNode, 64)
	}
	return r
}

var plain = New(WithMemoSize(0))

// Render renders node at depth without memoization.
func Render(node *orgnode.OrganizationNode, depth int, expanded *expansion.Set, handlers *Handlers) (*RenderedNode, error) {
	return plain.Render(node, depth, expanded, handlers)
}

// Render renders node and, when it has children and its id is in expanded,
// each child at depth+1 in order.
func (r *Renderer) Render(node *orgnode.OrganizationNode, depth int, expanded *expansion.Set, handlers *Handlers) (*RenderedNode, error) {
	if node == nil {
		return nil, ErrNilNode
	}
	if depth < 0 {
		return nil, errors.Wrapf(ErrNegativeDepth, "depth %d", depth)
	}
	return r.render(node, depth, expanded, handlers, make(map[*orgnode.OrganizationNode]struct{}))
}

// RenderForest renders every root at depth zero.
func (r *Renderer) RenderForest(roots []*orgnode.OrganizationNode, expanded *expansion.Set, handlers *Handlers) ([]*RenderedNode, error) {
	out := make([]*RenderedNode, 0, len(roots))
	for _, root := range roots {
		rendered, err := r.Render(root, 0, expanded, handlers)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Reset drops every memoized subtree.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.memo != nil {
		r.memo = make(map[memoKey]*RenderedNode, 64)
	}
}

func (r *Renderer) lookup(key memoKey) (*RenderedNode, bool) {
	if r.memoSize == 0 {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cached, ok := r.memo[key]
	if ok {
		r.stats.Hits++
	} else {
		r.stats.Misses++
	}
	return cached, ok
}

func (r *Renderer) store(key memoKey, rendered *RenderedNode) {
	if r.memoSize == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.memo) >= r.memoSize {
		r.memo = make(map[memoKey]*RenderedNode, 64)
	}
	r.memo[key] = rendered
}

func (r *Renderer) render(
	node *orgnode.OrganizationNode,
	depth int,
	expanded *expansion.Set,
	handlers *Handlers,
	path map[*orgnode.OrganizationNode]struct{},
) (*RenderedNode, error) {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return nil, errors.Wrapf(ErrDepthLimitExceeded, "node %q at depth %d (max %d)", node.ID, depth, r.maxDepth)
	}
	if _, onPath := path[node]; onPath {
		return nil, errors.Wrapf(ErrCycleDetected, "node %q", node.ID)
	}

	key := memoKey{node: node, depth: depth, expanded: expanded, handlers: handlers}
	if cached, ok := r.lookup(key); ok {
		return cached, nil
	}

	hasChildren := len(node.Children) > 0
	isExpanded := hasChildren && expanded.Contains(node.ID)

	out := &RenderedNode{
		Row: Row{
			Node:        node,
			Depth:       depth,
			Indent:      depth * IndentStep,
			Glyph:       glyphFor(hasChildren, isExpanded),
			HasChildren: hasChildren,
			Expanded:    isExpanded,
		},
		handlers: handlers,
	}

	if isExpanded {
		path[node] = struct{}{}
		out.Children = make([]*RenderedNode, 0, len(node.Children))
		for _, child := range node.Children {
			if child == nil {
				continue
			}
			rendered, err := r.render(child, depth+1, expanded, handlers, path)
			if err != nil {
				delete(path, node)
				return nil, err
			}
			out.Children = append(out.Children, rendered)
		}
		delete(path, node)
	}

	r.store(key, out)
	return out, nil
}

func glyphFor(hasChildren, isExpanded bool) Glyph {
	switch {
	case !hasChildren:
		return GlyphPlaceholder
	case isExpanded:
		return GlyphExpanded
	default:
		return GlyphCollapsed
	}
}
