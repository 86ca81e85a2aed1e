package services

import (
	"sync"
	"time"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
)

type forestEntry struct {
	roots    []*orgnode.OrganizationNode
	loadedAt time.Time
}

// forestCache holds the last built forest for ttl. A zero ttl disables it.
type forestCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	entry *forestEntry
}

func newForestCache(ttl time.Duration, now func() time.Time) *forestCache {
	return &forestCache{ttl: ttl, now: now}
}

func (c *forestCache) Get() ([]*orgnode.OrganizationNode, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || c.now().Sub(c.entry.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.entry.roots, true
}

func (c *forestCache) Set(roots []*orgnode.OrganizationNode) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &forestEntry{roots: roots, loadedAt: c.now()}
}

func (c *forestCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// setInterner maps an encoded expansion state to one canonical *Set so that
// requests carrying the same state share the renderer's memo.
type setInterner struct {
	mu    sync.Mutex
	limit int
	sets  map[string]*expansion.Set
}

func newSetInterner(limit int) *setInterner {
	return &setInterner{limit: limit, sets: make(map[string]*expansion.Set)}
}

func (i *setInterner) Intern(set *expansion.Set) *expansion.Set {
	if i.limit <= 0 {
		return set
	}
	key := set.Encode()
	i.mu.Lock()
	defer i.mu.Unlock()
	if canonical, ok := i.sets[key]; ok {
		return canonical
	}
	if len(i.sets) >= i.limit {
		i.sets = make(map[string]*expansion.Set)
	}
	if set == nil {
		set = expansion.Empty()
	}
	i.sets[key] = set
	return set
}

func (i *setInterner) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sets = make(map[string]*expansion.Set)
}
