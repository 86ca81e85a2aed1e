package persistence

import (
	"context"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
)

var ErrInvalidFixture = errors.New("invalid org tree fixture")

type fixtureMember struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

type fixtureNode struct {
	ID           string          `yaml:"id" validate:"required"`
	Name         string          `yaml:"name" validate:"required"`
	ParentID     string          `yaml:"parent_id"`
	DisplayOrder int             `yaml:"display_order"`
	Leader       *fixtureMember  `yaml:"leader" validate:"omitempty"`
	Members      []fixtureMember `yaml:"members" validate:"dive"`
	Children     []fixtureNode   `yaml:"children" validate:"dive"`
}

type fixture struct {
	Nodes []fixtureNode `yaml:"nodes" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseFixture reads a YAML document listing nodes either nested through
// "children" or flat through "parent_id" (both forms may be mixed).
func ParseFixture(data []byte) ([]orgnode.Record, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(ErrInvalidFixture, err.Error())
	}
	if err := validate.Struct(f); err != nil {
		return nil, errors.Wrap(ErrInvalidFixture, err.Error())
	}

	out := make([]orgnode.Record, 0, len(f.Nodes))
	seen := make(map[string]struct{}, len(f.Nodes))
	var flatten func(n fixtureNode, parentID string) error
	flatten = func(n fixtureNode, parentID string) error {
		if _, dup := seen[n.ID]; dup {
			return errors.Wrapf(ErrInvalidFixture, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}

		rec := orgnode.Record{
			ID:           n.ID,
			Name:         n.Name,
			DisplayOrder: n.DisplayOrder,
		}
		if parentID == "" {
			parentID = n.ParentID
		}
		if parentID != "" {
			pid := parentID
			rec.ParentID = &pid
		}
		if n.Leader != nil {
			rec.Leader = &orgnode.Member{ID: n.Leader.ID, Name: n.Leader.Name}
		}
		for _, m := range n.Members {
			rec.Members = append(rec.Members, orgnode.Member{ID: m.ID, Name: m.Name})
		}
		out = append(out, rec)

		for i, child := range n.Children {
			if child.DisplayOrder == 0 {
				child.DisplayOrder = i
			}
			if err := flatten(child, n.ID); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range f.Nodes {
		if err := flatten(n, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// YAMLTreeStore serves a tree loaded from a fixture file.
type YAMLTreeStore struct {
	path string

	mu      sync.RWMutex
	records []orgnode.Record
	byID    map[string]orgnode.Record
}

var _ ports.TreeStore = (*YAMLTreeStore)(nil)

func NewYAMLTreeStore(path string) (*YAMLTreeStore, error) {
	s := &YAMLTreeStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewYAMLTreeStoreFromRecords builds a store over records already in memory.
func NewYAMLTreeStoreFromRecords(records []orgnode.Record) *YAMLTreeStore {
	s := &YAMLTreeStore{}
	s.set(records)
	return s
}

// Reload re-reads the fixture file.
func (s *YAMLTreeStore) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrapf(err, "read fixture %s", s.path)
	}
	records, err := ParseFixture(data)
	if err != nil {
		return errors.Wrapf(err, "parse fixture %s", s.path)
	}
	s.set(records)
	return nil
}

func (s *YAMLTreeStore) set(records []orgnode.Record) {
	byID := make(map[string]orgnode.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.byID = byID
}

func (s *YAMLTreeStore) ListNodes(ctx context.Context) ([]orgnode.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]orgnode.Record(nil), s.records...), nil
}

func (s *YAMLTreeStore) GetNode(ctx context.Context, id string) (orgnode.Record, error) {
	if err := ctx.Err(); err != nil {
		return orgnode.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return orgnode.Record{}, errors.Wrapf(ports.ErrNodeNotFound, "id %q", id)
	}
	return rec, nil
}
