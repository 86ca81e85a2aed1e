package ports

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
)

var ErrNodeNotFound = errors.New("org node not found")

// TreeStore is the data source the tree is built from.
type TreeStore interface {
	ListNodes(ctx context.Context) ([]orgnode.Record, error)
	GetNode(ctx context.Context, id string) (orgnode.Record, error)
}
