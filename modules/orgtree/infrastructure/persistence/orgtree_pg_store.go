package persistence

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
	"github.com/jacksonlee411/orgtree/pkg/composables"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGTreeStore struct {
	db Querier
}

func NewPGTreeStore(db Querier) *PGTreeStore {
	return &PGTreeStore{db: db}
}

// querier prefers a transaction carried by ctx over the store's own handle.
func (s *PGTreeStore) querier(ctx context.Context) Querier {
	if tx, err := composables.UseTx(ctx); err == nil {
		if _, ok := tx.(pgx.Tx); ok {
			return tx
		}
	}
	return s.db
}

var _ ports.TreeStore = (*PGTreeStore)(nil)

const selectNodesSQL = `
SELECT
	n.id,
	n.parent_id,
	n.name,
	n.display_order,
	n.leader_id,
	n.leader_name
FROM org_tree_nodes n
`

func scanRecord(row pgx.Row) (orgnode.Record, error) {
	var (
		rec        orgnode.Record
		parentID   pgtype.Text
		leaderID   pgtype.Text
		leaderName pgtype.Text
	)
	if err := row.Scan(&rec.ID, &parentID, &rec.Name, &rec.DisplayOrder, &leaderID, &leaderName); err != nil {
		return orgnode.Record{}, err
	}
	if parentID.Valid && strings.TrimSpace(parentID.String) != "" {
		pid := parentID.String
		rec.ParentID = &pid
	}
	if leaderID.Valid && leaderID.String != "" {
		rec.Leader = &orgnode.Member{ID: leaderID.String, Name: leaderName.String}
	}
	return rec, nil
}

func (s *PGTreeStore) ListNodes(ctx context.Context) ([]orgnode.Record, error) {
	rows, err := s.querier(ctx).Query(ctx, selectNodesSQL+`ORDER BY n.display_order ASC, n.name ASC, n.id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list org tree nodes")
	}
	defer rows.Close()

	out := make([]orgnode.Record, 0, 64)
	index := make(map[string]int, 64)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan org tree node")
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list org tree nodes")
	}

	members, err := s.listMembers(ctx, "")
	if err != nil {
		return nil, err
	}
	for nodeID, list := range members {
		if i, ok := index[nodeID]; ok {
			out[i].Members = list
		}
	}
	return out, nil
}

func (s *PGTreeStore) GetNode(ctx context.Context, id string) (orgnode.Record, error) {
	rec, err := scanRecord(s.querier(ctx).QueryRow(ctx, selectNodesSQL+`WHERE n.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orgnode.Record{}, errors.Wrapf(ports.ErrNodeNotFound, "id %q", id)
		}
		return orgnode.Record{}, errors.Wrapf(err, "get org tree node %q", id)
	}
	members, err := s.listMembers(ctx, id)
	if err != nil {
		return orgnode.Record{}, err
	}
	rec.Members = members[id]
	return rec, nil
}

func (s *PGTreeStore) listMembers(ctx context.Context, nodeID string) (map[string][]orgnode.Member, error) {
	sql := `
SELECT node_id, member_id, member_name
FROM org_tree_members
`
	args := []any{}
	if nodeID != "" {
		sql += `WHERE node_id = $1
`
		args = append(args, nodeID)
	}
	sql += `ORDER BY node_id ASC, position ASC, member_id ASC`

	rows, err := s.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list org tree members")
	}
	defer rows.Close()

	out := make(map[string][]orgnode.Member)
	for rows.Next() {
		var id string
		var m orgnode.Member
		if err := rows.Scan(&id, &m.ID, &m.Name); err != nil {
			return nil, errors.Wrap(err, "scan org tree member")
		}
		out[id] = append(out[id], m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list org tree members")
	}
	return out, nil
}

// ReplaceAll swaps the stored tree for records inside a single transaction
// begun on the pool carried by ctx. The CLI uses it to load fixtures.
func ReplaceAll(ctx context.Context, records []orgnode.Record) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(txCtx, `DELETE FROM org_tree_members`); err != nil {
			return errors.Wrap(err, "clear members")
		}
		if _, err := tx.Exec(txCtx, `DELETE FROM org_tree_nodes`); err != nil {
			return errors.Wrap(err, "clear nodes")
		}

		// Parents reference rows by foreign key: insert without parents first.
		for _, rec := range records {
			var leaderID, leaderName *string
			if rec.Leader != nil {
				leaderID, leaderName = &rec.Leader.ID, &rec.Leader.Name
			}
			if _, err := tx.Exec(txCtx, `
INSERT INTO org_tree_nodes (id, parent_id, name, display_order, leader_id, leader_name)
VALUES ($1, NULL, $2, $3, $4, $5)`,
				rec.ID, rec.Name, rec.DisplayOrder, leaderID, leaderName,
			); err != nil {
				return errors.Wrapf(err, "insert node %q", rec.ID)
			}
		}
		for _, rec := range records {
			if rec.ParentID == nil {
				continue
			}
			if _, err := tx.Exec(txCtx, `UPDATE org_tree_nodes SET parent_id = $2 WHERE id = $1`, rec.ID, *rec.ParentID); err != nil {
				return errors.Wrapf(err, "link node %q", rec.ID)
			}
		}
		for _, rec := range records {
			for i, m := range rec.Members {
				if _, err := tx.Exec(txCtx, `
INSERT INTO org_tree_members (node_id, member_id, member_name, position)
VALUES ($1, $2, $3, $4)`,
					rec.ID, m.ID, m.Name, i,
				); err != nil {
					return errors.Wrapf(err, "insert member %q of %q", m.ID, rec.ID)
				}
			}
		}
		return nil
	})
}
