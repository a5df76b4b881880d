package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/survey-service/internal/domain"
)

// PermissionRepository owns the department-pair edge set. It deliberately has
// no incremental insert or delete.
type PermissionRepository interface {
	List(ctx context.Context) ([]domain.Permission, error)
	ReplaceAll(ctx context.Context, pairs []domain.Permission) error
}

type permissionRepository struct {
	db DB
}

// NewPermissionRepository builds the repository.
func NewPermissionRepository(db DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	const query = `SELECT from_dept_id, to_dept_id FROM permissions ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Permission, 0)
	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(&perm.FromDeptID, &perm.ToDeptID); err != nil {
			return nil, err
		}
		result = append(result, perm)
	}
	return result, rows.Err()
}

// ReplaceAll deletes every edge and inserts pairs in a single transaction.
// The table lock serializes concurrent writers so the later commit fully
// replaces the earlier one; plain readers are not blocked.
func (r *permissionRepository) ReplaceAll(ctx context.Context, pairs []domain.Permission) error {
	const (
		lock   = `LOCK TABLE permissions IN SHARE ROW EXCLUSIVE MODE`
		wipe   = `DELETE FROM permissions`
		insert = `INSERT INTO permissions (from_dept_id, to_dept_id) VALUES ($1, $2)`
	)
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lock); err != nil {
			return fmt.Errorf("lock permissions: %w", err)
		}
		if _, err := tx.Exec(ctx, wipe); err != nil {
			return fmt.Errorf("wipe permissions: %w", err)
		}
		for _, pair := range pairs {
			if _, err := tx.Exec(ctx, insert, pair.FromDeptID, pair.ToDeptID); err != nil {
				return fmt.Errorf("insert permission %d->%d: %w", pair.FromDeptID, pair.ToDeptID, err)
			}
		}
		return nil
	})
}
