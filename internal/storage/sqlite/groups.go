package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/storage"
)

const groupColumns = "g.id, g.name, g.parent_reference, g.debt_limit, g.credit_limit, g.created_at"

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *credit.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = s.unixNow()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credit_groups (id, name, parent_reference, debt_limit, credit_limit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.ParentReference, group.DebtLimit, group.CreditLimit, group.CreatedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrAlreadyExists)
	case isCheckViolation(err):
		return fmt.Errorf("group %s: %w", group.ID, credit.ErrInvalidLimits)
	case err != nil:
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*credit.Group, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM credit_groups g WHERE g.id = ?",
		groupID,
	)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroups returns every group memberID has joined, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context, memberID string) ([]*credit.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+`
		 FROM credit_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.member_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*credit.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// UpdateGroupLimits replaces a group's debt and credit limits.
func (s *SQLiteStore) UpdateGroupLimits(ctx context.Context, groupID string, debtLimit, creditLimit float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE credit_groups SET debt_limit = ?, credit_limit = ? WHERE id = ?",
		debtLimit, creditLimit, groupID,
	)
	if isCheckViolation(err) {
		return fmt.Errorf("group %s: %w", groupID, credit.ErrInvalidLimits)
	}
	if err != nil {
		return fmt.Errorf("failed to update group limits: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group limits: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (*credit.Group, error) {
	g := &credit.Group{}
	if err := row.Scan(&g.ID, &g.Name, &g.ParentReference, &g.DebtLimit, &g.CreditLimit, &g.CreatedAt); err != nil {
		return nil, err
	}
	return g, nil
}
