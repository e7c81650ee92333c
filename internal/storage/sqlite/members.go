package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/storage"
)

// AddMember joins a member to its group.
func (s *SQLiteStore) AddMember(ctx context.Context, member *credit.Member) error {
	if member.JoinedAt == 0 {
		member.JoinedAt = s.unixNow()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, member_id, name, joined_at) VALUES (?, ?, ?, ?)",
		member.GroupID, member.ID, member.Name, member.JoinedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("member %s in group %s: %w", member.ID, member.GroupID, storage.ErrAlreadyExists)
	case isForeignKeyViolation(err):
		return fmt.Errorf("group %s: %w", member.GroupID, storage.ErrNotFound)
	case err != nil:
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// GetMember retrieves one member of a group. The balance is left unset.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, memberID string) (*credit.Member, error) {
	m := &credit.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT member_id, name, group_id, joined_at FROM group_members WHERE group_id = ? AND member_id = ?",
		groupID, memberID,
	).Scan(&m.ID, &m.Name, &m.GroupID, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s in group %s: %w", memberID, groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers returns a group's members ordered by join time.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*credit.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, name, group_id, joined_at FROM group_members
		 WHERE group_id = ? ORDER BY joined_at, member_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*credit.Member
	for rows.Next() {
		m := &credit.Member{}
		if err := rows.Scan(&m.ID, &m.Name, &m.GroupID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
