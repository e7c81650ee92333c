package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/storage"
)

const txColumns = "id, group_id, from_member, to_member, amount, status, accepter_id, created_at, accepted_at"

// CreateTransaction appends a transaction to the log and assigns its ID.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *credit.Transaction) error {
	if tx.CreatedAt == 0 {
		tx.CreatedAt = s.unixNow()
	}

	var acceptedAt any
	if tx.AcceptedAt != 0 {
		acceptedAt = tx.AcceptedAt
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO credit_transactions
		 (group_id, from_member, to_member, amount, status, accepter_id, created_at, accepted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.GroupID, tx.From, tx.To, tx.Amount, string(tx.Status), tx.AccepterID, tx.CreatedAt, acceptedAt,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("transaction members in group %s: %w", tx.GroupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txID int64) (*credit.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM credit_transactions WHERE id = ?",
		txID,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", txID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// MarkAccepted moves a requested transaction to accepted. The update is
// conditional on the stored status so a second acceptance cannot win.
func (s *SQLiteStore) MarkAccepted(ctx context.Context, tx *credit.Transaction) error {
	if tx.AcceptedAt == 0 {
		tx.AcceptedAt = s.unixNow()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE credit_transactions SET status = ?, accepted_at = ?
		 WHERE id = ? AND status = ?`,
		string(credit.StatusAccepted), tx.AcceptedAt, tx.ID, string(credit.StatusRequested),
	)
	if err != nil {
		return fmt.Errorf("failed to accept transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to accept transaction: %w", err)
	}
	if n == 1 {
		tx.Status = credit.StatusAccepted
		return nil
	}

	if _, err := s.GetTransaction(ctx, tx.ID); err != nil {
		return err
	}
	return fmt.Errorf("transaction %d is no longer requested: %w", tx.ID, storage.ErrConflict)
}

// ListTransactions returns a group's transactions in log order.
func (s *SQLiteStore) ListTransactions(ctx context.Context, groupID string, status credit.Status) ([]*credit.Transaction, error) {
	query := "SELECT " + txColumns + " FROM credit_transactions WHERE group_id = ?"
	args := []any{groupID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*credit.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// MemberBalance computes a member's balance from the log: amounts given as
// the from party minus amounts received as the to party. Rows are summed with
// decimal arithmetic so the result matches calculator.CalculateBalances.
func (s *SQLiteStore) MemberBalance(ctx context.Context, groupID, memberID string, policy credit.BalancePolicy) (float64, error) {
	query := `SELECT from_member, amount
		FROM credit_transactions
		WHERE group_id = ? AND (from_member = ? OR to_member = ?)`
	args := []any{groupID, memberID, memberID}
	if policy != credit.PolicyAll {
		query += " AND status = ?"
		args = append(args, string(credit.StatusAccepted))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance for member %s: %w", memberID, err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var from string
		var amount float64
		if err := rows.Scan(&from, &amount); err != nil {
			return 0, fmt.Errorf("failed to scan balance row: %w", err)
		}
		if from == memberID {
			balance = balance.Add(decimal.NewFromFloat(amount))
		} else {
			balance = balance.Sub(decimal.NewFromFloat(amount))
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to compute balance for member %s: %w", memberID, err)
	}
	return balance.InexactFloat64(), nil
}

// DeleteExpiredRequests removes requested transactions created before the
// given unix time. Accepted transactions are never touched.
func (s *SQLiteStore) DeleteExpiredRequests(ctx context.Context, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM credit_transactions WHERE status = ? AND created_at < ?",
		string(credit.StatusRequested), before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired requests: %w", err)
	}
	return res.RowsAffected()
}

func scanTransaction(row scanner) (*credit.Transaction, error) {
	tx := &credit.Transaction{}
	var status string
	var acceptedAt sql.NullInt64
	if err := row.Scan(&tx.ID, &tx.GroupID, &tx.From, &tx.To, &tx.Amount, &status,
		&tx.AccepterID, &tx.CreatedAt, &acceptedAt); err != nil {
		return nil, err
	}

	parsed, err := credit.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	tx.Status = parsed
	if acceptedAt.Valid {
		tx.AcceptedAt = acceptedAt.Int64
	}
	return tx, nil
}
