// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict is returned when a conditional update lost a race.
	ErrConflict = errors.New("conflicting update")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group. The group.ID and CreatedAt fields are
	// populated by the store when empty.
	CreateGroup(ctx context.Context, group *credit.Group) error
	GetGroup(ctx context.Context, groupID string) (*credit.Group, error)
	// ListGroups returns the groups memberID belongs to.
	ListGroups(ctx context.Context, memberID string) ([]*credit.Group, error)
	UpdateGroupLimits(ctx context.Context, groupID string, debtLimit, creditLimit float64) error

	// AddMember joins a member to its group. Returns ErrAlreadyExists if the
	// member already belongs to the group.
	AddMember(ctx context.Context, member *credit.Member) error
	// GetMember returns the member without a hydrated balance.
	GetMember(ctx context.Context, groupID, memberID string) (*credit.Member, error)
	ListMembers(ctx context.Context, groupID string) ([]*credit.Member, error)

	// CreateTransaction appends to the log and assigns tx.ID.
	CreateTransaction(ctx context.Context, tx *credit.Transaction) error
	GetTransaction(ctx context.Context, txID int64) (*credit.Transaction, error)
	// MarkAccepted moves a requested transaction to accepted. Returns
	// ErrConflict if the stored row is no longer requested.
	MarkAccepted(ctx context.Context, tx *credit.Transaction) error
	// ListTransactions returns a group's log in id order. An empty status
	// returns every transaction.
	ListTransactions(ctx context.Context, groupID string, status credit.Status) ([]*credit.Transaction, error)
	// MemberBalance sums the transactions counted by policy for one member.
	MemberBalance(ctx context.Context, groupID, memberID string, policy credit.BalancePolicy) (float64, error)
	// DeleteExpiredRequests drops requested transactions created before the
	// given unix time and returns how many were removed.
	DeleteExpiredRequests(ctx context.Context, before int64) (int64, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
