package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/creditledger/internal/calculator"
	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/metrics"
	"github.com/mmynk/creditledger/internal/storage"
)

// ErrNotMember is returned when the acting user does not belong to the group.
var ErrNotMember = errors.New("not a member of the group")

// Direction says which leg of a new transaction the requester takes.
type Direction int

const (
	// Give makes the requester the creditor (from).
	Give Direction = iota
	// Receive makes the requester the debtor (to).
	Receive
)

func (d Direction) String() string {
	if d == Receive {
		return "receive"
	}
	return "give"
}

// Ledger runs ledger operations against a store. Every write that depends on
// balances loads, validates, and persists while holding the group's lock, so
// two acceptances in one group never validate against the same balances.
type Ledger struct {
	store   storage.Store
	policy  credit.BalancePolicy
	metrics *metrics.Metrics
	locks   *groupLocks
	now     func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithBalancePolicy selects which transactions count towards balances.
func WithBalancePolicy(p credit.BalancePolicy) LedgerOption {
	return func(l *Ledger) { l.policy = p }
}

// WithMetrics records ledger events on m.
func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger over store.
func NewLedger(store storage.Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:  store,
		policy: credit.PolicyAccepted,
		locks:  newGroupLocks(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the balance policy in force.
func (l *Ledger) Policy() credit.BalancePolicy {
	return l.policy
}

// GroupParams describes a new group. Nil limits take the defaults.
type GroupParams struct {
	Name            string
	ParentReference string
	DebtLimit       *float64
	CreditLimit     *float64
}

// CreateGroup creates a group and joins the creator to it.
func (l *Ledger) CreateGroup(ctx context.Context, actorID, actorName string, params GroupParams) (*credit.Group, *credit.Member, error) {
	group := credit.NewGroup("", params.Name)
	group.ParentReference = params.ParentReference
	if params.DebtLimit != nil {
		group.DebtLimit = *params.DebtLimit
	}
	if params.CreditLimit != nil {
		group.CreditLimit = *params.CreditLimit
	}
	if err := group.ValidateLimits(); err != nil {
		return nil, nil, err
	}
	group.CreatedAt = l.now().Unix()

	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, nil, err
	}

	member := credit.NewMember(actorID, actorName, group.ID)
	member.JoinedAt = group.CreatedAt
	if err := l.store.AddMember(ctx, member); err != nil {
		return nil, nil, err
	}
	member.SetBalance(0)

	slog.Info("Group created", "group_id", group.ID, "creator", actorID,
		"debt_limit", group.DebtLimit, "credit_limit", group.CreditLimit)
	return group, member, nil
}

// Group returns a group the actor belongs to.
func (l *Ledger) Group(ctx context.Context, actorID, groupID string) (*credit.Group, error) {
	if err := l.requireMember(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	return l.store.GetGroup(ctx, groupID)
}

// Groups lists the groups the actor belongs to.
func (l *Ledger) Groups(ctx context.Context, actorID string) ([]*credit.Group, error) {
	return l.store.ListGroups(ctx, actorID)
}

// UpdateLimits replaces a group's limits. Existing balances are not
// revalidated; the new bounds apply to the next request or acceptance.
func (l *Ledger) UpdateLimits(ctx context.Context, actorID, groupID string, debtLimit, creditLimit float64) (*credit.Group, error) {
	unlock := l.locks.lock(groupID)
	defer unlock()

	if err := l.requireMember(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.DebtLimit, group.CreditLimit = debtLimit, creditLimit
	if err := group.ValidateLimits(); err != nil {
		return nil, err
	}
	if err := l.store.UpdateGroupLimits(ctx, groupID, debtLimit, creditLimit); err != nil {
		return nil, err
	}

	slog.Info("Group limits updated", "group_id", groupID, "actor", actorID,
		"debt_limit", debtLimit, "credit_limit", creditLimit)
	return group, nil
}

// Join adds the actor to a group with a zero balance.
func (l *Ledger) Join(ctx context.Context, actorID, actorName, groupID string) (*credit.Member, error) {
	member := credit.NewMember(actorID, actorName, groupID)
	member.JoinedAt = l.now().Unix()
	if err := l.store.AddMember(ctx, member); err != nil {
		return nil, err
	}
	member.SetBalance(0)

	slog.Info("Member joined", "group_id", groupID, "member_id", actorID)
	return member, nil
}

// Members lists a group's members with their current balances.
func (l *Ledger) Members(ctx context.Context, actorID, groupID string) ([]*credit.Member, error) {
	if err := l.requireMember(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	members, err := l.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := l.hydrate(ctx, members...); err != nil {
		return nil, err
	}
	return members, nil
}

// RequestCredit records a requested transaction between the actor and
// counterpartyID. The counterparty becomes the accepter.
func (l *Ledger) RequestCredit(ctx context.Context, actorID, groupID, counterpartyID string, amount float64, dir Direction) (*credit.Transaction, error) {
	unlock := l.locks.lock(groupID)
	defer unlock()

	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	actor, err := l.member(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	counterparty, err := l.store.GetMember(ctx, groupID, counterpartyID)
	if err != nil {
		return nil, err
	}
	if err := l.hydrate(ctx, actor, counterparty); err != nil {
		return nil, err
	}

	var tx *credit.Transaction
	if dir == Receive {
		tx, err = actor.RequestReceiveCredit(group, counterparty, amount)
	} else {
		tx, err = actor.RequestGiveCredit(group, counterparty, amount)
	}
	if err != nil {
		l.reject(err, "group_id", groupID, "actor", actorID, "direction", dir.String())
		return nil, err
	}

	tx.CreatedAt = l.now().Unix()
	if err := l.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	l.metrics.ObserveTransaction(metrics.EventRequested, "", 1)
	slog.Info("Credit requested", "tx_id", tx.ID, "group_id", groupID, "from", tx.From,
		"to", tx.To, "amount", tx.Amount, "accepter", tx.AccepterID)
	return tx, nil
}

// Accept moves a requested transaction to accepted after checking both
// balances against the group's current limits. An unknown id and a
// transaction the actor is not a party to both report ErrNotMyTransaction.
func (l *Ledger) Accept(ctx context.Context, actorID string, txID int64) (*credit.Transaction, error) {
	tx, err := l.partyTransaction(ctx, actorID, txID)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.lock(tx.GroupID)
	defer unlock()

	// Reload under the lock; another acceptance may have landed meanwhile.
	tx, err = l.partyTransaction(ctx, actorID, txID)
	if err != nil {
		return nil, err
	}

	group, err := l.store.GetGroup(ctx, tx.GroupID)
	if err != nil {
		return nil, err
	}
	actor, err := l.store.GetMember(ctx, tx.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	counterparty, err := l.store.GetMember(ctx, tx.GroupID, tx.Counterparty(actorID))
	if err != nil {
		return nil, err
	}
	if err := l.hydrate(ctx, actor, counterparty); err != nil {
		return nil, err
	}

	// Under PolicyAll the pending row already counts towards both balances.
	// Validate against the balances without it so it is not applied twice.
	if l.policy.Counts(tx.Status) && tx.Status == credit.StatusRequested {
		unapply(tx, actor, counterparty)
	}

	accepted, err := actor.AcceptTx(group, tx, counterparty)
	if err != nil {
		l.reject(err, "tx_id", txID, "actor", actorID)
		return nil, err
	}

	accepted.AcceptedAt = l.now().Unix()
	if err := l.store.MarkAccepted(ctx, accepted); err != nil {
		return nil, err
	}

	l.metrics.ObserveTransaction(metrics.EventAccepted, "", 1)
	slog.Info("Transaction accepted", "tx_id", accepted.ID, "group_id", accepted.GroupID,
		"actor", actorID, "amount", accepted.Amount)
	return accepted, nil
}

// Transaction returns one transaction of a group the actor belongs to.
func (l *Ledger) Transaction(ctx context.Context, actorID string, txID int64) (*credit.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := l.requireMember(ctx, actorID, tx.GroupID); err != nil {
		return nil, err
	}
	return tx, nil
}

// Transactions lists a group's log, optionally filtered by status.
func (l *Ledger) Transactions(ctx context.Context, actorID, groupID string, status credit.Status) ([]*credit.Transaction, error) {
	if err := l.requireMember(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	return l.store.ListTransactions(ctx, groupID, status)
}

// Balances materializes every member's balance from the group's log.
func (l *Ledger) Balances(ctx context.Context, actorID, groupID string) ([]calculator.MemberBalance, error) {
	if err := l.requireMember(ctx, actorID, groupID); err != nil {
		return nil, err
	}
	members, err := l.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.ListTransactions(ctx, groupID, "")
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	forBalance := make([]calculator.TxForBalance, len(txs))
	for i, tx := range txs {
		forBalance[i] = calculator.TxForBalance{From: tx.From, To: tx.To, Amount: tx.Amount, Status: tx.Status}
	}

	return calculator.CalculateBalances(ids, forBalance, l.policy), nil
}

// ExpireRequests deletes requested transactions older than ttl.
// Accepted transactions are never removed.
func (l *Ledger) ExpireRequests(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, nil
	}
	before := l.now().Add(-ttl).Unix()
	n, err := l.store.DeleteExpiredRequests(ctx, before)
	if err != nil {
		return 0, err
	}
	l.metrics.ObserveTransaction(metrics.EventExpired, "", int(n))
	return n, nil
}

func (l *Ledger) requireMember(ctx context.Context, actorID, groupID string) error {
	_, err := l.member(ctx, groupID, actorID)
	return err
}

// member loads the actor's membership, reporting a missing row as ErrNotMember.
// A missing group is still ErrNotFound.
func (l *Ledger) member(ctx context.Context, groupID, actorID string) (*credit.Member, error) {
	m, err := l.store.GetMember(ctx, groupID, actorID)
	if errors.Is(err, storage.ErrNotFound) {
		if _, gerr := l.store.GetGroup(ctx, groupID); gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("%w: %s in group %s", ErrNotMember, actorID, groupID)
	}
	return m, err
}

// partyTransaction loads a transaction the actor is a party to.
func (l *Ledger) partyTransaction(ctx context.Context, actorID string, txID int64) (*credit.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, txID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !tx.Involves(actorID)) {
		l.reject(credit.ErrNotMyTransaction, "tx_id", txID, "actor", actorID)
		return nil, credit.ErrNotMyTransaction
	}
	return tx, err
}

func (l *Ledger) hydrate(ctx context.Context, members ...*credit.Member) error {
	for _, m := range members {
		balance, err := l.store.MemberBalance(ctx, m.GroupID, m.ID, l.policy)
		if err != nil {
			return err
		}
		m.SetBalance(balance)
	}
	return nil
}

func (l *Ledger) reject(err error, attrs ...any) {
	reason := rejectionReason(err)
	l.metrics.ObserveTransaction(metrics.EventRejected, reason, 1)
	slog.Info("Transaction rejected", append(attrs, "reason", reason, "error", err)...)
}

// unapply removes tx's effect from hydrated balances.
func unapply(tx *credit.Transaction, members ...*credit.Member) {
	for _, m := range members {
		balance, err := m.Balance()
		if err != nil {
			continue
		}
		m.SetBalance(balance - tx.Delta(m.ID))
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, credit.ErrExceedsLimit):
		return "exceeds_limit"
	case errors.Is(err, credit.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, credit.ErrSameMember):
		return "same_member"
	case errors.Is(err, credit.ErrGroupMismatch):
		return "group_mismatch"
	case errors.Is(err, credit.ErrNotMyTransaction):
		return "not_my_transaction"
	case errors.Is(err, credit.ErrCantAcceptTx):
		return "cant_accept"
	case errors.Is(err, credit.ErrAlreadyAccepted):
		return "already_accepted"
	case errors.Is(err, credit.ErrMissingBalance):
		return "missing_balance"
	default:
		return "other"
	}
}
