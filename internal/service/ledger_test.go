package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/metrics"
	"github.com/mmynk/creditledger/internal/storage"
	"github.com/mmynk/creditledger/internal/storage/sqlite"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ledgerFixture struct {
	ledger  *Ledger
	store   *sqlite.SQLiteStore
	clock   *testClock
	metrics *metrics.Metrics
	group   *credit.Group
}

// newLedgerFixture creates a group owned by alice that bob has joined.
// Carol is registered nowhere.
func newLedgerFixture(t *testing.T, params GroupParams, opts ...LedgerOption) *ledgerFixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	m := metrics.New()
	opts = append([]LedgerOption{WithClock(clock.Now), WithMetrics(m)}, opts...)
	ledger := NewLedger(store, opts...)

	if params.Name == "" {
		params.Name = "Street"
	}
	group, _, err := ledger.CreateGroup(context.Background(), "alice", "Alice", params)
	require.NoError(t, err)
	_, err = ledger.Join(context.Background(), "bob", "Bob", group.ID)
	require.NoError(t, err)

	return &ledgerFixture{ledger: ledger, store: store, clock: clock, metrics: m, group: group}
}

func (f *ledgerFixture) balance(t *testing.T, memberID string) float64 {
	t.Helper()
	members, err := f.ledger.Members(context.Background(), "alice", f.group.ID)
	require.NoError(t, err)
	for _, m := range members {
		if m.ID == memberID {
			b, err := m.Balance()
			require.NoError(t, err)
			return b
		}
	}
	t.Fatalf("member %s not found", memberID)
	return 0
}

func (f *ledgerFixture) eventCount(t *testing.T, event, reason string) float64 {
	t.Helper()
	families, err := f.metrics.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "creditledger_transactions_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["event"] == event && labels["reason"] == reason {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func float(v float64) *float64 { return &v }

func TestLedger_RequestAndAccept(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 50, Give)
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, credit.StatusRequested, tx.Status)
	assert.Equal(t, "alice", tx.From)
	assert.Equal(t, "bob", tx.To)
	assert.Equal(t, "bob", tx.AccepterID)

	// Requests do not move balances under the accepted policy.
	assert.Equal(t, 0.0, f.balance(t, "alice"))

	accepted, err := f.ledger.Accept(ctx, "bob", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, credit.StatusAccepted, accepted.Status)
	assert.Equal(t, f.clock.Now().Unix(), accepted.AcceptedAt)

	assert.Equal(t, 50.0, f.balance(t, "alice"))
	assert.Equal(t, -50.0, f.balance(t, "bob"))

	balances, err := f.ledger.Balances(ctx, "bob", f.group.ID)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "alice", balances[0].MemberID)
	assert.Equal(t, 50.0, balances[0].NetBalance)
	assert.Equal(t, -50.0, balances[1].NetBalance)

	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventRequested, ""))
	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventAccepted, ""))
	assert.Zero(t, f.ledger.locks.len(), "group locks should be released")
}

func TestLedger_ReceiveDirection(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	tx, err := f.ledger.RequestCredit(ctx, "bob", f.group.ID, "alice", 30, Receive)
	require.NoError(t, err)
	assert.Equal(t, "alice", tx.From)
	assert.Equal(t, "bob", tx.To)
	assert.Equal(t, "alice", tx.AccepterID)

	_, err = f.ledger.Accept(ctx, "alice", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, f.balance(t, "alice"))
	assert.Equal(t, -30.0, f.balance(t, "bob"))
}

func TestLedger_AcceptAuthorization(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	_, err := f.ledger.Join(ctx, "carol", "Carol", f.group.ID)
	require.NoError(t, err)

	tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 10, Give)
	require.NoError(t, err)

	_, err = f.ledger.Accept(ctx, "alice", tx.ID)
	assert.ErrorIs(t, err, credit.ErrCantAcceptTx)

	_, err = f.ledger.Accept(ctx, "carol", tx.ID)
	assert.ErrorIs(t, err, credit.ErrNotMyTransaction)

	_, err = f.ledger.Accept(ctx, "bob", tx.ID)
	require.NoError(t, err)

	_, err = f.ledger.Accept(ctx, "bob", tx.ID)
	assert.ErrorIs(t, err, credit.ErrAlreadyAccepted)

	_, err = f.ledger.Accept(ctx, "bob", 9999)
	assert.ErrorIs(t, err, credit.ErrNotMyTransaction)

	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventRejected, "cant_accept"))
	assert.Equal(t, 2.0, f.eventCount(t, metrics.EventRejected, "not_my_transaction"))
	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventRejected, "already_accepted"))
}

func TestLedger_AcceptByOutsiderMatchesUnknownID(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	// Dave owns a group of his own but is not in alice's.
	_, _, err := f.ledger.CreateGroup(ctx, "dave", "Dave", GroupParams{Name: "Elsewhere"})
	require.NoError(t, err)

	tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 10, Give)
	require.NoError(t, err)

	_, existingErr := f.ledger.Accept(ctx, "dave", tx.ID)
	_, missingErr := f.ledger.Accept(ctx, "dave", tx.ID+1000)
	assert.ErrorIs(t, existingErr, credit.ErrNotMyTransaction)
	assert.ErrorIs(t, missingErr, credit.ErrNotMyTransaction)
	assert.Equal(t, existingErr.Error(), missingErr.Error())
	assert.Equal(t, 2.0, f.eventCount(t, metrics.EventRejected, "not_my_transaction"))

	stored, err := f.ledger.Transaction(ctx, "bob", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, credit.StatusRequested, stored.Status)
}

func TestLedger_DecimalBalancesMatchValidation(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{CreditLimit: float(0.6)})
	ctx := context.Background()

	for _, amount := range []float64{0.1, 0.2} {
		tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", amount, Give)
		require.NoError(t, err)
		_, err = f.ledger.Accept(ctx, "bob", tx.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 0.3, f.balance(t, "alice"))
	assert.Equal(t, -0.3, f.balance(t, "bob"))

	balances, err := f.ledger.Balances(ctx, "alice", f.group.ID)
	require.NoError(t, err)
	for _, b := range balances {
		assert.Equal(t, b.NetBalance, f.balance(t, b.MemberID))
	}

	// 0.3 + 0.3 lands exactly on the limit.
	_, err = f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 0.3, Give)
	require.NoError(t, err)
}

func TestLedger_RequestRejections(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	tests := []struct {
		name         string
		actor        string
		counterparty string
		amount       float64
		wantErr      error
	}{
		{"over credit limit", "alice", "bob", 150, credit.ErrExceedsLimit},
		{"zero amount", "alice", "bob", 0, credit.ErrInvalidAmount},
		{"negative amount", "alice", "bob", -5, credit.ErrInvalidAmount},
		{"self transfer", "alice", "alice", 5, credit.ErrSameMember},
		{"actor not in group", "carol", "bob", 5, ErrNotMember},
		{"counterparty not in group", "alice", "carol", 5, storage.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.RequestCredit(ctx, tt.actor, f.group.ID, tt.counterparty, tt.amount, Give)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing group", func(t *testing.T) {
		_, err := f.ledger.RequestCredit(ctx, "alice", "missing", "bob", 5, Give)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	txs, err := f.ledger.Transactions(ctx, "alice", f.group.ID, "")
	require.NoError(t, err)
	assert.Empty(t, txs, "rejected requests must not be stored")
	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventRejected, "exceeds_limit"))
}

func TestLedger_AcceptRevalidatesLimits(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	first, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 60, Give)
	require.NoError(t, err)
	second, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 60, Give)
	require.NoError(t, err)

	_, err = f.ledger.Accept(ctx, "bob", first.ID)
	require.NoError(t, err)

	_, err = f.ledger.Accept(ctx, "bob", second.ID)
	var limitErr *credit.LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, credit.LimitCredit, limitErr.Kind)
	assert.Equal(t, 120.0, limitErr.Value)

	stored, err := f.ledger.Transaction(ctx, "bob", second.ID)
	require.NoError(t, err)
	assert.Equal(t, credit.StatusRequested, stored.Status, "failed acceptance leaves the request pending")

	// Raising the ceiling lets the same request through.
	_, err = f.ledger.UpdateLimits(ctx, "alice", f.group.ID, -200, 200)
	require.NoError(t, err)
	_, err = f.ledger.Accept(ctx, "bob", second.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, f.balance(t, "alice"))
}

func TestLedger_PolicyAllCountsPendingOnce(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{}, WithBalancePolicy(credit.PolicyAll))
	ctx := context.Background()

	tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 60, Give)
	require.NoError(t, err)
	assert.Equal(t, 60.0, f.balance(t, "alice"), "pending request counts under PolicyAll")

	// A second request of 60 would push alice to 120 counting the pending one.
	_, err = f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 60, Give)
	assert.ErrorIs(t, err, credit.ErrExceedsLimit)

	_, err = f.ledger.Accept(ctx, "bob", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, f.balance(t, "alice"))
	assert.Equal(t, -60.0, f.balance(t, "bob"))
}

func TestLedger_ConcurrentAcceptsRespectDebtLimit(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{CreditLimit: float(1000)})
	ctx := context.Background()

	const n = 20
	ids := make([]int64, n)
	for i := range ids {
		tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 10, Give)
		require.NoError(t, err)
		ids[i] = tx.ID
	}

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		limited  atomic.Int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.ledger.Accept(ctx, "bob", id)
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, credit.ErrExceedsLimit):
				limited.Add(1)
			default:
				t.Errorf("unexpected error accepting %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(10), accepted.Load())
	assert.Equal(t, int32(10), limited.Load())
	assert.Equal(t, -100.0, f.balance(t, "bob"))
	assert.Equal(t, 100.0, f.balance(t, "alice"))
	assert.Zero(t, f.ledger.locks.len())
}

func TestLedger_Groups(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{Name: "Allotment", DebtLimit: float(-50), CreditLimit: float(75)})
	ctx := context.Background()

	assert.Equal(t, -50.0, f.group.DebtLimit)
	assert.Equal(t, 75.0, f.group.CreditLimit)

	t.Run("invalid limits at creation", func(t *testing.T) {
		_, _, err := f.ledger.CreateGroup(ctx, "alice", "Alice", GroupParams{Name: "x", DebtLimit: float(10), CreditLimit: float(10)})
		assert.ErrorIs(t, err, credit.ErrInvalidLimits)
	})

	t.Run("read requires membership", func(t *testing.T) {
		_, err := f.ledger.Group(ctx, "carol", f.group.ID)
		assert.ErrorIs(t, err, ErrNotMember)
		_, err = f.ledger.Group(ctx, "alice", "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = f.ledger.Balances(ctx, "carol", f.group.ID)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("update limits", func(t *testing.T) {
		_, err := f.ledger.UpdateLimits(ctx, "carol", f.group.ID, -10, 10)
		assert.ErrorIs(t, err, ErrNotMember)
		_, err = f.ledger.UpdateLimits(ctx, "alice", f.group.ID, 10, -10)
		assert.ErrorIs(t, err, credit.ErrInvalidLimits)

		group, err := f.ledger.UpdateLimits(ctx, "bob", f.group.ID, -20, 20)
		require.NoError(t, err)
		assert.Equal(t, 20.0, group.CreditLimit)

		_, err = f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 25, Give)
		assert.ErrorIs(t, err, credit.ErrExceedsLimit)
	})

	t.Run("join", func(t *testing.T) {
		_, err := f.ledger.Join(ctx, "bob", "Bob", f.group.ID)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		_, err = f.ledger.Join(ctx, "carol", "Carol", "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		groups, err := f.ledger.Groups(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, f.group.ID, groups[0].ID)
	})
}

func TestLedger_ExpireRequests(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	old, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 10, Give)
	require.NoError(t, err)
	kept, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 20, Give)
	require.NoError(t, err)
	_, err = f.ledger.Accept(ctx, "bob", kept.ID)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	fresh, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 5, Give)
	require.NoError(t, err)

	f.clock.Advance(45 * time.Minute)
	n, err := f.ledger.ExpireRequests(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.ledger.Transaction(ctx, "alice", old.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.ledger.Transaction(ctx, "alice", kept.ID)
	assert.NoError(t, err, "accepted transactions never expire")
	_, err = f.ledger.Transaction(ctx, "alice", fresh.ID)
	assert.NoError(t, err)

	n, err = f.ledger.ExpireRequests(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n, "zero ttl disables expiry")
	assert.Equal(t, 1.0, f.eventCount(t, metrics.EventExpired, ""))
}

func TestRequestExpirer(t *testing.T) {
	f := newLedgerFixture(t, GroupParams{})
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		done := make(chan error, 1)
		go func() { done <- NewRequestExpirer(f.ledger, 0, time.Millisecond).Run(ctx) }()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("disabled expirer did not return")
		}
	})

	t.Run("sweeps until cancelled", func(t *testing.T) {
		tx, err := f.ledger.RequestCredit(ctx, "alice", f.group.ID, "bob", 10, Give)
		require.NoError(t, err)
		f.clock.Advance(2 * time.Hour)

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- NewRequestExpirer(f.ledger, time.Hour, 10*time.Millisecond).Run(runCtx) }()

		require.Eventually(t, func() bool {
			_, err := f.store.GetTransaction(ctx, tx.ID)
			return errors.Is(err, storage.ErrNotFound)
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("expirer did not stop")
		}
	})
}

func TestGroupLocksSerialize(t *testing.T) {
	locks := newGroupLocks()
	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("g")
			defer unlock()
			cur := inside.Add(1)
			if cur > maxSeen.Load() {
				maxSeen.Store(cur)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, locks.len())

	// Different groups do not block each other.
	unlockA := locks.lock("a")
	unlockB := locks.lock("b")
	assert.Equal(t, 2, locks.len())
	unlockA()
	unlockB()
}
