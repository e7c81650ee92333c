package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/creditledger/internal/credit"
)

func TestCalculateBalances(t *testing.T) {
	tests := []struct {
		name      string
		members   []string
		txs       []TxForBalance
		policy    credit.BalancePolicy
		wantByID  map[string]float64
		wantCount int
	}{
		{
			name:    "no transactions",
			members: []string{"A", "B"},
			policy:  credit.PolicyAccepted,
			wantByID: map[string]float64{
				"A": 0,
				"B": 0,
			},
			wantCount: 2,
		},
		{
			name:    "two transfers and a repayment",
			members: []string{"A", "B"},
			txs: []TxForBalance{
				{From: "A", To: "B", Amount: 50, Status: credit.StatusAccepted},
				{From: "A", To: "B", Amount: 10, Status: credit.StatusAccepted},
				{From: "B", To: "A", Amount: 2, Status: credit.StatusAccepted},
			},
			policy: credit.PolicyAccepted,
			wantByID: map[string]float64{
				"A": 50 + 10 - 2,
				"B": -50 - 10 + 2,
			},
			wantCount: 2,
		},
		{
			name:    "accepted policy skips requests",
			members: []string{"A", "B"},
			txs: []TxForBalance{
				{From: "A", To: "B", Amount: 30, Status: credit.StatusAccepted},
				{From: "A", To: "B", Amount: 70, Status: credit.StatusRequested},
			},
			policy:    credit.PolicyAccepted,
			wantByID:  map[string]float64{"A": 30, "B": -30},
			wantCount: 2,
		},
		{
			name:    "all policy counts requests",
			members: []string{"A", "B"},
			txs: []TxForBalance{
				{From: "A", To: "B", Amount: 30, Status: credit.StatusAccepted},
				{From: "A", To: "B", Amount: 70, Status: credit.StatusRequested},
			},
			policy:    credit.PolicyAll,
			wantByID:  map[string]float64{"A": 100, "B": -100},
			wantCount: 2,
		},
		{
			name:    "members only seen in the log are included",
			members: []string{"A"},
			txs: []TxForBalance{
				{From: "C", To: "A", Amount: 5, Status: credit.StatusAccepted},
			},
			policy:    credit.PolicyAccepted,
			wantByID:  map[string]float64{"A": -5, "C": 5},
			wantCount: 2,
		},
		{
			name:    "decimal sums do not drift",
			members: []string{"A", "B"},
			txs: []TxForBalance{
				{From: "A", To: "B", Amount: 0.1, Status: credit.StatusAccepted},
				{From: "A", To: "B", Amount: 0.2, Status: credit.StatusAccepted},
			},
			policy:    credit.PolicyAccepted,
			wantByID:  map[string]float64{"A": 0.3, "B": -0.3},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := CalculateBalances(tt.members, tt.txs, tt.policy)
			require.Len(t, balances, tt.wantCount)

			for _, b := range balances {
				want, ok := tt.wantByID[b.MemberID]
				require.True(t, ok, "unexpected member %s", b.MemberID)
				assert.Equal(t, want, b.NetBalance, "member %s", b.MemberID)
				assert.Equal(t, b.TotalGiven-b.TotalReceived, b.NetBalance, "member %s", b.MemberID)
			}

			assert.Zero(t, GroupTotal(balances))
		})
	}
}

func TestCalculateBalances_SortedByMember(t *testing.T) {
	balances := CalculateBalances([]string{"C", "A", "B"}, nil, credit.PolicyAccepted)

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.MemberID
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestCalculateBalances_Totals(t *testing.T) {
	balances := CalculateBalances([]string{"A", "B", "C"}, []TxForBalance{
		{From: "A", To: "B", Amount: 40, Status: credit.StatusAccepted},
		{From: "B", To: "C", Amount: 15, Status: credit.StatusAccepted},
		{From: "C", To: "A", Amount: 5, Status: credit.StatusAccepted},
	}, credit.PolicyAccepted)

	byID := make(map[string]MemberBalance)
	for _, b := range balances {
		byID[b.MemberID] = b
	}

	assert.Equal(t, 40.0, byID["A"].TotalGiven)
	assert.Equal(t, 5.0, byID["A"].TotalReceived)
	assert.Equal(t, 35.0, byID["A"].NetBalance)
	assert.Equal(t, -25.0, byID["B"].NetBalance)
	assert.Equal(t, -10.0, byID["C"].NetBalance)
	assert.Zero(t, GroupTotal(balances))
}
