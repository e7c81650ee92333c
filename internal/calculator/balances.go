package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/creditledger/internal/credit"
)

// TxForBalance represents a transaction with the minimal information needed for balance calculations.
type TxForBalance struct {
	From   string // Creditor, balance goes up
	To     string // Debtor, balance goes down
	Amount float64
	Status credit.Status
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID      string
	NetBalance    float64 // TotalGiven - TotalReceived
	TotalGiven    float64 // Credit extended as the "from" party
	TotalReceived float64 // Credit received as the "to" party
}

// CalculateBalances materializes member balances from a group's transaction log.
//
// Algorithm:
// - Skip transactions the policy does not count
// - From party: TotalGiven += amount
// - To party: TotalReceived += amount
// - net_balance = total_given - total_received
//
// Every id in memberIDs appears in the result even without activity; members
// only seen in the log are included as well. Sums are exact decimals, and the
// result is sorted by member id.
func CalculateBalances(memberIDs []string, txs []TxForBalance, policy credit.BalancePolicy) []MemberBalance {
	type totals struct {
		given    decimal.Decimal
		received decimal.Decimal
	}
	acc := make(map[string]*totals, len(memberIDs))
	get := func(id string) *totals {
		t, ok := acc[id]
		if !ok {
			t = &totals{given: decimal.Zero, received: decimal.Zero}
			acc[id] = t
		}
		return t
	}

	for _, id := range memberIDs {
		get(id)
	}

	for _, tx := range txs {
		if !policy.Counts(tx.Status) {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		from := get(tx.From)
		from.given = from.given.Add(amount)
		to := get(tx.To)
		to.received = to.received.Add(amount)
	}

	balances := make([]MemberBalance, 0, len(acc))
	for id, t := range acc {
		balances = append(balances, MemberBalance{
			MemberID:      id,
			NetBalance:    t.given.Sub(t.received).InexactFloat64(),
			TotalGiven:    t.given.InexactFloat64(),
			TotalReceived: t.received.InexactFloat64(),
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].MemberID < balances[j].MemberID
	})

	return balances
}

// GroupTotal sums net balances. A consistent ledger always totals zero.
func GroupTotal(balances []MemberBalance) float64 {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(decimal.NewFromFloat(b.NetBalance))
	}
	return total.InexactFloat64()
}
