package credit

import "fmt"

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
)

// ParseStatus converts a stored or user supplied status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRequested, StatusAccepted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Transaction is a directed transfer between two members of a group.
type Transaction struct {
	// ID is assigned by the store; zero until persisted.
	ID int64

	GroupID string

	// From is the creditor; its balance increases by Amount.
	From string

	// To is the debtor; its balance decreases by Amount.
	To string

	Amount float64

	Status Status

	// AccepterID is the only member allowed to accept: the counterparty of
	// whoever made the request.
	AccepterID string

	// CreatedAt and AcceptedAt are Unix timestamps set by the store.
	CreatedAt  int64
	AcceptedAt int64
}

// Involves reports whether memberID is one of the two legs.
func (t *Transaction) Involves(memberID string) bool {
	return t.From == memberID || t.To == memberID
}

// Counterparty returns the other leg for memberID, or "" if memberID is not a party.
func (t *Transaction) Counterparty(memberID string) string {
	switch memberID {
	case t.From:
		return t.To
	case t.To:
		return t.From
	}
	return ""
}

// Delta returns the balance change the transaction implies for memberID.
func (t *Transaction) Delta(memberID string) float64 {
	switch memberID {
	case t.From:
		return t.Amount
	case t.To:
		return -t.Amount
	}
	return 0
}
