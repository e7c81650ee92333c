package credit

import "fmt"

// Member is a party inside one group.
//
// The balance is owned by whoever persists the ledger. It starts out unset and
// reading it before SetBalance is an error, so a forgotten hydration never
// validates against a silent zero.
type Member struct {
	// ID identifies the member within its group. Two members with the same ID
	// are the same party.
	ID string

	// Name is the display name.
	Name string

	// GroupID references the owning group.
	GroupID string

	// JoinedAt is the Unix timestamp when the member joined the group.
	JoinedAt int64

	balance    float64
	hasBalance bool
}

// NewMember returns a member with no balance set.
func NewMember(id, name, groupID string) *Member {
	return &Member{ID: id, Name: name, GroupID: groupID}
}

// Balance returns the last balance set on the member.
func (m *Member) Balance() (float64, error) {
	if !m.hasBalance {
		return 0, fmt.Errorf("member %s: %w", m.ID, ErrMissingBalance)
	}
	return m.balance, nil
}

// SetBalance stores the member's current balance. No limits are checked here.
func (m *Member) SetBalance(balance float64) {
	m.balance = balance
	m.hasBalance = true
}

// HasBalance reports whether SetBalance has been called.
func (m *Member) HasBalance() bool {
	return m.hasBalance
}

// SameParty reports whether both members are the same party.
func (m *Member) SameParty(other *Member) bool {
	return other != nil && m.ID == other.ID
}
