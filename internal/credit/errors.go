package credit

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrSameMember       = errors.New("a member cannot transact with itself")
	ErrGroupMismatch    = errors.New("members and transaction must belong to the same group")
	ErrExceedsLimit     = errors.New("transaction exceeds group limits")
	ErrMissingBalance   = errors.New("balance has not been set")
	ErrNotMyTransaction = errors.New("member is not a party to the transaction")
	ErrCantAcceptTx     = errors.New("member is not allowed to accept the transaction")
	ErrAlreadyAccepted  = errors.New("transaction already accepted")
	ErrInvalidLimits    = errors.New("debt limit must be lower than credit limit")
)

// LimitKind names the group limit a transfer would break.
type LimitKind string

const (
	// LimitCredit is the ceiling on the creditor's balance.
	LimitCredit LimitKind = "credit"
	// LimitDebt is the floor on the debtor's balance.
	LimitDebt LimitKind = "debt"
)

// LimitError reports a transfer rejected by a group limit. Value is the
// balance the member would have ended up with.
type LimitError struct {
	Kind     LimitKind
	MemberID string
	Limit    float64
	Value    float64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit %g exceeded for member %s: balance would be %g",
		e.Kind, e.Limit, e.MemberID, e.Value)
}

// Unwrap lets errors.Is(err, ErrExceedsLimit) match.
func (e *LimitError) Unwrap() error {
	return ErrExceedsLimit
}
