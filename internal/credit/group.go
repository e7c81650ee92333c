package credit

const (
	DefaultDebtLimit   = -100.0
	DefaultCreditLimit = 100.0
)

// Group is a bounded context sharing one pair of individual limits.
type Group struct {
	// ID is the unique identifier for the group (UUID format when generated).
	ID string

	// Name is the display name of the group.
	Name string

	// ParentReference points at another group. It is informational only:
	// limits are never inherited.
	ParentReference string

	// DebtLimit is the floor on any member's balance.
	DebtLimit float64

	// CreditLimit is the ceiling on any member's balance.
	CreditLimit float64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// NewGroup returns a group with the default limits.
func NewGroup(id, name string) *Group {
	return &Group{
		ID:          id,
		Name:        name,
		DebtLimit:   DefaultDebtLimit,
		CreditLimit: DefaultCreditLimit,
	}
}

// ValidateLimits checks that the debt limit sits below the credit limit.
func (g *Group) ValidateLimits() error {
	if !(g.DebtLimit < g.CreditLimit) {
		return ErrInvalidLimits
	}
	return nil
}
