package credit

import "fmt"

// BalancePolicy selects which transactions count towards a member's balance
// when a collaborator materializes it from the log.
type BalancePolicy string

const (
	// PolicyAccepted counts only accepted transactions. Pending requests do
	// not reserve capacity; acceptance re-validates instead.
	PolicyAccepted BalancePolicy = "accepted"
	// PolicyAll counts every stored transaction regardless of status.
	PolicyAll BalancePolicy = "all"
)

// ParseBalancePolicy parses a configured policy. The empty string selects PolicyAccepted.
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch BalancePolicy(s) {
	case "", PolicyAccepted:
		return PolicyAccepted, nil
	case PolicyAll:
		return PolicyAll, nil
	}
	return "", fmt.Errorf("unknown balance policy %q", s)
}

// Counts reports whether a transaction in the given status moves balances.
func (p BalancePolicy) Counts(status Status) bool {
	if p == PolicyAll {
		return true
	}
	return status == StatusAccepted
}
