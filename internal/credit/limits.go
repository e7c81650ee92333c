package credit

import "fmt"

// ValidateTransfer decides whether moving amount from one member to another
// keeps both balances within the group's limits. It reads the group's limits
// and the members' balances as they are at the time of the call.
//
// Checks run in a fixed order: amount, same member, group, creditor's credit
// limit, debtor's debt limit. Limit failures are returned as *LimitError.
func ValidateTransfer(group *Group, from, to *Member, amount float64) error {
	if !(amount > 0) {
		return ErrInvalidAmount
	}
	if from.SameParty(to) {
		return ErrSameMember
	}
	if from.GroupID != to.GroupID || from.GroupID != group.ID {
		return fmt.Errorf("%w: group %s, members in %s and %s",
			ErrGroupMismatch, group.ID, from.GroupID, to.GroupID)
	}

	fromBalance, err := from.Balance()
	if err != nil {
		return err
	}
	toBalance, err := to.Balance()
	if err != nil {
		return err
	}

	newFrom := fromBalance + amount
	if !(newFrom <= group.CreditLimit) {
		return &LimitError{Kind: LimitCredit, MemberID: from.ID, Limit: group.CreditLimit, Value: newFrom}
	}

	newTo := toBalance - amount
	if !(newTo >= group.DebtLimit) {
		return &LimitError{Kind: LimitDebt, MemberID: to.ID, Limit: group.DebtLimit, Value: newTo}
	}

	return nil
}
