package credit

import "fmt"

// RequestGiveCredit proposes that m extends amount of credit to counterparty:
// m is the creditor (From) and counterparty must accept.
func (m *Member) RequestGiveCredit(group *Group, counterparty *Member, amount float64) (*Transaction, error) {
	return request(group, m, counterparty, amount, counterparty)
}

// RequestReceiveCredit proposes that counterparty extends amount of credit to m:
// m is the debtor (To) and counterparty must accept.
func (m *Member) RequestReceiveCredit(group *Group, counterparty *Member, amount float64) (*Transaction, error) {
	return request(group, counterparty, m, amount, counterparty)
}

func request(group *Group, from, to *Member, amount float64, accepter *Member) (*Transaction, error) {
	if err := ValidateTransfer(group, from, to, amount); err != nil {
		return nil, err
	}
	return &Transaction{
		GroupID:    group.ID,
		From:       from.ID,
		To:         to.ID,
		Amount:     amount,
		Status:     StatusRequested,
		AccepterID: accepter.ID,
	}, nil
}

// AcceptTx moves a requested transaction to accepted. m must be the designated
// accepter and counterparty the other leg; both need hydrated balances because
// the limits are checked again. On any error tx is left untouched.
//
// Accepting an already accepted transaction fails with ErrAlreadyAccepted.
func (m *Member) AcceptTx(group *Group, tx *Transaction, counterparty *Member) (*Transaction, error) {
	if !tx.Involves(m.ID) {
		return nil, ErrNotMyTransaction
	}
	if m.ID != tx.AccepterID {
		return nil, ErrCantAcceptTx
	}
	if tx.Status == StatusAccepted {
		return nil, ErrAlreadyAccepted
	}
	if counterparty == nil || counterparty.ID != tx.Counterparty(m.ID) {
		return nil, fmt.Errorf("%w: counterparty does not match", ErrNotMyTransaction)
	}
	if tx.GroupID != group.ID {
		return nil, fmt.Errorf("%w: transaction in %s, group %s", ErrGroupMismatch, tx.GroupID, group.ID)
	}

	from, to := m, counterparty
	if m.ID == tx.To {
		from, to = counterparty, m
	}
	if err := ValidateTransfer(group, from, to, tx.Amount); err != nil {
		return nil, err
	}

	tx.Status = StatusAccepted
	return tx, nil
}
