// Package credit is the domain core of the mutual-credit ledger.
//
// Members of a group extend credit to one another. A transfer moves value from
// a creditor ("from", whose balance goes up) to a debtor ("to", whose balance
// goes down), and both resulting balances must stay inside the group's limits:
//
//	from.balance + amount <= group.CreditLimit
//	to.balance   - amount >= group.DebtLimit
//
// Transactions are two-phase. One party requests, the counterparty accepts,
// and the limits are checked again at acceptance because balances may have
// moved in between.
//
// The package performs no I/O. Callers load groups and members, hydrate each
// member's balance with SetBalance, call into the core, and persist whatever
// comes back. Serializing that read-validate-commit sequence is the caller's
// job; see service.Ledger.
package credit
