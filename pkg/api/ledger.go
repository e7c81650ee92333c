package api

// Group is a ledger group and its individual balance bounds.
type Group struct {
	Id              string  `json:"id"`
	Name            string  `json:"name"`
	ParentReference string  `json:"parentReference,omitempty"`
	DebtLimit       float64 `json:"debtLimit"`
	CreditLimit     float64 `json:"creditLimit"`
	CreatedAt       int64   `json:"createdAt"`
}

// Member is a group member with its current balance.
type Member struct {
	Id       string  `json:"id"`
	Name     string  `json:"name"`
	GroupId  string  `json:"groupId"`
	Balance  float64 `json:"balance"`
	JoinedAt int64   `json:"joinedAt"`
}

// Transaction moves Amount from the debtor To onto the creditor From once accepted.
type Transaction struct {
	Id         int64   `json:"id"`
	GroupId    string  `json:"groupId"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	AccepterId string  `json:"accepterId"`
	CreatedAt  int64   `json:"createdAt"`
	AcceptedAt int64   `json:"acceptedAt,omitempty"`
}

type MemberBalance struct {
	MemberId      string  `json:"memberId"`
	NetBalance    float64 `json:"netBalance"`
	TotalGiven    float64 `json:"totalGiven"`
	TotalReceived float64 `json:"totalReceived"`
}

// CreateGroupRequest creates a group and joins the caller to it.
// Unset limits take the defaults.
type CreateGroupRequest struct {
	Name            string   `json:"name" validate:"required,max=100"`
	ParentReference string   `json:"parentReference,omitempty" validate:"max=100"`
	DebtLimit       *float64 `json:"debtLimit,omitempty"`
	CreditLimit     *float64 `json:"creditLimit,omitempty"`
	DisplayName     string   `json:"displayName,omitempty" validate:"max=100"`
}

type CreateGroupResponse struct {
	Group  *Group  `json:"group"`
	Member *Member `json:"member"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateGroupLimitsRequest struct {
	GroupId     string  `json:"groupId" validate:"required"`
	DebtLimit   float64 `json:"debtLimit"`
	CreditLimit float64 `json:"creditLimit"`
}

type UpdateGroupLimitsResponse struct {
	Group *Group `json:"group"`
}

type JoinGroupRequest struct {
	GroupId     string `json:"groupId" validate:"required"`
	DisplayName string `json:"displayName,omitempty" validate:"max=100"`
}

type JoinGroupResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct {
	GroupId string `json:"groupId" validate:"required"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

// RequestCreditRequest asks a counterparty to take part in a transfer. It is
// used by both RequestGiveCredit and RequestReceiveCredit; the caller is the
// from party when giving and the to party when receiving.
type RequestCreditRequest struct {
	GroupId        string  `json:"groupId" validate:"required"`
	CounterpartyId string  `json:"counterpartyId" validate:"required"`
	Amount         float64 `json:"amount" validate:"gt=0"`
}

type RequestCreditResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type AcceptTransactionRequest struct {
	TransactionId int64 `json:"transactionId" validate:"gt=0"`
}

type AcceptTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type GetTransactionRequest struct {
	TransactionId int64 `json:"transactionId" validate:"gt=0"`
}

type GetTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// ListTransactionsRequest lists a group's log. An empty status lists everything.
type ListTransactionsRequest struct {
	GroupId string `json:"groupId" validate:"required"`
	Status  string `json:"status,omitempty" validate:"omitempty,oneof=requested accepted"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId" validate:"required"`
}

// GetGroupBalancesResponse reports balances under the server's balance
// policy. Total is zero for a consistent ledger.
type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
	Policy   string           `json:"policy"`
	Total    float64          `json:"total"`
}
