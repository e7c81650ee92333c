package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/creditledger/internal/auth"
	"github.com/mmynk/creditledger/internal/calculator"
	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/middleware"
	"github.com/mmynk/creditledger/pkg/api"
	"github.com/mmynk/creditledger/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the LedgerService RPC interface on top of a Ledger.
// Every call acts as the authenticated user.
type LedgerService struct {
	ledger *Ledger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledger *Ledger) *LedgerService {
	return &LedgerService{ledger: ledger}
}

// CreateGroup creates a group with the caller as its first member.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "actor", actor)

	group, member, err := s.ledger.CreateGroup(ctx, actor, displayName(ctx, req.Msg.DisplayName), GroupParams{
		Name:            req.Msg.Name,
		ParentReference: req.Msg.ParentReference,
		DebtLimit:       req.Msg.DebtLimit,
		CreditLimit:     req.Msg.CreditLimit,
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{
		Group:  toAPIGroup(group),
		Member: toAPIMember(member),
	}), nil
}

// GetGroup returns a group and its members with balances.
func (s *LedgerService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.ledger.Group(ctx, actor, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}
	members, err := s.ledger.Members(ctx, actor, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(members),
	}), nil
}

// ListGroups lists the caller's groups.
func (s *LedgerService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.Groups(ctx, actor)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	slog.Info("ListGroups successful", "actor", actor, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroupLimits replaces a group's debt and credit limits.
func (s *LedgerService) UpdateGroupLimits(ctx context.Context, req *connect.Request[api.UpdateGroupLimitsRequest]) (*connect.Response[api.UpdateGroupLimitsResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroupLimits request received", "group_id", req.Msg.GroupId,
		"debt_limit", req.Msg.DebtLimit, "credit_limit", req.Msg.CreditLimit)

	group, err := s.ledger.UpdateLimits(ctx, actor, req.Msg.GroupId, req.Msg.DebtLimit, req.Msg.CreditLimit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateGroupLimitsResponse{Group: toAPIGroup(group)}), nil
}

// JoinGroup adds the caller to a group with a zero balance.
func (s *LedgerService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinGroup request received", "group_id", req.Msg.GroupId, "actor", actor)

	member, err := s.ledger.Join(ctx, actor, displayName(ctx, req.Msg.DisplayName), req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.JoinGroupResponse{Member: toAPIMember(member)}), nil
}

// ListMembers lists a group's members with their current balances.
func (s *LedgerService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.ledger.Members(ctx, actor, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(members)}), nil
}

// RequestGiveCredit proposes that the caller extends credit to the counterparty.
func (s *LedgerService) RequestGiveCredit(ctx context.Context, req *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error) {
	return s.requestCredit(ctx, req.Msg, Give)
}

// RequestReceiveCredit proposes that the counterparty extends credit to the caller.
func (s *LedgerService) RequestReceiveCredit(ctx context.Context, req *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error) {
	return s.requestCredit(ctx, req.Msg, Receive)
}

func (s *LedgerService) requestCredit(ctx context.Context, msg *api.RequestCreditRequest, dir Direction) (*connect.Response[api.RequestCreditResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RequestCredit request received",
		"group_id", msg.GroupId,
		"counterparty", msg.CounterpartyId,
		"amount", msg.Amount,
		"direction", dir.String(),
	)

	tx, err := s.ledger.RequestCredit(ctx, actor, msg.GroupId, msg.CounterpartyId, msg.Amount, dir)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RequestCreditResponse{Transaction: toAPITransaction(tx)}), nil
}

// AcceptTransaction accepts a requested transaction as its counterparty.
func (s *LedgerService) AcceptTransaction(ctx context.Context, req *connect.Request[api.AcceptTransactionRequest]) (*connect.Response[api.AcceptTransactionResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AcceptTransaction request received", "tx_id", req.Msg.TransactionId, "actor", actor)

	tx, err := s.ledger.Accept(ctx, actor, req.Msg.TransactionId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AcceptTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// GetTransaction returns one transaction from a group the caller belongs to.
func (s *LedgerService) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.Transaction(ctx, actor, req.Msg.TransactionId)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// ListTransactions lists a group's transactions, optionally filtered by status.
func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	var status credit.Status
	if req.Msg.Status != "" {
		if status, err = credit.ParseStatus(req.Msg.Status); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	txs, err := s.ledger.Transactions(ctx, actor, req.Msg.GroupId, status)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = toAPITransaction(tx)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

// GetGroupBalances materializes balances from the group's transaction log.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupId)

	balances, err := s.ledger.Balances(ctx, actor, req.Msg.GroupId)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			MemberId:      b.MemberID,
			NetBalance:    b.NetBalance,
			TotalGiven:    b.TotalGiven,
			TotalReceived: b.TotalReceived,
		}
	}

	slog.Info("GetGroupBalances successful", "group_id", req.Msg.GroupId, "members_count", len(out))
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances: out,
		Policy:   string(s.ledger.Policy()),
		Total:    calculator.GroupTotal(balances),
	}), nil
}

func actorID(ctx context.Context) (string, error) {
	id := middleware.GetUserID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// displayName prefers the name given in the request, then the token's name,
// then the email.
func displayName(ctx context.Context, requested string) string {
	if requested != "" {
		return requested
	}
	if name := middleware.GetDisplayName(ctx); name != "" {
		return name
	}
	if email := middleware.GetEmail(ctx); email != "" {
		return email
	}
	return middleware.GetUserID(ctx)
}

func toAPIGroup(g *credit.Group) *api.Group {
	return &api.Group{
		Id:              g.ID,
		Name:            g.Name,
		ParentReference: g.ParentReference,
		DebtLimit:       g.DebtLimit,
		CreditLimit:     g.CreditLimit,
		CreatedAt:       g.CreatedAt,
	}
}

func toAPIMember(m *credit.Member) *api.Member {
	out := &api.Member{
		Id:       m.ID,
		Name:     m.Name,
		GroupId:  m.GroupID,
		JoinedAt: m.JoinedAt,
	}
	if balance, err := m.Balance(); err == nil {
		out.Balance = balance
	}
	return out
}

func toAPIMembers(members []*credit.Member) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = toAPIMember(m)
	}
	return out
}

func toAPITransaction(tx *credit.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:         tx.ID,
		GroupId:    tx.GroupID,
		From:       tx.From,
		To:         tx.To,
		Amount:     tx.Amount,
		Status:     string(tx.Status),
		AccepterId: tx.AccepterID,
		CreatedAt:  tx.CreatedAt,
		AcceptedAt: tx.AcceptedAt,
	}
}
