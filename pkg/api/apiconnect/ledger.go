package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/creditledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "creditledger.v1.LedgerService"

// Procedure paths of the LedgerService RPCs.
const (
	LedgerServiceCreateGroupProcedure          = "/creditledger.v1.LedgerService/CreateGroup"
	LedgerServiceGetGroupProcedure             = "/creditledger.v1.LedgerService/GetGroup"
	LedgerServiceListGroupsProcedure           = "/creditledger.v1.LedgerService/ListGroups"
	LedgerServiceUpdateGroupLimitsProcedure    = "/creditledger.v1.LedgerService/UpdateGroupLimits"
	LedgerServiceJoinGroupProcedure            = "/creditledger.v1.LedgerService/JoinGroup"
	LedgerServiceListMembersProcedure          = "/creditledger.v1.LedgerService/ListMembers"
	LedgerServiceRequestGiveCreditProcedure    = "/creditledger.v1.LedgerService/RequestGiveCredit"
	LedgerServiceRequestReceiveCreditProcedure = "/creditledger.v1.LedgerService/RequestReceiveCredit"
	LedgerServiceAcceptTransactionProcedure    = "/creditledger.v1.LedgerService/AcceptTransaction"
	LedgerServiceGetTransactionProcedure       = "/creditledger.v1.LedgerService/GetTransaction"
	LedgerServiceListTransactionsProcedure     = "/creditledger.v1.LedgerService/ListTransactions"
	LedgerServiceGetGroupBalancesProcedure     = "/creditledger.v1.LedgerService/GetGroupBalances"
)

// LedgerServiceHandler is the server side of creditledger.v1.LedgerService.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroupLimits(context.Context, *connect.Request[api.UpdateGroupLimitsRequest]) (*connect.Response[api.UpdateGroupLimitsResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RequestGiveCredit(context.Context, *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error)
	RequestReceiveCredit(context.Context, *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error)
	AcceptTransaction(context.Context, *connect.Request[api.AcceptTransactionRequest]) (*connect.Response[api.AcceptTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc. It returns the path to
// mount the handler on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateGroupProcedure, connect.NewUnaryHandler(LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(LedgerServiceGetGroupProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(LedgerServiceListGroupsProcedure, connect.NewUnaryHandler(LedgerServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(LedgerServiceUpdateGroupLimitsProcedure, connect.NewUnaryHandler(LedgerServiceUpdateGroupLimitsProcedure, svc.UpdateGroupLimits, opts...))
	mux.Handle(LedgerServiceJoinGroupProcedure, connect.NewUnaryHandler(LedgerServiceJoinGroupProcedure, svc.JoinGroup, opts...))
	mux.Handle(LedgerServiceListMembersProcedure, connect.NewUnaryHandler(LedgerServiceListMembersProcedure, svc.ListMembers, opts...))
	mux.Handle(LedgerServiceRequestGiveCreditProcedure, connect.NewUnaryHandler(LedgerServiceRequestGiveCreditProcedure, svc.RequestGiveCredit, opts...))
	mux.Handle(LedgerServiceRequestReceiveCreditProcedure, connect.NewUnaryHandler(LedgerServiceRequestReceiveCreditProcedure, svc.RequestReceiveCredit, opts...))
	mux.Handle(LedgerServiceAcceptTransactionProcedure, connect.NewUnaryHandler(LedgerServiceAcceptTransactionProcedure, svc.AcceptTransaction, opts...))
	mux.Handle(LedgerServiceGetTransactionProcedure, connect.NewUnaryHandler(LedgerServiceGetTransactionProcedure, svc.GetTransaction, opts...))
	mux.Handle(LedgerServiceListTransactionsProcedure, connect.NewUnaryHandler(LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts...))
	mux.Handle(LedgerServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	return "/creditledger.v1.LedgerService/", mux
}

// LedgerServiceClient is a client for creditledger.v1.LedgerService.
type LedgerServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroupLimits(context.Context, *connect.Request[api.UpdateGroupLimitsRequest]) (*connect.Response[api.UpdateGroupLimitsResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RequestGiveCredit(context.Context, *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error)
	RequestReceiveCredit(context.Context, *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error)
	AcceptTransaction(context.Context, *connect.Request[api.AcceptTransactionRequest]) (*connect.Response[api.AcceptTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewLedgerServiceClient returns a client for the service at baseURL, e.g.
// "http://localhost:8080".
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		createGroup:          connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+LedgerServiceCreateGroupProcedure, opts...),
		getGroup:             connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+LedgerServiceGetGroupProcedure, opts...),
		listGroups:           connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+LedgerServiceListGroupsProcedure, opts...),
		updateGroupLimits:    connect.NewClient[api.UpdateGroupLimitsRequest, api.UpdateGroupLimitsResponse](httpClient, baseURL+LedgerServiceUpdateGroupLimitsProcedure, opts...),
		joinGroup:            connect.NewClient[api.JoinGroupRequest, api.JoinGroupResponse](httpClient, baseURL+LedgerServiceJoinGroupProcedure, opts...),
		listMembers:          connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+LedgerServiceListMembersProcedure, opts...),
		requestGiveCredit:    connect.NewClient[api.RequestCreditRequest, api.RequestCreditResponse](httpClient, baseURL+LedgerServiceRequestGiveCreditProcedure, opts...),
		requestReceiveCredit: connect.NewClient[api.RequestCreditRequest, api.RequestCreditResponse](httpClient, baseURL+LedgerServiceRequestReceiveCreditProcedure, opts...),
		acceptTransaction:    connect.NewClient[api.AcceptTransactionRequest, api.AcceptTransactionResponse](httpClient, baseURL+LedgerServiceAcceptTransactionProcedure, opts...),
		getTransaction:       connect.NewClient[api.GetTransactionRequest, api.GetTransactionResponse](httpClient, baseURL+LedgerServiceGetTransactionProcedure, opts...),
		listTransactions:     connect.NewClient[api.ListTransactionsRequest, api.ListTransactionsResponse](httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
		getGroupBalances:     connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createGroup          *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup             *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups           *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	updateGroupLimits    *connect.Client[api.UpdateGroupLimitsRequest, api.UpdateGroupLimitsResponse]
	joinGroup            *connect.Client[api.JoinGroupRequest, api.JoinGroupResponse]
	listMembers          *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	requestGiveCredit    *connect.Client[api.RequestCreditRequest, api.RequestCreditResponse]
	requestReceiveCredit *connect.Client[api.RequestCreditRequest, api.RequestCreditResponse]
	acceptTransaction    *connect.Client[api.AcceptTransactionRequest, api.AcceptTransactionResponse]
	getTransaction       *connect.Client[api.GetTransactionRequest, api.GetTransactionResponse]
	listTransactions     *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
	getGroupBalances     *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func (c *ledgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) UpdateGroupLimits(ctx context.Context, req *connect.Request[api.UpdateGroupLimitsRequest]) (*connect.Response[api.UpdateGroupLimitsResponse], error) {
	return c.updateGroupLimits.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RequestGiveCredit(ctx context.Context, req *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error) {
	return c.requestGiveCredit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RequestReceiveCredit(ctx context.Context, req *connect.Request[api.RequestCreditRequest]) (*connect.Response[api.RequestCreditResponse], error) {
	return c.requestReceiveCredit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AcceptTransaction(ctx context.Context, req *connect.Request[api.AcceptTransactionRequest]) (*connect.Response[api.AcceptTransactionResponse], error) {
	return c.acceptTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
