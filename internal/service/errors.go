package service

import (
	"errors"
	"strconv"

	"connectrpc.com/connect"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/storage"
)

// Metadata keys attached to limit violations.
const (
	MetaLimitKind      = "Limit-Kind"
	MetaLimit          = "Limit"
	MetaOffendingValue = "Offending-Value"
)

// toConnectError maps ledger and storage errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, credit.ErrInvalidAmount),
		errors.Is(err, credit.ErrSameMember),
		errors.Is(err, credit.ErrGroupMismatch),
		errors.Is(err, credit.ErrInvalidLimits):
		code = connect.CodeInvalidArgument
	case errors.Is(err, credit.ErrExceedsLimit),
		errors.Is(err, credit.ErrAlreadyAccepted):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, credit.ErrNotMyTransaction),
		errors.Is(err, credit.ErrCantAcceptTx),
		errors.Is(err, ErrNotMember):
		code = connect.CodePermissionDenied
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		code = connect.CodeAlreadyExists
	case errors.Is(err, storage.ErrConflict):
		code = connect.CodeAborted
	}

	out := connect.NewError(code, err)

	var limitErr *credit.LimitError
	if errors.As(err, &limitErr) {
		out.Meta().Set(MetaLimitKind, string(limitErr.Kind))
		out.Meta().Set(MetaLimit, strconv.FormatFloat(limitErr.Limit, 'f', -1, 64))
		out.Meta().Set(MetaOffendingValue, strconv.FormatFloat(limitErr.Value, 'f', -1, 64))
	}
	return out
}
