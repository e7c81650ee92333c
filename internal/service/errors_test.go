package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/creditledger/internal/credit"
	"github.com/mmynk/creditledger/internal/storage"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{credit.ErrInvalidAmount, connect.CodeInvalidArgument},
		{credit.ErrSameMember, connect.CodeInvalidArgument},
		{fmt.Errorf("%w: x", credit.ErrGroupMismatch), connect.CodeInvalidArgument},
		{credit.ErrInvalidLimits, connect.CodeInvalidArgument},
		{&credit.LimitError{Kind: credit.LimitDebt, Limit: -100, Value: -110}, connect.CodeFailedPrecondition},
		{credit.ErrAlreadyAccepted, connect.CodeFailedPrecondition},
		{credit.ErrNotMyTransaction, connect.CodePermissionDenied},
		{credit.ErrCantAcceptTx, connect.CodePermissionDenied},
		{fmt.Errorf("%w: bob", ErrNotMember), connect.CodePermissionDenied},
		{fmt.Errorf("group x: %w", storage.ErrNotFound), connect.CodeNotFound},
		{storage.ErrAlreadyExists, connect.CodeAlreadyExists},
		{storage.ErrConflict, connect.CodeAborted},
		{errors.New("disk on fire"), connect.CodeInternal},
		{connect.NewError(connect.CodeUnauthenticated, errors.New("no")), connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := toConnectError(tt.err).Code(); got != tt.want {
				t.Errorf("toConnectError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestToConnectErrorLimitMetadata(t *testing.T) {
	err := fmt.Errorf("accept: %w", &credit.LimitError{
		Kind: credit.LimitDebt, MemberID: "bob", Limit: -100, Value: -110.5,
	})
	meta := toConnectError(err).Meta()

	if got := meta.Get(MetaLimitKind); got != "debt" {
		t.Errorf("%s = %q, want debt", MetaLimitKind, got)
	}
	if got := meta.Get(MetaLimit); got != "-100" {
		t.Errorf("%s = %q, want -100", MetaLimit, got)
	}
	if got := meta.Get(MetaOffendingValue); got != "-110.5" {
		t.Errorf("%s = %q, want -110.5", MetaOffendingValue, got)
	}
}
