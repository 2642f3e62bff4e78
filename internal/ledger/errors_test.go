package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err       error
		want      Class
		retryable bool
	}{
		{ErrUnauthorized, ClassAuthorization, false},
		{ErrNotTicketOwner, ClassAuthorization, false},
		{fmt.Errorf("execute draw: %w", ErrDrawAlreadyExecuted), ClassState, true},
		{ErrClaimWindowNotElapsed, ClassState, true},
		{ErrWithdrawalLocked, ClassState, true},
		{fmt.Errorf("update config: %w", ErrMintInUse), ClassState, true},
		{ErrInvalidTicketFormat, ClassValidation, false},
		{ErrDuplicateTicket, ClassValidation, false},
		{ErrInsufficientFunds, ClassResource, false},
		{ErrNotFound, ClassResource, false},
		{fmt.Errorf("execute draw: %w", ErrStaleOracleData), ClassExternal, true},
		{ErrOracleUnavailable, ClassExternal, true},
		{ErrArithmetic, ClassFatal, false},
		{errors.New("something else"), ClassUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := Classify(tt.err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.retryable, got.Retryable())
		})
	}
	require.Equal(t, ClassUnknown, Classify(nil))
	require.Equal(t, "validation", ClassValidation.String())
}
