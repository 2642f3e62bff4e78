package ledger

import (
	"errors"

	"StableLottery/internal/auth"
	"StableLottery/internal/oracle"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
	"StableLottery/internal/token"
)

var (
	ErrUnauthorized   = auth.ErrUnauthorized
	ErrNotTicketOwner = errors.New("signer does not own ticket")

	ErrLotteryNotOpen        = errors.New("lottery is not open")
	ErrDrawAlreadyExecuted   = errors.New("draw already executed")
	ErrLotteryNotCompleted   = errors.New("lottery is not completed")
	ErrAlreadyClaimed        = errors.New("ticket already claimed")
	ErrClaimWindowNotElapsed = errors.New("claim window not elapsed")
	ErrClaimWindowExpired    = errors.New("claim window expired")
	ErrWithdrawalLocked      = errors.New("treasury withdrawal time lock not yet reached")
	ErrAlreadyRecycled       = errors.New("unclaimed prizes already recycled")
	ErrInvalidCancellation   = errors.New("lottery cannot be cancelled in current state")
	ErrLotteryNotCancelled   = errors.New("lottery is not cancelled")
	ErrMintInUse             = errors.New("stable mint still has funds in flight")

	ErrInvalidTicketFormat    = errors.New("invalid ticket format")
	ErrDuplicateTicket        = errors.New("duplicate ticket")
	ErrUnsupportedLotteryType = errors.New("lottery type not supported")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrTicketLimitReached     = errors.New("ticket purchase limit reached")
	ErrTicketMismatch         = errors.New("ticket does not belong to lottery")

	ErrInsufficientFunds           = token.ErrInsufficientFunds
	ErrInvalidTokenAccount         = token.ErrInvalidTokenAccount
	ErrInsufficientTreasuryBalance = errors.New("insufficient treasury balance")
	ErrNotFound                    = store.ErrNotFound
	ErrAlreadyExists               = store.ErrAlreadyExists
	ErrSizeMismatch                = store.ErrSizeMismatch

	ErrStaleOracleData    = errors.New("stale oracle data")
	ErrOracleUnavailable  = oracle.ErrUnavailable
	ErrInvalidOraclePrice = errors.New("invalid oracle price")

	ErrArithmetic      = safemath.ErrOverflow
	ErrLedgerImbalance = errors.New("ledger imbalance")
)

// Class groups errors by what the caller can do about them.
type Class int

const (
	ClassUnknown Class = iota
	ClassAuthorization
	ClassState
	ClassValidation
	ClassResource
	ClassExternal
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassAuthorization:
		return "authorization"
	case ClassState:
		return "state"
	case ClassValidation:
		return "validation"
	case ClassResource:
		return "resource"
	case ClassExternal:
		return "external"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Retryable reports whether the same call may succeed later.
func (c Class) Retryable() bool {
	return c == ClassState || c == ClassExternal
}

var classes = []struct {
	err   error
	class Class
}{
	{ErrUnauthorized, ClassAuthorization},
	{ErrNotTicketOwner, ClassAuthorization},

	{ErrLotteryNotOpen, ClassState},
	{ErrDrawAlreadyExecuted, ClassState},
	{ErrLotteryNotCompleted, ClassState},
	{ErrAlreadyClaimed, ClassState},
	{ErrClaimWindowNotElapsed, ClassState},
	{ErrClaimWindowExpired, ClassState},
	{ErrWithdrawalLocked, ClassState},
	{ErrAlreadyRecycled, ClassState},
	{ErrInvalidCancellation, ClassState},
	{ErrLotteryNotCancelled, ClassState},
	{ErrMintInUse, ClassState},

	{ErrInvalidTicketFormat, ClassValidation},
	{ErrDuplicateTicket, ClassValidation},
	{ErrUnsupportedLotteryType, ClassValidation},
	{ErrInvalidAmount, ClassValidation},
	{ErrTicketLimitReached, ClassValidation},
	{ErrTicketMismatch, ClassValidation},

	{ErrInsufficientFunds, ClassResource},
	{ErrInvalidTokenAccount, ClassResource},
	{ErrInsufficientTreasuryBalance, ClassResource},
	{ErrNotFound, ClassResource},
	{ErrAlreadyExists, ClassResource},
	{ErrSizeMismatch, ClassResource},

	{ErrStaleOracleData, ClassExternal},
	{ErrOracleUnavailable, ClassExternal},
	{ErrInvalidOraclePrice, ClassExternal},

	{ErrArithmetic, ClassFatal},
	{ErrLedgerImbalance, ClassFatal},
}

// Classify maps err onto the error taxonomy.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return ClassUnknown
}
