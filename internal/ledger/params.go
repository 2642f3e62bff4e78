package ledger

import (
	"errors"
	"time"
)

// Protocol constants. They are deployment configuration, never per-call
// arguments.
const (
	FeeBps               uint64 = 250 // 2.5%
	BpsDenominator       uint64 = 10_000
	MaxOracleStaleness          = 60 * time.Second
	ClaimWindow                 = 7 * 24 * time.Hour
	WithdrawalTimelock          = 24 * time.Hour
	MaxTicketsPerLottery uint64 = 10_000
)

// Params carries the constants an Engine runs with.
type Params struct {
	FeeBps               uint64
	MaxOracleStaleness   time.Duration
	ClaimWindow          time.Duration
	WithdrawalTimelock   time.Duration
	MaxTicketsPerLottery uint64
}

func DefaultParams() Params {
	return Params{
		FeeBps:               FeeBps,
		MaxOracleStaleness:   MaxOracleStaleness,
		ClaimWindow:          ClaimWindow,
		WithdrawalTimelock:   WithdrawalTimelock,
		MaxTicketsPerLottery: MaxTicketsPerLottery,
	}
}

func (p Params) Validate() error {
	if p.FeeBps > BpsDenominator {
		return errors.New("fee bps must not exceed 10000")
	}
	if p.MaxOracleStaleness < time.Second {
		return errors.New("max oracle staleness must be at least 1s")
	}
	if p.ClaimWindow <= 0 {
		return errors.New("claim window must be greater than 0")
	}
	if p.WithdrawalTimelock < 0 {
		return errors.New("withdrawal timelock must not be negative")
	}
	if p.MaxTicketsPerLottery == 0 {
		return errors.New("max tickets per lottery must be greater than 0")
	}
	return nil
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
