package ledger

import (
	"errors"
	"fmt"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// RecycleUnclaimed moves whatever is left in a lottery's pool to the
// treasury once the claim window has closed. It runs at most once per
// lottery.
func (e *Engine) RecycleUnclaimed(signers auth.Signers, lotteryID uint64) (uint64, error) {
	var (
		amount   uint64
		operator string
	)
	err := e.store.Update(func(tx *store.Tx) error {
		cfg, err := e.requireOperator(tx, signers)
		if err != nil {
			return err
		}
		operator = cfg.AuthorizedOperator.String()
		lot, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		if lot.State != model.StateCompleted {
			return fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotCompleted, lotteryID, lot.State)
		}
		if lot.IsRecycled {
			return fmt.Errorf("%w: lottery %d", ErrAlreadyRecycled, lotteryID)
		}
		if e.now()-lot.DrawTimestamp <= seconds(e.params.ClaimWindow) {
			return fmt.Errorf("%w: drawn at %d", ErrClaimWindowNotElapsed, lot.DrawTimestamp)
		}

		amount = lot.PrizePool
		if err := e.creditTreasury(tx, lot, lotAt, amount, cfg.AuthorizedOperator, true); err != nil {
			return err
		}
		lot.PrizePool = 0
		lot.Recycled = amount
		lot.IsRecycled = true
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return 0, fmt.Errorf("recycle unclaimed: %w", err)
	}

	e.log.Info("ledger: unclaimed prizes recycled", "lottery_id", lotteryID, "amount", amount)
	e.emit(&model.Event{Type: model.EventUnclaimedRecycled, LotteryID: lotteryID, Actor: operator, Amount: amount})
	return amount, nil
}

// WithdrawTreasury pays amount from the treasury vault to the operator. At
// most one withdrawal per timelock period.
func (e *Engine) WithdrawTreasury(signers auth.Signers, amount uint64) (model.Treasury, error) {
	if amount == 0 {
		return model.Treasury{}, fmt.Errorf("withdraw treasury: %w: amount must be greater than 0", ErrInvalidAmount)
	}

	var (
		tr       model.Treasury
		operator string
	)
	err := e.store.Update(func(tx *store.Tx) error {
		cfg, err := e.requireOperator(tx, signers)
		if err != nil {
			return err
		}
		operator = cfg.AuthorizedOperator.String()

		at := e.addr.Treasury()
		if err := tx.Read(at, &tr); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: treasury is empty", ErrInsufficientTreasuryBalance)
			}
			return err
		}
		if amount > tr.Balance {
			return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientTreasuryBalance, tr.Balance, amount)
		}
		now := e.now()
		if now-tr.LastWithdrawalTime <= seconds(e.params.WithdrawalTimelock) {
			return fmt.Errorf("%w: last withdrawal at %d", ErrWithdrawalLocked, tr.LastWithdrawalTime)
		}

		if err := e.tokens.Transfer(tx, tr.Mint, at, cfg.AuthorizedOperator, amount); err != nil {
			return err
		}
		if tr.Balance, err = safemath.Sub(tr.Balance, amount); err != nil {
			return err
		}
		if tr.TotalWithdrawn, err = safemath.Add(tr.TotalWithdrawn, amount); err != nil {
			return err
		}
		tr.LastWithdrawalTime = now
		return tx.Write(at, &tr)
	})
	if err != nil {
		return model.Treasury{}, fmt.Errorf("withdraw treasury: %w", err)
	}

	e.log.Info("ledger: treasury withdrawn", "amount", amount, "balance", tr.Balance)
	e.emit(&model.Event{Type: model.EventTreasuryWithdrawn, Actor: operator, Amount: amount})
	return tr, nil
}
