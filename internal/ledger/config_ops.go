package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// InitializeConfig creates the singleton Config. The operator pays for it
// and must sign.
func (e *Engine) InitializeConfig(signers auth.Signers, operator, mint solana.PublicKey) (model.Config, error) {
	if err := auth.RequireSigner(operator, signers); err != nil {
		return model.Config{}, err
	}
	if mint.IsZero() {
		return model.Config{}, fmt.Errorf("%w: stable mint is required", ErrInvalidTokenAccount)
	}

	cfg := model.Config{
		AuthorizedOperator: operator,
		StableMint:         mint,
		CreatedAt:          e.now(),
	}
	err := e.store.Update(func(tx *store.Tx) error {
		return tx.Create(e.addr.Config(), &cfg, operator)
	})
	if err != nil {
		return model.Config{}, fmt.Errorf("initialize config: %w", err)
	}

	e.log.Info("ledger: config initialized", "operator", operator, "mint", mint)
	e.emit(&model.Event{Type: model.EventConfigInitialized, Actor: operator.String(), Note: mint.String()})
	return cfg, nil
}

// ConfigUpdate lists the Config fields an operator may change. Nil fields
// are left alone.
type ConfigUpdate struct {
	NewOperator *solana.PublicKey
	NewMint     *solana.PublicKey
}

func (e *Engine) UpdateConfig(signers auth.Signers, upd ConfigUpdate) (model.Config, error) {
	var cfg model.Config
	err := e.store.Update(func(tx *store.Tx) error {
		var err error
		if cfg, err = e.requireOperator(tx, signers); err != nil {
			return err
		}
		if upd.NewOperator != nil {
			if upd.NewOperator.IsZero() {
				return fmt.Errorf("%w: zero operator", ErrUnauthorized)
			}
			cfg.AuthorizedOperator = *upd.NewOperator
		}
		if upd.NewMint != nil && *upd.NewMint != cfg.StableMint {
			if upd.NewMint.IsZero() {
				return fmt.Errorf("%w: zero mint", ErrInvalidTokenAccount)
			}
			if err := e.switchMint(tx, *upd.NewMint); err != nil {
				return err
			}
			cfg.StableMint = *upd.NewMint
		}
		return tx.Write(e.addr.Config(), &cfg)
	})
	if err != nil {
		return model.Config{}, fmt.Errorf("update config: %w", err)
	}

	e.log.Info("ledger: config updated", "operator", cfg.AuthorizedOperator, "mint", cfg.StableMint)
	e.emit(&model.Event{
		Type:  model.EventConfigUpdated,
		Actor: cfg.AuthorizedOperator.String(),
		Note:  cfg.StableMint.String(),
	})
	return cfg, nil
}

// switchMint moves the treasury vault to mint. It refuses while any funds
// held under the old mint can still reach the treasury: an open lottery, a
// drawn pool not yet recycled, or an unwithdrawn treasury balance. Cancelled
// pools keep refunding in the mint they were sold in.
func (e *Engine) switchMint(tx *store.Tx, mint solana.PublicKey) error {
	err := tx.Scan(model.KindLottery, func(ent store.Entry) error {
		var lot model.Lottery
		if err := ent.Decode(&lot); err != nil {
			return fmt.Errorf("decode lottery %s: %w", ent.Address, err)
		}
		switch {
		case lot.State == model.StateCreated:
			return fmt.Errorf("%w: lottery %d is open", ErrMintInUse, lot.LotteryID)
		case lot.State == model.StateCompleted && !lot.IsRecycled && lot.PrizePool > 0:
			return fmt.Errorf("%w: lottery %d holds %d unrecycled", ErrMintInUse, lot.LotteryID, lot.PrizePool)
		}
		return nil
	})
	if err != nil {
		return err
	}

	at := e.addr.Treasury()
	if !tx.Exists(at) {
		return nil
	}
	var tr model.Treasury
	if err := tx.Read(at, &tr); err != nil {
		return err
	}
	if tr.Balance > 0 {
		return fmt.Errorf("%w: treasury holds %d of %s", ErrMintInUse, tr.Balance, tr.Mint)
	}
	tr.Mint = mint
	return tx.Write(at, &tr)
}

// CreateLottery opens the next lottery of type lt for sales and its pool
// vault.
func (e *Engine) CreateLottery(signers auth.Signers, lt model.LotteryType) (model.Lottery, error) {
	format, ok := lt.Format()
	if !ok {
		return model.Lottery{}, fmt.Errorf("%w: %s", ErrUnsupportedLotteryType, lt)
	}

	var lot model.Lottery
	err := e.store.Update(func(tx *store.Tx) error {
		cfg, err := e.requireOperator(tx, signers)
		if err != nil {
			return err
		}
		id, err := safemath.Add(cfg.LotteryCount, 1)
		if err != nil {
			return err
		}

		now := e.now()
		lot = model.Lottery{
			LotteryID:   id,
			LotteryType: lt,
			State:       model.StateCreated,
			TicketPrice: format.TicketPrice,
			MaxNumber:   format.MaxNumber,
			CreatedBy:   cfg.AuthorizedOperator,
			Mint:        cfg.StableMint,
			CreatedAt:   now,
			ScheduledAt: now + seconds(format.Cadence),
		}
		at := e.addr.Lottery(id)
		if err := tx.Create(at, &lot, cfg.AuthorizedOperator); err != nil {
			return err
		}
		if err := e.tokens.Open(tx, at, cfg.StableMint); err != nil {
			return fmt.Errorf("open pool vault: %w", err)
		}

		cfg.LotteryCount = id
		return tx.Write(e.addr.Config(), &cfg)
	})
	if err != nil {
		return model.Lottery{}, fmt.Errorf("create %s lottery: %w", lt, err)
	}

	e.log.Info("ledger: lottery created", "lottery_id", lot.LotteryID, "type", lt, "price", lot.TicketPrice, "scheduled_at", lot.ScheduledAt)
	e.emit(&model.Event{
		Type:      model.EventLotteryCreated,
		LotteryID: lot.LotteryID,
		Actor:     lot.CreatedBy.String(),
		Amount:    lot.TicketPrice,
		Note:      lt.String(),
	})
	return lot, nil
}
