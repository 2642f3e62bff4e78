package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

func (e *Engine) Config() (model.Config, error) {
	var cfg model.Config
	err := e.store.View(func(tx *store.Tx) error {
		var err error
		cfg, err = e.readConfig(tx)
		return err
	})
	return cfg, err
}

// Treasury returns the treasury record; before the first fee it is zero.
func (e *Engine) Treasury() (model.Treasury, error) {
	var tr model.Treasury
	err := e.store.View(func(tx *store.Tx) error {
		err := tx.Read(e.addr.Treasury(), &tr)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	return tr, err
}

func (e *Engine) Lottery(lotteryID uint64) (model.Lottery, error) {
	var lot model.Lottery
	err := e.store.View(func(tx *store.Tx) error {
		var err error
		lot, _, err = e.readLottery(tx, lotteryID)
		return err
	})
	return lot, err
}

// Lotteries returns every lottery ordered by id.
func (e *Engine) Lotteries() ([]model.Lottery, error) {
	var out []model.Lottery
	err := e.store.View(func(tx *store.Tx) error {
		return tx.Scan(model.KindLottery, func(ent store.Entry) error {
			var lot model.Lottery
			if err := ent.Decode(&lot); err != nil {
				return fmt.Errorf("decode lottery %s: %w", ent.Address, err)
			}
			out = append(out, lot)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotteryID < out[j].LotteryID })
	return out, nil
}

// Tickets returns every ticket sold in a lottery.
func (e *Engine) Tickets(lotteryID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	err := e.store.View(func(tx *store.Tx) error {
		return tx.Scan(model.KindTicket, func(ent store.Entry) error {
			var t model.Ticket
			if err := ent.Decode(&t); err != nil {
				return fmt.Errorf("decode ticket %s: %w", ent.Address, err)
			}
			if t.LotteryID == lotteryID {
				out = append(out, t)
			}
			return nil
		})
	})
	return out, err
}

func (e *Engine) TicketAddress(lotteryID uint64, purchaser solana.PublicKey) solana.PublicKey {
	return e.addr.Ticket(lotteryID, purchaser)
}

func (e *Engine) Ticket(lotteryID uint64, purchaser solana.PublicKey) (model.Ticket, error) {
	return e.TicketAt(lotteryID, e.addr.Ticket(lotteryID, purchaser))
}

func (e *Engine) TicketAt(lotteryID uint64, at solana.PublicKey) (model.Ticket, error) {
	var t model.Ticket
	err := e.store.View(func(tx *store.Tx) error {
		var err error
		t, err = e.readTicket(tx, lotteryID, at)
		return err
	})
	return t, err
}

// Balance returns owner's balance of the current stable mint.
func (e *Engine) Balance(owner solana.PublicKey) (uint64, error) {
	var amount uint64
	err := e.store.View(func(tx *store.Tx) error {
		cfg, err := e.readConfig(tx)
		if err != nil {
			return err
		}
		amount, err = e.tokens.Balance(tx, owner, cfg.StableMint)
		return err
	})
	return amount, err
}

func (e *Engine) BalanceOf(owner, mint solana.PublicKey) (uint64, error) {
	var amount uint64
	err := e.store.View(func(tx *store.Tx) error {
		var err error
		amount, err = e.tokens.Balance(tx, owner, mint)
		return err
	})
	return amount, err
}

// VerifyLottery recomputes a stored lottery's draw.
func (e *Engine) VerifyLottery(lotteryID uint64) (DrawVerification, error) {
	lot, err := e.Lottery(lotteryID)
	if err != nil {
		return DrawVerification{}, err
	}
	return VerifyDraw(lot)
}

// Audit checks that every unit a lottery took in is accounted for and that
// its pool vault and the treasury vault hold what the records claim.
func (e *Engine) Audit(lotteryID uint64) error {
	return e.store.View(func(tx *store.Tx) error {
		lot, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		out := lot.PrizePool
		for _, v := range []uint64{lot.FeeTaken, lot.PrizesPaid, lot.Refunded, lot.Recycled} {
			if out, err = safemath.Add(out, v); err != nil {
				return err
			}
		}
		if out != lot.TotalRevenue {
			return fmt.Errorf("%w: lottery %d took %d, accounts for %d", ErrLedgerImbalance, lotteryID, lot.TotalRevenue, out)
		}

		vault, err := e.tokens.Balance(tx, lotAt, lot.Mint)
		if err != nil {
			return err
		}
		if vault != lot.PrizePool {
			return fmt.Errorf("%w: lottery %d pool %d, vault %d", ErrLedgerImbalance, lotteryID, lot.PrizePool, vault)
		}

		var tr model.Treasury
		if err := tx.Read(e.addr.Treasury(), &tr); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		held, err := e.tokens.Balance(tx, e.addr.Treasury(), tr.Mint)
		if err != nil {
			return err
		}
		if held != tr.Balance {
			return fmt.Errorf("%w: treasury balance %d, vault %d", ErrLedgerImbalance, tr.Balance, held)
		}
		return nil
	})
}
