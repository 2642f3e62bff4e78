package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// ClaimResult describes one settled ticket.
type ClaimResult struct {
	Ticket  model.Ticket
	Matches int
	Tier    string // empty when the ticket pays nothing
	Payout  uint64
}

// DistributePrize settles a ticket against its lottery's winning numbers.
// The ticket is marked claimed even when it pays nothing, so each ticket
// settles exactly once.
func (e *Engine) DistributePrize(signers auth.Signers, lotteryID uint64, ticketAt solana.PublicKey) (ClaimResult, error) {
	var res ClaimResult
	err := e.store.Update(func(tx *store.Tx) error {
		lot, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		if lot.State != model.StateCompleted {
			return fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotCompleted, lotteryID, lot.State)
		}
		ticket, err := e.readTicket(tx, lotteryID, ticketAt)
		if err != nil {
			return err
		}
		if ticket.PrizeClaimed {
			return fmt.Errorf("%w: %s", ErrAlreadyClaimed, ticketAt)
		}
		if !signers.Has(ticket.Purchaser) {
			return fmt.Errorf("%w: %s", ErrNotTicketOwner, ticketAt)
		}
		if e.now()-lot.DrawTimestamp > seconds(e.params.ClaimWindow) {
			return fmt.Errorf("%w: drawn at %d", ErrClaimWindowExpired, lot.DrawTimestamp)
		}

		res.Matches = CountMatches(ticket.TicketNumbers, lot.WinningNumbers)
		if tier, ok := TierFor(res.Matches); ok {
			res.Tier = tier.Label
			share, err := safemath.MulDiv(lot.DistributablePool, tier.ShareBps, BpsDenominator)
			if err != nil {
				return err
			}
			res.Payout = min(share, lot.PrizePool)
		}

		if err := e.tokens.Transfer(tx, lot.Mint, lotAt, ticket.Purchaser, res.Payout); err != nil {
			return err
		}
		if lot.PrizePool, err = safemath.Sub(lot.PrizePool, res.Payout); err != nil {
			return err
		}
		if lot.PrizesPaid, err = safemath.Add(lot.PrizesPaid, res.Payout); err != nil {
			return err
		}
		ticket.PrizeClaimed = true
		ticket.Payout = res.Payout
		if err := tx.Write(ticketAt, &ticket); err != nil {
			return err
		}
		res.Ticket = ticket
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return ClaimResult{}, fmt.Errorf("distribute prize: %w", err)
	}

	e.log.Info("ledger: prize claimed",
		"lottery_id", lotteryID,
		"purchaser", res.Ticket.Purchaser,
		"matches", res.Matches,
		"payout", res.Payout,
	)
	e.emit(&model.Event{
		Type:      model.EventPrizeClaimed,
		LotteryID: lotteryID,
		Actor:     res.Ticket.Purchaser.String(),
		Amount:    res.Payout,
		Numbers:   res.Ticket.TicketNumbers.String(),
		Note:      res.Tier,
	})
	return res, nil
}
