package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// CancelLottery stops a lottery that has not been drawn. Ticket holders get
// their price back through RefundTicket.
func (e *Engine) CancelLottery(signers auth.Signers, lotteryID uint64) (model.Lottery, error) {
	var (
		lot      model.Lottery
		operator solana.PublicKey
	)
	err := e.store.Update(func(tx *store.Tx) error {
		cfg, err := e.requireOperator(tx, signers)
		if err != nil {
			return err
		}
		operator = cfg.AuthorizedOperator
		current, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		lot = current
		if lot.State != model.StateCreated {
			return fmt.Errorf("%w: lottery %d is %s", ErrInvalidCancellation, lotteryID, lot.State)
		}
		lot.State = model.StateCancelled
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return model.Lottery{}, fmt.Errorf("cancel lottery: %w", err)
	}

	e.log.Info("ledger: lottery cancelled", "lottery_id", lotteryID, "tickets", lot.TotalTickets, "pool", lot.PrizePool)
	e.emit(&model.Event{
		Type:      model.EventLotteryCancelled,
		LotteryID: lotteryID,
		Actor:     operator.String(),
		Amount:    lot.PrizePool,
	})
	return lot, nil
}

// RefundTicket returns the ticket price of a cancelled lottery to its
// purchaser.
func (e *Engine) RefundTicket(signers auth.Signers, lotteryID uint64, ticketAt solana.PublicKey) (model.Ticket, error) {
	var ticket model.Ticket
	err := e.store.Update(func(tx *store.Tx) error {
		lot, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		if lot.State != model.StateCancelled {
			return fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotCancelled, lotteryID, lot.State)
		}
		if ticket, err = e.readTicket(tx, lotteryID, ticketAt); err != nil {
			return err
		}
		if ticket.PrizeClaimed {
			return fmt.Errorf("%w: %s", ErrAlreadyClaimed, ticketAt)
		}
		if !signers.Has(ticket.Purchaser) {
			return fmt.Errorf("%w: %s", ErrNotTicketOwner, ticketAt)
		}

		refund := min(lot.TicketPrice, lot.PrizePool)
		if err := e.tokens.Transfer(tx, lot.Mint, lotAt, ticket.Purchaser, refund); err != nil {
			return err
		}
		if lot.PrizePool, err = safemath.Sub(lot.PrizePool, refund); err != nil {
			return err
		}
		if lot.Refunded, err = safemath.Add(lot.Refunded, refund); err != nil {
			return err
		}
		ticket.PrizeClaimed = true
		ticket.Payout = refund
		if err := tx.Write(ticketAt, &ticket); err != nil {
			return err
		}
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return model.Ticket{}, fmt.Errorf("refund ticket: %w", err)
	}

	e.log.Info("ledger: ticket refunded", "lottery_id", lotteryID, "purchaser", ticket.Purchaser, "amount", ticket.Payout)
	e.emit(&model.Event{
		Type:      model.EventTicketRefunded,
		LotteryID: lotteryID,
		Actor:     ticket.Purchaser.String(),
		Amount:    ticket.Payout,
	})
	return ticket, nil
}
