package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// ParseNumbers checks numbers against a lottery's format.
func ParseNumbers(numbers []uint8, maxNumber uint8) (model.Numbers, error) {
	var out model.Numbers
	if len(numbers) != model.NumberSlots {
		return out, fmt.Errorf("%w: want %d numbers, got %d", ErrInvalidTicketFormat, model.NumberSlots, len(numbers))
	}
	for i, n := range numbers {
		if n < 1 || n > maxNumber {
			return out, fmt.Errorf("%w: slot %d is %d, range is 1-%d", ErrInvalidTicketFormat, i, n, maxNumber)
		}
		out[i] = n
	}
	return out, nil
}

// BuyTicket sells purchaser one ticket in an open lottery. The ticket price
// moves into the lottery pool in the same transaction that creates the
// ticket.
func (e *Engine) BuyTicket(signers auth.Signers, lotteryID uint64, numbers []uint8, purchaser solana.PublicKey) (model.Ticket, error) {
	if err := auth.RequireSigner(purchaser, signers); err != nil {
		return model.Ticket{}, err
	}

	var (
		ticket model.Ticket
		paid   uint64
	)
	err := e.store.Update(func(tx *store.Tx) error {
		lot, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		if !lot.State.AcceptsTickets() {
			return fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotOpen, lotteryID, lot.State)
		}
		picked, err := ParseNumbers(numbers, lot.MaxNumber)
		if err != nil {
			return err
		}
		if lot.TotalTickets >= e.params.MaxTicketsPerLottery {
			return fmt.Errorf("%w: %d tickets sold", ErrTicketLimitReached, lot.TotalTickets)
		}
		ticketAt := e.addr.Ticket(lotteryID, purchaser)
		if tx.Exists(ticketAt) {
			return fmt.Errorf("%w: %s already holds a ticket in lottery %d", ErrDuplicateTicket, purchaser, lotteryID)
		}

		if err := e.tokens.Transfer(tx, lot.Mint, purchaser, lotAt, lot.TicketPrice); err != nil {
			return err
		}
		paid = lot.TicketPrice

		ticket = model.Ticket{
			LotteryID:     lotteryID,
			Purchaser:     purchaser,
			TicketNumbers: picked,
			PurchasedAt:   e.now(),
		}
		if err := tx.Create(ticketAt, &ticket, purchaser); err != nil {
			return err
		}

		if lot.PrizePool, err = safemath.Add(lot.PrizePool, lot.TicketPrice); err != nil {
			return err
		}
		if lot.TotalRevenue, err = safemath.Add(lot.TotalRevenue, lot.TicketPrice); err != nil {
			return err
		}
		if lot.TotalTickets, err = safemath.Add(lot.TotalTickets, 1); err != nil {
			return err
		}
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return model.Ticket{}, fmt.Errorf("buy ticket: %w", err)
	}

	e.log.Debug("ledger: ticket purchased", "lottery_id", lotteryID, "purchaser", purchaser, "numbers", ticket.TicketNumbers)
	e.emit(&model.Event{
		Type:      model.EventTicketPurchased,
		LotteryID: lotteryID,
		Actor:     purchaser.String(),
		Amount:    paid,
		Numbers:   ticket.TicketNumbers.String(),
	})
	return ticket, nil
}
