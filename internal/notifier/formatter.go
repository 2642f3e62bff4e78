package notifier

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"StableLottery/internal/model"
	"StableLottery/internal/recorder"
)

// TokenDecimals is the stable token's decimal places.
const TokenDecimals = 6

// FormatAmount renders base units as a token amount, e.g. 487500 -> "0.49".
func FormatAmount(units uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -TokenDecimals).StringFixed(2)
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04 MST")
}

// FormatDrawResult formats a completed draw announcement.
func FormatDrawResult(lot model.Lottery) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎰 <b>Lottery #%d draw</b> | %s\n\n", lot.LotteryID, lot.LotteryType))
	b.WriteString(fmt.Sprintf("Winning numbers: <b>%s</b>\n", lot.WinningNumbers))
	b.WriteString(fmt.Sprintf("Tickets sold: %d\n", lot.TotalTickets))
	b.WriteString(fmt.Sprintf("Prize pool: %s (fee %s)\n", FormatAmount(lot.DistributablePool), FormatAmount(lot.FeeTaken)))
	b.WriteString(fmt.Sprintf("Drawn at: %s\n", formatTime(lot.DrawTimestamp)))
	b.WriteString(fmt.Sprintf("Seed: <code>%s</code>\n", base58.Encode(lot.DrawSeed[:])))
	return b.String()
}

// FormatLotteryStatus formats one lottery's state and accounting.
func FormatLotteryStatus(lot model.Lottery) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎟 <b>Lottery #%d</b> | %s | %s\n\n", lot.LotteryID, lot.LotteryType, lot.State))
	b.WriteString(fmt.Sprintf("Ticket price: %s\n", FormatAmount(lot.TicketPrice)))
	b.WriteString(fmt.Sprintf("Tickets sold: %d\n", lot.TotalTickets))
	b.WriteString(fmt.Sprintf("Pool: %s\n", FormatAmount(lot.PrizePool)))
	switch lot.State {
	case model.StateCreated:
		b.WriteString(fmt.Sprintf("Draw scheduled: %s\n", formatTime(lot.ScheduledAt)))
	case model.StateCompleted:
		b.WriteString(fmt.Sprintf("Winning numbers: %s\n", lot.WinningNumbers))
		b.WriteString(fmt.Sprintf("Prizes paid: %s\n", FormatAmount(lot.PrizesPaid)))
		if lot.IsRecycled {
			b.WriteString(fmt.Sprintf("Recycled: %s\n", FormatAmount(lot.Recycled)))
		}
	case model.StateCancelled:
		b.WriteString(fmt.Sprintf("Refunded: %s\n", FormatAmount(lot.Refunded)))
	}
	return b.String()
}

// FormatTreasury formats the treasury balance and totals.
func FormatTreasury(tr model.Treasury) string {
	var b strings.Builder

	b.WriteString("🏦 <b>Treasury</b>\n\n")
	b.WriteString(fmt.Sprintf("Balance: %s\n", FormatAmount(tr.Balance)))
	b.WriteString(fmt.Sprintf("Fees collected: %s\n", FormatAmount(tr.TotalFees)))
	b.WriteString(fmt.Sprintf("Recycled: %s\n", FormatAmount(tr.TotalRecycled)))
	b.WriteString(fmt.Sprintf("Withdrawn: %s\n", FormatAmount(tr.TotalWithdrawn)))
	if tr.LastWithdrawalTime > 0 {
		b.WriteString(fmt.Sprintf("Last withdrawal: %s\n", formatTime(tr.LastWithdrawalTime)))
	}
	return b.String()
}

// FormatOpenLotteries lists lotteries still selling tickets.
func FormatOpenLotteries(lots []model.Lottery) string {
	var b strings.Builder
	b.WriteString("📋 <b>Open lotteries</b>\n\n")
	n := 0
	for _, lot := range lots {
		if !lot.State.AcceptsTickets() {
			continue
		}
		n++
		b.WriteString(fmt.Sprintf("#%d %s | %d tickets | pool %s | draw %s\n",
			lot.LotteryID, lot.LotteryType, lot.TotalTickets, FormatAmount(lot.PrizePool), formatTime(lot.ScheduledAt)))
	}
	if n == 0 {
		b.WriteString("None\n")
	}
	return b.String()
}

// FormatDrawHistory lists recorded draws, newest first.
func FormatDrawHistory(draws []recorder.DrawRecord) string {
	var b strings.Builder
	b.WriteString("🗂 <b>Recent draws</b>\n\n")
	if len(draws) == 0 {
		b.WriteString("None\n")
	}
	for _, d := range draws {
		b.WriteString(fmt.Sprintf("#%d %s | %s | pool %s\n", d.LotteryID, formatTime(d.Timestamp), d.Numbers, FormatAmount(d.Pool)))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Commands:\n• /open\n• /lottery &lt;id&gt;\n• /treasury\n• /history"
}
