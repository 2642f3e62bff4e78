package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// NumberSlots is the number of chosen numbers on every ticket.
const NumberSlots = 6

// Numbers is the fixed-width number row stored on tickets and lotteries.
type Numbers [NumberSlots]uint8

func (n Numbers) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, "-")
}

// LotteryType selects the ticket price, number range and draw cadence.
type LotteryType uint8

const (
	LotteryDaily LotteryType = iota
	LotteryWeekly
	LotteryMonthly
)

// LotteryFormat is the fixed per-type deployment table entry.
type LotteryFormat struct {
	TicketPrice uint64
	MaxNumber   uint8
	Cadence     time.Duration
}

var lotteryFormats = map[LotteryType]LotteryFormat{
	LotteryDaily:   {TicketPrice: 1_000_000, MaxNumber: 49, Cadence: 24 * time.Hour},
	LotteryWeekly:  {TicketPrice: 5_000_000, MaxNumber: 49, Cadence: 7 * 24 * time.Hour},
	LotteryMonthly: {TicketPrice: 20_000_000, MaxNumber: 59, Cadence: 30 * 24 * time.Hour},
}

// LotteryTypes lists every supported type in display order.
var LotteryTypes = []LotteryType{LotteryDaily, LotteryWeekly, LotteryMonthly}

// Format returns the table entry for t.
func (t LotteryType) Format() (LotteryFormat, bool) {
	f, ok := lotteryFormats[t]
	return f, ok
}

func (t LotteryType) String() string {
	switch t {
	case LotteryDaily:
		return "daily"
	case LotteryWeekly:
		return "weekly"
	case LotteryMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("lottery_type(%d)", uint8(t))
	}
}

// ParseLotteryType accepts the names produced by String.
func ParseLotteryType(s string) (LotteryType, error) {
	for _, t := range LotteryTypes {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown lottery type %q", s)
}

// LotteryState is the lottery lifecycle. StateCreated is the open-for-sales
// state: tickets are accepted from creation until the draw executes.
type LotteryState uint8

const (
	StateCreated LotteryState = iota
	StateCompleted
	StateCancelled
)

func (s LotteryState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// AcceptsTickets reports whether sales are open.
func (s LotteryState) AcceptsTickets() bool { return s == StateCreated }

// Lottery is one drawing and its pooled accounting.
//
// Conservation: TotalRevenue == PrizePool + FeeTaken + PrizesPaid + Refunded + Recycled.
type Lottery struct {
	LotteryID    uint64
	LotteryType  LotteryType
	State        LotteryState
	TicketPrice  uint64
	MaxNumber    uint8
	CreatedBy    solana.PublicKey
	Mint         solana.PublicKey // pool vault mint, fixed at creation
	CreatedAt    int64
	ScheduledAt  int64
	TotalTickets uint64

	PrizePool         uint64
	TotalRevenue      uint64
	FeeTaken          uint64
	PrizesPaid        uint64
	Refunded          uint64
	Recycled          uint64
	IsRecycled        bool
	DistributablePool uint64

	HasWinningNumbers bool
	WinningNumbers    Numbers
	DrawTimestamp     int64
	DrawSeed          [32]byte
	OraclePrice       int64
	OracleConfidence  uint64
	OraclePublishTime int64
}

func (*Lottery) AccountKind() AccountKind { return KindLottery }

// Ticket is one purchaser's entry in one lottery.
type Ticket struct {
	LotteryID     uint64
	Purchaser     solana.PublicKey
	TicketNumbers Numbers
	PurchasedAt   int64
	PrizeClaimed  bool
	Payout        uint64
}

func (*Ticket) AccountKind() AccountKind { return KindTicket }
