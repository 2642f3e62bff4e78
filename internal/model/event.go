package model

// EventType identifies a committed engine operation.
type EventType string

const (
	EventConfigInitialized EventType = "CONFIG_INITIALIZED"
	EventConfigUpdated     EventType = "CONFIG_UPDATED"
	EventLotteryCreated    EventType = "LOTTERY_CREATED"
	EventTicketPurchased   EventType = "TICKET_PURCHASED"
	EventDrawExecuted      EventType = "DRAW_EXECUTED"
	EventPrizeClaimed      EventType = "PRIZE_CLAIMED"
	EventUnclaimedRecycled EventType = "UNCLAIMED_RECYCLED"
	EventTreasuryWithdrawn EventType = "TREASURY_WITHDRAWN"
	EventLotteryCancelled  EventType = "LOTTERY_CANCELLED"
	EventTicketRefunded    EventType = "TICKET_REFUNDED"
)

// Event is emitted after an operation commits.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	LotteryID uint64    `json:"lottery_id,omitempty"`
	Actor     string    `json:"actor"`
	Amount    uint64    `json:"amount"`
	Numbers   string    `json:"numbers,omitempty"`
	Seed      string    `json:"seed,omitempty"`
	Note      string    `json:"note,omitempty"`
}
