package recorder

import "StableLottery/internal/model"

// DrawRecord is one row of draw history.
type DrawRecord struct {
	LotteryID uint64
	Timestamp int64
	Numbers   string
	Seed      string
	Pool      uint64
}

// Recorder persists committed ledger events for history and analysis.
type Recorder interface {
	RecordEvent(evt *model.Event) error
	ListEvents(lotteryID uint64, limit int) ([]model.Event, error)
	RecentDraws(limit int) ([]DrawRecord, error)
	Close() error
}
