package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"StableLottery/internal/auth"
	"StableLottery/internal/ledger"
	"StableLottery/internal/model"
	"StableLottery/internal/notifier"
	"StableLottery/internal/recorder"
)

// Announcer delivers human-readable messages.
type Announcer interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler triggers the operator-side lifecycle of lotteries on cron
// schedules: opening new lotteries, drawing the due ones and recycling the
// ones whose claim window closed.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *ledger.Engine
	Operator solana.PrivateKey
	Types    []model.LotteryType
	Notifier Announcer
	Recorder recorder.Recorder
	Clock    clockwork.Clock
	Log      *slog.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng *ledger.Engine, operator solana.PrivateKey, types []model.LotteryType, an Announcer, rec recorder.Recorder, clock clockwork.Clock, log *slog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Operator: operator,
		Types:    types,
		Notifier: an,
		Recorder: rec,
		Clock:    clock,
		Log:      log,
		Ctx:      ctx,
	}
}

// RegisterAll registers the create, draw and recycle tasks.
func (s *Scheduler) RegisterAll(createCron, drawCron, recycleCron string) error {
	if _, err := s.Cron.AddFunc(createCron, func() { s.CreateMissing(s.Ctx) }); err != nil {
		return fmt.Errorf("register create task: %w", err)
	}
	if _, err := s.Cron.AddFunc(drawCron, func() { s.DrawDue(s.Ctx) }); err != nil {
		return fmt.Errorf("register draw task: %w", err)
	}
	if _, err := s.Cron.AddFunc(recycleCron, func() { s.RecycleDue(s.Ctx) }); err != nil {
		return fmt.Errorf("register recycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow runs every task once (for startup catch-up).
func (s *Scheduler) RunNow(ctx context.Context) {
	s.CreateMissing(ctx)
	s.DrawDue(ctx)
	s.RecycleDue(ctx)
}

func (s *Scheduler) sign(op string, args ...[]byte) (auth.Signers, error) {
	return auth.Authorize(op, args, s.Operator)
}

// CreateMissing opens a lottery for every configured type that has none
// open. It returns the number created.
func (s *Scheduler) CreateMissing(ctx context.Context) int {
	lots, err := s.Engine.Lotteries()
	if err != nil {
		s.Log.Error("list lotteries", "error", err)
		return 0
	}
	open := make(map[model.LotteryType]bool)
	for _, lot := range lots {
		if lot.State.AcceptsTickets() {
			open[lot.LotteryType] = true
		}
	}

	created := 0
	for _, t := range s.Types {
		if open[t] {
			continue
		}
		signers, err := s.sign("create_lottery", []byte{byte(t)})
		if err != nil {
			s.Log.Error("sign create lottery", "error", err)
			return created
		}
		lot, err := s.Engine.CreateLottery(signers, t)
		if err != nil {
			s.logFailure("create lottery", err, "type", t)
			continue
		}
		created++
		s.trySend(ctx, notifier.FormatLotteryStatus(lot))
	}
	return created
}

// DrawDue draws every open lottery whose scheduled time has passed. A due
// lottery that sold no tickets is cancelled instead, so CreateMissing opens
// a fresh one. It returns the number drawn.
func (s *Scheduler) DrawDue(ctx context.Context) int {
	lots, err := s.Engine.Lotteries()
	if err != nil {
		s.Log.Error("list lotteries", "error", err)
		return 0
	}
	now := s.Clock.Now().Unix()

	drawn := 0
	for _, lot := range lots {
		if !lot.State.AcceptsTickets() || lot.ScheduledAt > now {
			continue
		}
		if lot.TotalTickets == 0 {
			s.expire(ctx, lot.LotteryID)
			continue
		}
		signers, err := s.sign("execute_draw", auth.U64(lot.LotteryID))
		if err != nil {
			s.Log.Error("sign draw", "error", err)
			return drawn
		}
		result, err := s.Engine.ExecuteDraw(ctx, signers, lot.LotteryID)
		if err != nil {
			s.logFailure("execute draw", err, "lottery_id", lot.LotteryID)
			continue
		}
		drawn++
		s.trySend(ctx, notifier.FormatDrawResult(result))
	}
	return drawn
}

func (s *Scheduler) expire(ctx context.Context, lotteryID uint64) {
	signers, err := s.sign("cancel_lottery", auth.U64(lotteryID))
	if err != nil {
		s.Log.Error("sign cancel", "error", err)
		return
	}
	if _, err := s.Engine.CancelLottery(signers, lotteryID); err != nil {
		s.logFailure("expire lottery", err, "lottery_id", lotteryID)
		return
	}
	s.Log.Info("lottery expired without tickets", "lottery_id", lotteryID)
	s.trySend(ctx, fmt.Sprintf("⌛ <b>Lottery #%d</b> closed with no tickets sold", lotteryID))
}

// RecycleDue recycles completed lotteries past their claim window. It
// returns the number recycled.
func (s *Scheduler) RecycleDue(ctx context.Context) int {
	lots, err := s.Engine.Lotteries()
	if err != nil {
		s.Log.Error("list lotteries", "error", err)
		return 0
	}
	now := s.Clock.Now().Unix()
	window := int64(s.Engine.Params().ClaimWindow.Seconds())

	recycled := 0
	for _, lot := range lots {
		if lot.State != model.StateCompleted || lot.IsRecycled || now-lot.DrawTimestamp <= window {
			continue
		}
		signers, err := s.sign("recycle_unclaimed", auth.U64(lot.LotteryID))
		if err != nil {
			s.Log.Error("sign recycle", "error", err)
			return recycled
		}
		amount, err := s.Engine.RecycleUnclaimed(signers, lot.LotteryID)
		if err != nil {
			s.logFailure("recycle unclaimed", err, "lottery_id", lot.LotteryID)
			continue
		}
		recycled++
		s.trySend(ctx, fmt.Sprintf("♻️ <b>Lottery #%d</b> unclaimed prizes recycled: %s",
			lot.LotteryID, notifier.FormatAmount(amount)))
	}
	return recycled
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/open":
		lots, err := s.Engine.Lotteries()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatOpenLotteries(lots)
	case "/lottery":
		if len(fields) != 2 {
			return "Usage: /lottery &lt;id&gt;"
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return "Usage: /lottery &lt;id&gt;"
		}
		lot, err := s.Engine.Lottery(id)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatLotteryStatus(lot)
	case "/treasury":
		tr, err := s.Engine.Treasury()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatTreasury(tr)
	case "/history":
		draws, err := s.Recorder.RecentDraws(10)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatDrawHistory(draws)
	default:
		return notifier.FormatHelp()
	}
}

// logFailure logs retryable failures as warnings; the task retries them on
// its next tick.
func (s *Scheduler) logFailure(msg string, err error, args ...any) {
	class := ledger.Classify(err)
	args = append(args, "error", err, "class", class)
	if class.Retryable() {
		s.Log.Warn(msg, args...)
		return
	}
	s.Log.Error(msg, args...)
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.Log.Error("send notification", "error", err)
	}
}
