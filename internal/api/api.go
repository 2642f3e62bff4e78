// Package api serves read-only ledger queries over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"

	"StableLottery/internal/ledger"
	"StableLottery/internal/model"
	"StableLottery/internal/notifier"
	"StableLottery/internal/recorder"
)

type RespErr struct {
	Err string `json:"error"`
}

// Server maps ledger queries onto gin routes.
type Server struct {
	engine   *ledger.Engine
	recorder recorder.Recorder
}

func NewServer(eng *ledger.Engine, rec recorder.Recorder) *Server {
	return &Server{engine: eng, recorder: rec}
}

// Handler builds the router.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	v1 := r.Group("/")
	{
		v1.GET("/config", s.getConfig)
		v1.GET("/treasury", s.getTreasury)
		v1.GET("/lotteries", s.getLotteries)
		v1.GET("/lotteries/:id", s.getLottery)
		v1.GET("/lotteries/:id/tickets/:purchaser", s.getTicket)
		v1.GET("/lotteries/:id/verify", s.verifyLottery)
		v1.GET("/lotteries/:id/events", s.getEvents)
		v1.GET("/balances/:owner", s.getBalance)
	}
	return r
}

type lotteryView struct {
	LotteryID         uint64         `json:"lottery_id"`
	Address           string         `json:"address"`
	Type              string         `json:"type"`
	State             string         `json:"state"`
	TicketPrice       uint64         `json:"ticket_price"`
	TicketPriceText   string         `json:"ticket_price_text"`
	MaxNumber         uint8          `json:"max_number"`
	CreatedAt         int64          `json:"created_at"`
	ScheduledAt       int64          `json:"scheduled_at"`
	TotalTickets      uint64         `json:"total_tickets"`
	PrizePool         uint64         `json:"prize_pool"`
	TotalRevenue      uint64         `json:"total_revenue"`
	FeeTaken          uint64         `json:"fee_taken"`
	PrizesPaid        uint64         `json:"prizes_paid"`
	Refunded          uint64         `json:"refunded"`
	Recycled          uint64         `json:"recycled"`
	DistributablePool uint64         `json:"distributable_pool"`
	WinningNumbers    *model.Numbers `json:"winning_numbers,omitempty"`
	DrawTimestamp     int64          `json:"draw_timestamp,omitempty"`
	DrawSeed          string         `json:"draw_seed,omitempty"`
	OraclePrice       int64          `json:"oracle_price,omitempty"`
	OraclePublishTime int64          `json:"oracle_publish_time,omitempty"`
}

func (s *Server) lotteryView(lot model.Lottery) lotteryView {
	v := lotteryView{
		LotteryID:         lot.LotteryID,
		Address:           s.engine.Addresses().Lottery(lot.LotteryID).String(),
		Type:              lot.LotteryType.String(),
		State:             lot.State.String(),
		TicketPrice:       lot.TicketPrice,
		TicketPriceText:   notifier.FormatAmount(lot.TicketPrice),
		MaxNumber:         lot.MaxNumber,
		CreatedAt:         lot.CreatedAt,
		ScheduledAt:       lot.ScheduledAt,
		TotalTickets:      lot.TotalTickets,
		PrizePool:         lot.PrizePool,
		TotalRevenue:      lot.TotalRevenue,
		FeeTaken:          lot.FeeTaken,
		PrizesPaid:        lot.PrizesPaid,
		Refunded:          lot.Refunded,
		Recycled:          lot.Recycled,
		DistributablePool: lot.DistributablePool,
	}
	if lot.HasWinningNumbers {
		n := lot.WinningNumbers
		v.WinningNumbers = &n
		v.DrawTimestamp = lot.DrawTimestamp
		v.DrawSeed = base58.Encode(lot.DrawSeed[:])
		v.OraclePrice = lot.OraclePrice
		v.OraclePublishTime = lot.OraclePublishTime
	}
	return v
}

func (s *Server) getConfig(c *gin.Context) {
	cfg, err := s.engine.Config()
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":             s.engine.Addresses().Config().String(),
		"authorized_operator": cfg.AuthorizedOperator.String(),
		"stable_mint":         cfg.StableMint.String(),
		"lottery_count":       cfg.LotteryCount,
		"created_at":          cfg.CreatedAt,
	})
}

func (s *Server) getTreasury(c *gin.Context) {
	tr, err := s.engine.Treasury()
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":              s.engine.Addresses().Treasury().String(),
		"balance":              tr.Balance,
		"balance_text":         notifier.FormatAmount(tr.Balance),
		"total_fees":           tr.TotalFees,
		"total_recycled":       tr.TotalRecycled,
		"total_withdrawn":      tr.TotalWithdrawn,
		"last_withdrawal_time": tr.LastWithdrawalTime,
	})
}

func (s *Server) getLotteries(c *gin.Context) {
	lots, err := s.engine.Lotteries()
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	state := c.Query("state")
	out := make([]lotteryView, 0, len(lots))
	for _, lot := range lots {
		if state != "" && lot.State.String() != state {
			continue
		}
		out = append(out, s.lotteryView(lot))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getLottery(c *gin.Context) {
	id, ok := lotteryID(c)
	if !ok {
		return
	}
	lot, err := s.engine.Lottery(id)
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, s.lotteryView(lot))
}

func (s *Server) getTicket(c *gin.Context) {
	id, ok := lotteryID(c)
	if !ok {
		return
	}
	purchaser, err := solana.PublicKeyFromBase58(c.Param("purchaser"))
	if err != nil {
		errorResponse(c, "invalid purchaser: "+err.Error())
		return
	}
	t, err := s.engine.Ticket(id, purchaser)
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":        s.engine.TicketAddress(id, purchaser).String(),
		"lottery_id":     t.LotteryID,
		"purchaser":      t.Purchaser.String(),
		"ticket_numbers": t.TicketNumbers,
		"purchased_at":   t.PurchasedAt,
		"prize_claimed":  t.PrizeClaimed,
		"payout":         t.Payout,
	})
}

func (s *Server) verifyLottery(c *gin.Context) {
	id, ok := lotteryID(c)
	if !ok {
		return
	}
	v, err := s.engine.VerifyLottery(id)
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) getEvents(c *gin.Context) {
	id, ok := lotteryID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		errorResponse(c, "limit must be between 1 and 500")
		return
	}
	evts, err := s.recorder.ListEvents(id, limit)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	if evts == nil {
		evts = []model.Event{}
	}
	c.JSON(http.StatusOK, evts)
}

func (s *Server) getBalance(c *gin.Context) {
	owner, err := solana.PublicKeyFromBase58(c.Param("owner"))
	if err != nil {
		errorResponse(c, "invalid owner: "+err.Error())
		return
	}
	var amount uint64
	if raw := c.Query("mint"); raw != "" {
		mint, perr := solana.PublicKeyFromBase58(raw)
		if perr != nil {
			errorResponse(c, "invalid mint: "+perr.Error())
			return
		}
		amount, err = s.engine.BalanceOf(owner, mint)
	} else {
		amount, err = s.engine.Balance(owner)
	}
	if err != nil {
		ledgerErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":       owner.String(),
		"amount":      amount,
		"amount_text": notifier.FormatAmount(amount),
	})
}

func lotteryID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		errorResponse(c, "invalid lottery id")
		return 0, false
	}
	return id, true
}

func ledgerErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, RespErr{Err: err.Error()})
	case ledger.Classify(err) == ledger.ClassValidation, ledger.Classify(err) == ledger.ClassState:
		errorResponse(c, err.Error())
	default:
		internalErrorResponse(c, err.Error())
	}
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, RespErr{Err: err})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, RespErr{Err: err})
}
