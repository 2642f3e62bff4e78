// Package ledger is the lottery state machine and accounting engine.
//
// Each exported operation runs as one store transaction: the state guards,
// token transfers and record writes it performs either all commit or none
// do. Ordering between operations is enforced by the state guards alone;
// bbolt serializes writers, so when two callers race on the same lottery the
// loser observes the state the winner committed.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"StableLottery/internal/address"
	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/oracle"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// TokenLedger moves stable-token balances inside a store transaction.
// Accounts are per (owner, mint).
type TokenLedger interface {
	Open(tx *store.Tx, owner, mint solana.PublicKey) error
	Balance(tx *store.Tx, owner, mint solana.PublicKey) (uint64, error)
	Transfer(tx *store.Tx, mint, from, to solana.PublicKey, amount uint64) error
}

// EventSink receives events after their operation committed.
type EventSink interface {
	RecordEvent(evt *model.Event) error
}

type EngineConfig struct {
	Logger    *slog.Logger
	Store     *store.Store
	Tokens    TokenLedger
	Oracle    oracle.Reader
	Clock     clockwork.Clock
	Addresses address.Deriver
	Events    EventSink // optional
	Params    *Params   // nil selects DefaultParams
}

func (cfg *EngineConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.Tokens == nil {
		return errors.New("token ledger is required")
	}
	if cfg.Oracle == nil {
		return errors.New("oracle reader is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Addresses.ProgramID.IsZero() {
		cfg.Addresses = address.Default()
	}
	if cfg.Params == nil {
		p := DefaultParams()
		cfg.Params = &p
	}
	return cfg.Params.Validate()
}

type Engine struct {
	log    *slog.Logger
	store  *store.Store
	tokens TokenLedger
	oracle oracle.Reader
	clock  clockwork.Clock
	addr   address.Deriver
	events EventSink
	params Params
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		log:    cfg.Logger,
		store:  cfg.Store,
		tokens: cfg.Tokens,
		oracle: cfg.Oracle,
		clock:  cfg.Clock,
		addr:   cfg.Addresses,
		events: cfg.Events,
		params: *cfg.Params,
	}, nil
}

func (e *Engine) Params() Params { return e.params }

func (e *Engine) Addresses() address.Deriver { return e.addr }

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

func (e *Engine) readConfig(tx *store.Tx) (model.Config, error) {
	var cfg model.Config
	if err := tx.Read(e.addr.Config(), &cfg); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// requireOperator loads Config and checks that its operator signed.
func (e *Engine) requireOperator(tx *store.Tx, signers auth.Signers) (model.Config, error) {
	cfg, err := e.readConfig(tx)
	if err != nil {
		return cfg, err
	}
	if err := auth.RequireSigner(cfg.AuthorizedOperator, signers); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (e *Engine) readLottery(tx *store.Tx, lotteryID uint64) (model.Lottery, solana.PublicKey, error) {
	at := e.addr.Lottery(lotteryID)
	var lot model.Lottery
	if err := tx.Read(at, &lot); err != nil {
		return lot, at, fmt.Errorf("read lottery %d: %w", lotteryID, err)
	}
	return lot, at, nil
}

// readTicket loads a ticket and checks it belongs to lotteryID.
func (e *Engine) readTicket(tx *store.Tx, lotteryID uint64, at solana.PublicKey) (model.Ticket, error) {
	var t model.Ticket
	if err := tx.Read(at, &t); err != nil {
		return t, fmt.Errorf("read ticket %s: %w", at, err)
	}
	if t.LotteryID != lotteryID {
		return t, fmt.Errorf("%w: ticket %s is for lottery %d", ErrTicketMismatch, at, t.LotteryID)
	}
	return t, nil
}

// creditTreasury moves amount from lot's pool vault into the treasury vault
// and books it on the Treasury record, creating the record on first use.
func (e *Engine) creditTreasury(tx *store.Tx, lot model.Lottery, pool solana.PublicKey, amount uint64, payer solana.PublicKey, recycled bool) error {
	if amount == 0 {
		return nil
	}
	at := e.addr.Treasury()
	if !tx.Exists(at) {
		if err := tx.Create(at, &model.Treasury{Mint: lot.Mint}, payer); err != nil {
			return err
		}
	}
	var tr model.Treasury
	if err := tx.Read(at, &tr); err != nil {
		return err
	}
	if tr.Mint != lot.Mint {
		return fmt.Errorf("%w: treasury holds %s, lottery %d pays %s", ErrMintInUse, tr.Mint, lot.LotteryID, lot.Mint)
	}
	if err := e.tokens.Transfer(tx, lot.Mint, pool, at, amount); err != nil {
		return fmt.Errorf("transfer to treasury: %w", err)
	}

	var err error
	if tr.Balance, err = safemath.Add(tr.Balance, amount); err != nil {
		return err
	}
	if recycled {
		tr.TotalRecycled, err = safemath.Add(tr.TotalRecycled, amount)
	} else {
		tr.TotalFees, err = safemath.Add(tr.TotalFees, amount)
	}
	if err != nil {
		return err
	}
	return tx.Write(at, &tr)
}

func (e *Engine) emit(evt *model.Event) {
	if e.events == nil {
		return
	}
	evt.ID = uuid.NewString()
	if evt.Timestamp == 0 {
		evt.Timestamp = e.now()
	}
	if err := e.events.RecordEvent(evt); err != nil {
		e.log.Error("ledger: record event", "type", evt.Type, "error", err)
	}
}
