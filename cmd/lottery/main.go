package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"StableLottery/internal/address"
	"StableLottery/internal/api"
	"StableLottery/internal/auth"
	"StableLottery/internal/config"
	"StableLottery/internal/ledger"
	"StableLottery/internal/logger"
	"StableLottery/internal/notifier"
	"StableLottery/internal/oracle"
	"StableLottery/internal/recorder"
	"StableLottery/internal/scheduler"
	"StableLottery/internal/store"
	"StableLottery/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "configs/config.yaml", "path to the YAML config (or set CONFIG_PATH env var)")
	keypairFlag := flag.String("keypair", "", "operator keypair file, overrides operator.keypair_path")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	runOnStartFlag := flag.Bool("run-on-start", false, "run every scheduled task once at startup")
	flag.Parse()

	// A missing .env is fine.
	_ = godotenv.Load()

	log := logger.New(*verboseFlag)

	cfgPath := *configFlag
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *keypairFlag != "" {
		cfg.Operator.KeypairPath = *keypairFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	operator, err := solana.PrivateKeyFromSolanaKeygenFile(cfg.Operator.KeypairPath)
	if err != nil {
		return fmt.Errorf("load operator keypair: %w", err)
	}
	mint := solana.MustPublicKeyFromBase58(cfg.Token.StableMint)

	addr := address.Default()
	if cfg.ProgramID != "" {
		addr = address.New(solana.MustPublicKeyFromBase58(cfg.ProgramID))
	}

	// Init oracle
	var reader oracle.Reader
	clock := clockwork.NewRealClock()
	switch cfg.Oracle.Mode {
	case "fixed":
		reader = oracle.NewFixedReader(cfg.Oracle.FixedPrice, clock)
	default:
		hr := oracle.NewHermesReader(cfg.Oracle.BaseURL, cfg.Oracle.FeedID, cfg.Proxy)
		hr.Client.Timeout = cfg.Oracle.Timeout
		reader = hr
	}
	log.Info("oracle configured", "source", reader.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	st, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	eng, err := ledger.NewEngine(ledger.EngineConfig{
		Logger:    log,
		Store:     st,
		Tokens:    token.NewLedger(addr),
		Oracle:    reader,
		Clock:     clock,
		Addresses: addr,
		Events:    rec,
		Params: &ledger.Params{
			FeeBps:               cfg.Engine.FeeBps,
			MaxOracleStaleness:   cfg.Engine.MaxOracleStaleness,
			ClaimWindow:          cfg.Engine.ClaimWindow,
			WithdrawalTimelock:   cfg.Engine.WithdrawalTimelock,
			MaxTicketsPerLottery: cfg.Engine.MaxTicketsPerLottery,
		},
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	if err := ensureConfig(eng, operator, mint); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init announcer
	var announcer scheduler.Announcer = notifier.LogNotifier{Log: log}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		announcer = tn
	}

	sched := scheduler.NewScheduler(ctx, eng, operator, cfg.LotteryTypes(), announcer, rec, clock, log)
	if err := sched.RegisterAll(cfg.Schedule.CreateCron, cfg.Schedule.DrawCron, cfg.Schedule.RecycleCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}
	if *runOnStartFlag || os.Getenv("RUN_ON_START") == "true" {
		go sched.RunNow(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.API.Listen,
		Handler:           api.NewServer(eng, rec).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", cfg.API.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown", "error", err)
	}
	log.Info("stable lottery stopped")
	return nil
}

// ensureConfig creates the ledger Config on first start with the keypair's
// public key as operator.
func ensureConfig(eng *ledger.Engine, operator solana.PrivateKey, mint solana.PublicKey) error {
	cfg, err := eng.Config()
	if err == nil {
		if cfg.AuthorizedOperator != operator.PublicKey() {
			return fmt.Errorf("keypair %s is not the ledger operator %s", operator.PublicKey(), cfg.AuthorizedOperator)
		}
		return nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("read ledger config: %w", err)
	}
	signers, err := auth.Authorize("initialize_config", [][]byte{operator.PublicKey().Bytes(), mint.Bytes()}, operator)
	if err != nil {
		return err
	}
	if _, err := eng.InitializeConfig(signers, operator.PublicKey(), mint); err != nil {
		return fmt.Errorf("initialize ledger config: %w", err)
	}
	return nil
}
