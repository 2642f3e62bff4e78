package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"StableLottery/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	ProgramID string `yaml:"program_id"`
	Operator  struct {
		KeypairPath string `yaml:"keypair_path"`
	} `yaml:"operator"`
	Token struct {
		StableMint string `yaml:"stable_mint"`
	} `yaml:"token"`
	Oracle struct {
		Mode       string        `yaml:"mode"` // "hermes" or "fixed"
		BaseURL    string        `yaml:"base_url"`
		FeedID     string        `yaml:"feed_id"`
		FixedPrice int64         `yaml:"fixed_price"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"oracle"`
	Engine struct {
		FeeBps               uint64        `yaml:"fee_bps"`
		MaxOracleStaleness   time.Duration `yaml:"max_oracle_staleness"`
		ClaimWindow          time.Duration `yaml:"claim_window"`
		WithdrawalTimelock   time.Duration `yaml:"withdrawal_timelock"`
		MaxTicketsPerLottery uint64        `yaml:"max_tickets_per_lottery"`
	} `yaml:"engine"`
	Schedule struct {
		CreateCron  string   `yaml:"create_cron"`
		DrawCron    string   `yaml:"draw_cron"`
		RecycleCron string   `yaml:"recycle_cron"`
		Types       []string `yaml:"types"`
	} `yaml:"schedule"`
	API struct {
		Listen string `yaml:"listen"`
	} `yaml:"api"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Engine values may legitimately be zero, so their defaults go in before
	// the file is decoded; keys absent from the file keep them.
	cfg.Engine.FeeBps = 250
	cfg.Engine.MaxOracleStaleness = 60 * time.Second
	cfg.Engine.ClaimWindow = 7 * 24 * time.Hour
	cfg.Engine.WithdrawalTimelock = 24 * time.Hour
	cfg.Engine.MaxTicketsPerLottery = 10_000

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LOTTERY_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LOTTERY_PROGRAM_ID"); v != "" {
		cfg.ProgramID = v
	}
	if v := os.Getenv("LOTTERY_OPERATOR_KEYPAIR"); v != "" {
		cfg.Operator.KeypairPath = v
	}
	if v := os.Getenv("LOTTERY_STABLE_MINT"); v != "" {
		cfg.Token.StableMint = v
	}
	if v := os.Getenv("ORACLE_MODE"); v != "" {
		cfg.Oracle.Mode = v
	}
	if v := os.Getenv("HERMES_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("HERMES_FEED_ID"); v != "" {
		cfg.Oracle.FeedID = v
	}
	if v := os.Getenv("ORACLE_FIXED_PRICE"); v != "" {
		if price, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Oracle.FixedPrice = price
		}
	}
	if v := os.Getenv("API_LISTEN"); v != "" {
		cfg.API.Listen = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DRAW"); v != "" {
		cfg.Schedule.DrawCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/ledger.db"
	}
	if cfg.Oracle.Mode == "" {
		cfg.Oracle.Mode = "hermes"
	}
	if cfg.Oracle.BaseURL == "" {
		cfg.Oracle.BaseURL = "https://hermes.pyth.network"
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 10 * time.Second
	}
	if cfg.Schedule.CreateCron == "" {
		cfg.Schedule.CreateCron = "0 */5 * * * *"
	}
	if cfg.Schedule.DrawCron == "" {
		cfg.Schedule.DrawCron = "30 * * * * *"
	}
	if cfg.Schedule.RecycleCron == "" {
		cfg.Schedule.RecycleCron = "0 0 * * * *"
	}
	if len(cfg.Schedule.Types) == 0 {
		cfg.Schedule.Types = []string{"daily", "weekly", "monthly"}
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stable_lottery.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Operator.KeypairPath == "" {
		return fmt.Errorf("operator.keypair_path is required")
	}
	if _, err := solana.PublicKeyFromBase58(c.Token.StableMint); err != nil {
		return fmt.Errorf("token.stable_mint: %w", err)
	}
	if c.ProgramID != "" {
		if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
			return fmt.Errorf("program_id: %w", err)
		}
	}
	switch c.Oracle.Mode {
	case "hermes":
		if c.Oracle.FeedID == "" {
			return fmt.Errorf("oracle.feed_id is required in hermes mode")
		}
	case "fixed":
		if c.Oracle.FixedPrice <= 0 {
			return fmt.Errorf("oracle.fixed_price must be positive in fixed mode")
		}
	default:
		return fmt.Errorf("oracle.mode must be hermes or fixed, got %q", c.Oracle.Mode)
	}
	if c.Engine.FeeBps > 10_000 {
		return fmt.Errorf("engine.fee_bps must not exceed 10000")
	}
	for _, t := range c.Schedule.Types {
		if _, err := model.ParseLotteryType(t); err != nil {
			return fmt.Errorf("schedule.types: %w", err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// LotteryTypes returns the parsed schedule.types list.
func (c *Config) LotteryTypes() []model.LotteryType {
	out := make([]model.LotteryType, 0, len(c.Schedule.Types))
	for _, s := range c.Schedule.Types {
		if t, err := model.ParseLotteryType(s); err == nil {
			out = append(out, t)
		}
	}
	return out
}
