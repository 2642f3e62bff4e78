package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StableLottery/internal/model"
)

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "data/ledger.db", cfg.Store.Path)
	require.Equal(t, "hermes", cfg.Oracle.Mode)
	require.Equal(t, uint64(250), cfg.Engine.FeeBps)
	require.Equal(t, 7*24*time.Hour, cfg.Engine.ClaimWindow)
	require.Equal(t, []string{"daily", "weekly", "monthly"}, cfg.Schedule.Types)
	require.Equal(t, ":8080", cfg.API.Listen)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
operator:
  keypair_path: /keys/operator.json
token:
  stable_mint: `+testMint+`
oracle:
  mode: fixed
  fixed_price: 42
engine:
  claim_window: 48h
schedule:
  types: [daily]
`)
	t.Setenv("API_LISTEN", "127.0.0.1:9000")
	t.Setenv("ORACLE_FIXED_PRICE", "43")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/keys/operator.json", cfg.Operator.KeypairPath)
	require.Equal(t, int64(43), cfg.Oracle.FixedPrice)
	require.Equal(t, 48*time.Hour, cfg.Engine.ClaimWindow)
	require.Equal(t, "127.0.0.1:9000", cfg.API.Listen)
	require.Equal(t, []model.LotteryType{model.LotteryDaily}, cfg.LotteryTypes())
}

func TestLoad_ZeroEngineValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
engine:
  fee_bps: 0
  withdrawal_timelock: 0s
`))
	require.NoError(t, err)
	require.Zero(t, cfg.Engine.FeeBps)
	require.Zero(t, cfg.Engine.WithdrawalTimelock)
	require.Equal(t, 60*time.Second, cfg.Engine.MaxOracleStaleness)
	require.Equal(t, uint64(10_000), cfg.Engine.MaxTicketsPerLottery)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "store: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Operator.KeypairPath = "op.json"
		cfg.Token.StableMint = testMint
		cfg.Oracle.FeedID = "0xabc"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no keypair", func(c *Config) { c.Operator.KeypairPath = "" }},
		{"bad mint", func(c *Config) { c.Token.StableMint = "not-a-key" }},
		{"bad program id", func(c *Config) { c.ProgramID = "0OIl" }},
		{"hermes without feed", func(c *Config) { c.Oracle.FeedID = "" }},
		{"fixed without price", func(c *Config) { c.Oracle.Mode = "fixed" }},
		{"unknown mode", func(c *Config) { c.Oracle.Mode = "dice" }},
		{"fee too high", func(c *Config) { c.Engine.FeeBps = 10_001 }},
		{"unknown type", func(c *Config) { c.Schedule.Types = []string{"hourly"} }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "token" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
