package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"StableLottery/internal/address"
	"StableLottery/internal/auth"
	"StableLottery/internal/ledger"
	"StableLottery/internal/logger"
	"StableLottery/internal/model"
	"StableLottery/internal/oracle"
	"StableLottery/internal/recorder"
	"StableLottery/internal/store"
	"StableLottery/internal/token"
)

type fixture struct {
	router    *gin.Engine
	engine    *ledger.Engine
	operator  solana.PublicKey
	purchaser solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	addr := address.Default()
	tokens := token.NewLedger(addr)
	eng, err := ledger.NewEngine(ledger.EngineConfig{
		Logger:    log,
		Store:     st,
		Tokens:    tokens,
		Oracle:    oracle.NewFixedReader(42, clock),
		Clock:     clock,
		Addresses: addr,
		Events:    rec,
	})
	require.NoError(t, err)

	f := &fixture{
		router:    NewServer(eng, rec).Handler(),
		engine:    eng,
		operator:  solana.NewWallet().PublicKey(),
		purchaser: solana.NewWallet().PublicKey(),
	}
	mint := solana.NewWallet().PublicKey()
	op := auth.NewSigners(f.operator)
	_, err = eng.InitializeConfig(op, f.operator, mint)
	require.NoError(t, err)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		return tokens.Mint(tx, f.purchaser, mint, 3_000_000)
	}))

	_, err = eng.CreateLottery(op, model.LotteryDaily)
	require.NoError(t, err)
	_, err = eng.BuyTicket(auth.NewSigners(f.purchaser), 1, []uint8{1, 2, 3, 4, 5, 6}, f.purchaser)
	require.NoError(t, err)
	_, err = eng.ExecuteDraw(context.Background(), op, 1)
	require.NoError(t, err)
	_, err = eng.CreateLottery(op, model.LotteryWeekly)
	require.NoError(t, err)
	return f
}

func (f *fixture) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	f.router.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func TestAPI_ConfigAndTreasury(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/config")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, f.operator.String(), gjson.GetBytes(body, "authorized_operator").String())
	require.Equal(t, int64(2), gjson.GetBytes(body, "lottery_count").Int())

	code, body = f.get(t, "/treasury")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(25_000), gjson.GetBytes(body, "balance").Int())
	require.Equal(t, "0.03", gjson.GetBytes(body, "balance_text").String())
}

func TestAPI_Lotteries(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/lotteries")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(2), gjson.GetBytes(body, "#").Int())

	code, body = f.get(t, "/lotteries?state=created")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "weekly", gjson.GetBytes(body, "0.type").String())
	require.Equal(t, int64(1), gjson.GetBytes(body, "#").Int())

	code, body = f.get(t, "/lotteries/1")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "completed", gjson.GetBytes(body, "state").String())
	require.Equal(t, int64(975_000), gjson.GetBytes(body, "distributable_pool").Int())
	require.Equal(t, int64(6), gjson.GetBytes(body, "winning_numbers.#").Int())
	require.NotEmpty(t, gjson.GetBytes(body, "draw_seed").String())

	code, body = f.get(t, "/lotteries/2")
	require.Equal(t, http.StatusOK, code)
	require.False(t, gjson.GetBytes(body, "winning_numbers").Exists())

	code, _ = f.get(t, "/lotteries/99")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = f.get(t, "/lotteries/abc")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_TicketAndBalance(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/lotteries/1/tickets/"+f.purchaser.String())
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "[1,2,3,4,5,6]", gjson.GetBytes(body, "ticket_numbers").Raw)
	require.False(t, gjson.GetBytes(body, "prize_claimed").Bool())

	code, _ = f.get(t, "/lotteries/1/tickets/"+solana.NewWallet().PublicKey().String())
	require.Equal(t, http.StatusNotFound, code)
	code, _ = f.get(t, "/lotteries/1/tickets/not-a-key")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = f.get(t, "/balances/"+f.purchaser.String())
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int64(2_000_000), gjson.GetBytes(body, "amount").Int())
	require.Equal(t, "2.00", gjson.GetBytes(body, "amount_text").String())

	code, body = f.get(t, "/balances/"+f.purchaser.String()+"?mint="+solana.NewWallet().PublicKey().String())
	require.Equal(t, http.StatusOK, code)
	require.Zero(t, gjson.GetBytes(body, "amount").Int())

	code, _ = f.get(t, "/balances/"+f.purchaser.String()+"?mint=bogus")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_VerifyAndEvents(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/lotteries/1/verify")
	require.Equal(t, http.StatusOK, code)
	require.True(t, gjson.GetBytes(body, "valid").Bool())

	code, _ = f.get(t, "/lotteries/2/verify")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = f.get(t, "/lotteries/1/events")
	require.Equal(t, http.StatusOK, code)
	types := gjson.GetBytes(body, "#.type").Array()
	require.Len(t, types, 3)
	require.Equal(t, string(model.EventDrawExecuted), types[0].String())

	code, _ = f.get(t, "/lotteries/1/events?limit=0")
	require.Equal(t, http.StatusBadRequest, code)
}
