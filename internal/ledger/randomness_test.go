package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"StableLottery/internal/model"
)

func TestDeriveSeed(t *testing.T) {
	in := DrawInputs{OraclePrice: 42, OraclePublishTime: 1_700_000_000, DrawTimestamp: 1_700_000_010, PrizePool: 1_000_000, LotteryID: 1}
	require.Equal(t, DeriveSeed(in), DeriveSeed(in))

	changed := []DrawInputs{in, in, in, in, in}
	changed[0].OraclePrice++
	changed[1].OraclePublishTime++
	changed[2].DrawTimestamp++
	changed[3].PrizePool++
	changed[4].LotteryID++
	for _, c := range changed {
		require.NotEqual(t, DeriveSeed(in), DeriveSeed(c))
	}
}

func TestExpandNumbers_Range(t *testing.T) {
	for _, maxNumber := range []uint8{1, 49, 59} {
		for i := range 200 {
			seed := DeriveSeed(DrawInputs{OraclePrice: int64(i + 1), LotteryID: uint64(i)})
			for _, n := range ExpandNumbers(seed, maxNumber) {
				require.GreaterOrEqual(t, n, uint8(1))
				require.LessOrEqual(t, n, maxNumber)
			}
		}
	}
}

func TestCheckSample(t *testing.T) {
	require.NoError(t, checkSample(model.PriceSample{Price: 1, PublishTime: 940}, 1000, 60))
	require.ErrorIs(t, checkSample(model.PriceSample{Price: 1, PublishTime: 939}, 1000, 60), ErrStaleOracleData)
	require.ErrorIs(t, checkSample(model.PriceSample{Price: 1, PublishTime: 1061}, 1000, 60), ErrStaleOracleData)
	require.ErrorIs(t, checkSample(model.PriceSample{Price: -5, PublishTime: 1000}, 1000, 60), ErrInvalidOraclePrice)
}

func TestTiers(t *testing.T) {
	win := model.Numbers{1, 2, 3, 4, 5, 6}
	require.Equal(t, 6, CountMatches(win, win))
	require.Equal(t, 3, CountMatches(model.Numbers{1, 2, 3, 9, 9, 9}, win))
	// Positional: the same numbers in another order do not match.
	require.Equal(t, 0, CountMatches(model.Numbers{6, 5, 4, 3, 2, 1}, model.Numbers{1, 2, 3, 7, 8, 9}))

	tests := []struct {
		matches int
		bps     uint64
		ok      bool
	}{
		{6, 5000, true},
		{5, 1500, true},
		{4, 500, true},
		{3, 100, true},
		{2, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		tier, ok := TierFor(tt.matches)
		require.Equal(t, tt.ok, ok)
		require.Equal(t, tt.bps, tier.ShareBps)
	}
}

func TestParseNumbers(t *testing.T) {
	got, err := ParseNumbers([]uint8{59, 1, 2, 3, 4, 5}, 59)
	require.NoError(t, err)
	require.Equal(t, model.Numbers{59, 1, 2, 3, 4, 5}, got)

	_, err = ParseNumbers([]uint8{59, 1, 2, 3, 4, 5}, 49)
	require.ErrorIs(t, err, ErrInvalidTicketFormat)
	_, err = ParseNumbers(nil, 49)
	require.ErrorIs(t, err, ErrInvalidTicketFormat)
}
