package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"StableLottery/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateReadWrite(t *testing.T) {
	s := newTestStore(t)
	addr := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	op := solana.NewWallet().PublicKey()

	err := s.Update(func(tx *Tx) error {
		return tx.Create(addr, &model.Config{AuthorizedOperator: op, CreatedAt: 10}, payer)
	})
	require.NoError(t, err)

	err = s.Update(func(tx *Tx) error {
		var cfg model.Config
		if err := tx.Read(addr, &cfg); err != nil {
			return err
		}
		cfg.LotteryCount = 3
		return tx.Write(addr, &cfg)
	})
	require.NoError(t, err)

	require.NoError(t, s.View(func(tx *Tx) error {
		var cfg model.Config
		require.NoError(t, tx.Read(addr, &cfg))
		require.Equal(t, op, cfg.AuthorizedOperator)
		require.Equal(t, uint64(3), cfg.LotteryCount)
		require.Equal(t, int64(10), cfg.CreatedAt)

		got, err := tx.Payer(addr)
		require.NoError(t, err)
		require.Equal(t, payer, got)
		return nil
	}))
}

func TestStore_Errors(t *testing.T) {
	s := newTestStore(t)
	addr := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()

	require.NoError(t, s.Update(func(tx *Tx) error {
		return tx.Create(addr, &model.Config{}, payer)
	}))

	err := s.Update(func(tx *Tx) error {
		return tx.Create(addr, &model.Config{}, payer)
	})
	require.ErrorIs(t, err, ErrAlreadyExists)

	missing := solana.NewWallet().PublicKey()
	require.NoError(t, s.View(func(tx *Tx) error {
		var cfg model.Config
		require.ErrorIs(t, tx.Read(missing, &cfg), ErrNotFound)
		require.False(t, tx.Exists(missing))
		require.True(t, tx.Exists(addr))

		var tr model.Treasury
		require.ErrorIs(t, tx.Read(addr, &tr), ErrKindMismatch)
		return nil
	}))

	err = s.Update(func(tx *Tx) error {
		return tx.Write(missing, &model.Config{})
	})
	require.ErrorIs(t, err, ErrNotFound)

	// a ticket does not fit the layout allocated for a config
	err = s.Update(func(tx *Tx) error {
		return tx.Write(addr, &model.Ticket{})
	})
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestStore_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	boom := errors.New("boom")

	err := s.Update(func(tx *Tx) error {
		if err := tx.Create(a, &model.Treasury{Balance: 5}, a); err != nil {
			return err
		}
		if err := tx.Create(b, &model.Treasury{Balance: 6}, b); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(func(tx *Tx) error {
		require.False(t, tx.Exists(a))
		require.False(t, tx.Exists(b))
		return nil
	}))
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	err := s.View(func(tx *Tx) error {
		return tx.Create(solana.NewWallet().PublicKey(), &model.Config{}, solana.PublicKey{})
	})
	require.Error(t, err)
}

func TestStore_Scan(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for i := uint64(1); i <= 3; i++ {
			if err := tx.Create(solana.NewWallet().PublicKey(), &model.Lottery{LotteryID: i}, solana.PublicKey{}); err != nil {
				return err
			}
		}
		return tx.Create(solana.NewWallet().PublicKey(), &model.Treasury{}, solana.PublicKey{})
	}))

	ids := map[uint64]bool{}
	require.NoError(t, s.View(func(tx *Tx) error {
		return tx.Scan(model.KindLottery, func(e Entry) error {
			var l model.Lottery
			if err := e.Decode(&l); err != nil {
				return err
			}
			ids[l.LotteryID] = true
			return nil
		})
	}))
	require.Equal(t, map[uint64]bool{1: true, 2: true, 3: true}, ids)
}

func TestStore_LotteryRoundTripKeepsLayout(t *testing.T) {
	s := newTestStore(t)
	addr := solana.NewWallet().PublicKey()
	require.NoError(t, s.Update(func(tx *Tx) error {
		return tx.Create(addr, &model.Lottery{LotteryID: 1}, addr)
	}))

	// filling every optional-looking field must not change the encoded size
	require.NoError(t, s.Update(func(tx *Tx) error {
		var l model.Lottery
		if err := tx.Read(addr, &l); err != nil {
			return err
		}
		l.HasWinningNumbers = true
		l.WinningNumbers = model.Numbers{1, 2, 3, 4, 5, 6}
		l.DrawSeed[0] = 0xff
		l.State = model.StateCompleted
		return tx.Write(addr, &l)
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		var l model.Lottery
		require.NoError(t, tx.Read(addr, &l))
		require.Equal(t, model.Numbers{1, 2, 3, 4, 5, 6}, l.WinningNumbers)
		require.Equal(t, model.StateCompleted, l.State)
		return nil
	}))
}
