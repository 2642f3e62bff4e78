package token

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"StableLottery/internal/address"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

func setup(t *testing.T) (*store.Store, *Ledger) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, NewLedger(address.Default())
}

func balance(t *testing.T, s *store.Store, l *Ledger, owner, mint solana.PublicKey) uint64 {
	t.Helper()
	var got uint64
	require.NoError(t, s.View(func(tx *store.Tx) error {
		var err error
		got, err = l.Balance(tx, owner, mint)
		return err
	}))
	return got
}

func TestLedger_MintAndTransfer(t *testing.T) {
	s, l := setup(t)
	mint := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return l.Mint(tx, alice, mint, 5_000_000)
	}))
	require.Equal(t, uint64(5_000_000), balance(t, s, l, alice, mint))
	require.Zero(t, balance(t, s, l, bob, mint))

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, mint, alice, bob, 1_000_000)
	}))
	require.Equal(t, uint64(4_000_000), balance(t, s, l, alice, mint))
	require.Equal(t, uint64(1_000_000), balance(t, s, l, bob, mint))
}

func TestLedger_InsufficientFunds(t *testing.T) {
	s, l := setup(t)
	mint := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	err := s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, mint, alice, bob, 1)
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return l.Mint(tx, alice, mint, 10)
	}))
	err = s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, mint, alice, bob, 11)
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, uint64(10), balance(t, s, l, alice, mint))
}

func TestLedger_AccountsPerMint(t *testing.T) {
	s, l := setup(t)
	usdc := solana.NewWallet().PublicKey()
	usdt := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		if err := l.Mint(tx, alice, usdc, 10); err != nil {
			return err
		}
		return l.Mint(tx, alice, usdt, 7)
	}))
	require.Equal(t, uint64(10), balance(t, s, l, alice, usdc))
	require.Equal(t, uint64(7), balance(t, s, l, alice, usdt))

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, usdt, alice, bob, 5)
	}))
	require.Equal(t, uint64(10), balance(t, s, l, alice, usdc))
	require.Equal(t, uint64(2), balance(t, s, l, alice, usdt))
	require.Equal(t, uint64(5), balance(t, s, l, bob, usdt))
	require.Zero(t, balance(t, s, l, bob, usdc))

	err := s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, usdc, bob, alice, 1)
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestLedger_ZeroMint(t *testing.T) {
	s, l := setup(t)
	err := s.Update(func(tx *store.Tx) error {
		return l.Open(tx, solana.NewWallet().PublicKey(), solana.PublicKey{})
	})
	require.ErrorIs(t, err, ErrInvalidTokenAccount)
}

func TestLedger_Overflow(t *testing.T) {
	s, l := setup(t)
	mint := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	require.NoError(t, s.Update(func(tx *store.Tx) error {
		if err := l.Mint(tx, alice, mint, 1); err != nil {
			return err
		}
		return l.Mint(tx, bob, mint, math.MaxUint64)
	}))
	err := s.Update(func(tx *store.Tx) error {
		return l.Transfer(tx, mint, alice, bob, 1)
	})
	require.ErrorIs(t, err, safemath.ErrOverflow)
	require.Equal(t, uint64(1), balance(t, s, l, alice, mint))
}
