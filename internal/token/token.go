// Package token keeps stable-token balances as records in the account
// store. All calls run inside the caller's transaction, so a transfer
// commits or rolls back together with the operation that issued it.
package token

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"StableLottery/internal/address"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// Ledger moves balances between token accounts keyed by (owner, mint).
// An owner holds one account per mint, so a transfer never crosses mints.
type Ledger struct {
	addr address.Deriver
}

func NewLedger(addr address.Deriver) *Ledger {
	return &Ledger{addr: addr}
}

// Open creates owner's token account for mint if it does not exist yet.
func (l *Ledger) Open(tx *store.Tx, owner, mint solana.PublicKey) error {
	if mint.IsZero() {
		return fmt.Errorf("%w: zero mint for %s", ErrInvalidTokenAccount, owner)
	}
	at := l.addr.TokenAccount(owner, mint)
	if tx.Exists(at) {
		_, err := l.read(tx, at, owner, mint)
		return err
	}
	return tx.Create(at, &model.TokenAccount{Owner: owner, Mint: mint}, owner)
}

// Balance returns owner's balance of mint; a missing account holds zero.
func (l *Ledger) Balance(tx *store.Tx, owner, mint solana.PublicKey) (uint64, error) {
	acct, err := l.read(tx, l.addr.TokenAccount(owner, mint), owner, mint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Amount, nil
}

// Mint credits newly issued tokens to owner. Only used to fund accounts
// from outside the engine (faucets, fixtures).
func (l *Ledger) Mint(tx *store.Tx, owner, mint solana.PublicKey, amount uint64) error {
	if err := l.Open(tx, owner, mint); err != nil {
		return err
	}
	at := l.addr.TokenAccount(owner, mint)
	acct, err := l.read(tx, at, owner, mint)
	if err != nil {
		return err
	}
	if acct.Amount, err = safemath.Add(acct.Amount, amount); err != nil {
		return err
	}
	return tx.Write(at, &acct)
}

// Transfer moves amount of mint from one owner's account to another's. The
// destination account is created when missing.
func (l *Ledger) Transfer(tx *store.Tx, mint, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fromAt := l.addr.TokenAccount(from, mint)
	src, err := l.read(tx, fromAt, from, mint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s has no %s account", ErrInsufficientFunds, from, mint)
		}
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	if err := l.Open(tx, to, mint); err != nil {
		return err
	}

	toAt := l.addr.TokenAccount(to, mint)
	dst, err := l.read(tx, toAt, to, mint)
	if err != nil {
		return err
	}

	if src.Amount, err = safemath.Sub(src.Amount, amount); err != nil {
		return err
	}
	if dst.Amount, err = safemath.Add(dst.Amount, amount); err != nil {
		return err
	}
	if err := tx.Write(fromAt, &src); err != nil {
		return err
	}
	return tx.Write(toAt, &dst)
}

// read loads the account at at and checks it is the one derived for
// (owner, mint).
func (l *Ledger) read(tx *store.Tx, at, owner, mint solana.PublicKey) (model.TokenAccount, error) {
	var acct model.TokenAccount
	if err := tx.Read(at, &acct); err != nil {
		return acct, err
	}
	if acct.Owner != owner || acct.Mint != mint {
		return acct, fmt.Errorf("%w: %s holds mint %s for %s, want %s for %s",
			ErrInvalidTokenAccount, at, acct.Mint, acct.Owner, mint, owner)
	}
	return acct, nil
}
