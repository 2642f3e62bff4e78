package store

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	bolt "go.etcd.io/bbolt"

	"StableLottery/internal/model"
)

var errReadOnly = errors.New("write in read-only transaction")

// Tx is the record-level view of one bbolt transaction.
type Tx struct {
	bkt      *bolt.Bucket
	writable bool
}

// Create allocates a record at addr. The allocated layout is the encoded
// size of acct; later writes must keep that size. payer is recorded as the
// party that funded the allocation.
func (t *Tx) Create(addr solana.PublicKey, acct model.Account, payer solana.PublicKey) error {
	if !t.writable {
		return errReadOnly
	}
	if t.bkt.Get(addr[:]) != nil {
		return fmt.Errorf("%w: %s %s", ErrAlreadyExists, acct.AccountKind(), addr)
	}
	payload, err := encode(acct)
	if err != nil {
		return err
	}
	h := header{Kind: uint8(acct.AccountKind()), Size: uint32(len(payload)), Payer: payer}
	hb, err := bin.MarshalBorsh(h)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	return t.bkt.Put(addr.Bytes(), append(hb, payload...))
}

// Read decodes the record at addr into acct.
func (t *Tx) Read(addr solana.PublicKey, acct model.Account) error {
	raw := t.bkt.Get(addr[:])
	if raw == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, acct.AccountKind(), addr)
	}
	h, payload, err := decodeHeader(raw)
	if err != nil {
		return err
	}
	if model.AccountKind(h.Kind) != acct.AccountKind() {
		return fmt.Errorf("%w: %s holds %s, want %s", ErrKindMismatch, addr, model.AccountKind(h.Kind), acct.AccountKind())
	}
	if err := bin.UnmarshalBorsh(acct, payload); err != nil {
		return fmt.Errorf("decode %s: %w", acct.AccountKind(), err)
	}
	return nil
}

// Write replaces the record at addr in place.
func (t *Tx) Write(addr solana.PublicKey, acct model.Account) error {
	if !t.writable {
		return errReadOnly
	}
	raw := t.bkt.Get(addr[:])
	if raw == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, acct.AccountKind(), addr)
	}
	h, _, err := decodeHeader(raw)
	if err != nil {
		return err
	}
	payload, err := encode(acct)
	if err != nil {
		return err
	}
	if uint32(len(payload)) != h.Size {
		return fmt.Errorf("%w: %s allocated %d bytes, got %d", ErrSizeMismatch, addr, h.Size, len(payload))
	}
	if model.AccountKind(h.Kind) != acct.AccountKind() {
		return fmt.Errorf("%w: %s holds %s, got %s", ErrKindMismatch, addr, model.AccountKind(h.Kind), acct.AccountKind())
	}
	buf := make([]byte, 0, headerSize+len(payload))
	buf = append(buf, raw[:headerSize]...)
	buf = append(buf, payload...)
	return t.bkt.Put(addr.Bytes(), buf)
}

// Exists reports whether any record occupies addr.
func (t *Tx) Exists(addr solana.PublicKey) bool {
	return t.bkt.Get(addr[:]) != nil
}

// Payer returns the identity that funded the record at addr.
func (t *Tx) Payer(addr solana.PublicKey) (solana.PublicKey, error) {
	raw := t.bkt.Get(addr[:])
	if raw == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrNotFound, addr)
	}
	h, _, err := decodeHeader(raw)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return h.Payer, nil
}

// Entry is a raw record yielded by Scan.
type Entry struct {
	Address solana.PublicKey
	payload []byte
}

// Decode unmarshals the entry payload into acct.
func (e Entry) Decode(acct model.Account) error {
	return bin.UnmarshalBorsh(acct, e.payload)
}

// Scan calls fn for every record of kind, in address order.
func (t *Tx) Scan(kind model.AccountKind, fn func(Entry) error) error {
	return t.bkt.ForEach(func(k, v []byte) error {
		h, payload, err := decodeHeader(v)
		if err != nil {
			return err
		}
		if model.AccountKind(h.Kind) != kind {
			return nil
		}
		return fn(Entry{Address: solana.PublicKeyFromBytes(k), payload: payload})
	})
}
