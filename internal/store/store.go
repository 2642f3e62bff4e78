// Package store is the ledger account store: fixed-layout records at
// derived addresses, persisted in bbolt. Every mutation happens inside a
// single bbolt read-write transaction, so a batch of record writes either
// commits as a whole or leaves no trace.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	bolt "go.etcd.io/bbolt"

	"StableLottery/internal/model"
)

const (
	boltAllocSize  = 8 * 1024 * 1024
	accountsBucket = "accounts"
)

var (
	ErrAlreadyExists = errors.New("account already exists")
	ErrNotFound      = errors.New("account not found")
	ErrSizeMismatch  = errors.New("account size mismatch")
	ErrKindMismatch  = errors.New("account kind mismatch")
)

// Store owns the bbolt handle.
type Store struct {
	db  *bolt.DB
	log *slog.Logger
}

// Open opens (or creates) the database file at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path can not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	db.AllocSize = boltAllocSize
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(accountsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	if log != nil {
		log.Info("store: opened", "path", path)
	}
	return &Store{db: db, log: log}, nil
}

// Update runs fn in a read-write transaction. Any error returned by fn
// rolls back every write made through the Tx.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{bkt: btx.Bucket([]byte(accountsBucket)), writable: true})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&Tx{bkt: btx.Bucket([]byte(accountsBucket))})
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// header precedes every record payload.
type header struct {
	Kind  uint8
	Size  uint32
	Payer solana.PublicKey
}

const headerSize = 1 + 4 + 32

func encode(acct model.Account) ([]byte, error) {
	// encode the struct value; the decoder side takes the pointer
	data, err := bin.MarshalBorsh(reflect.Indirect(reflect.ValueOf(acct)).Interface())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", acct.AccountKind(), err)
	}
	return data, nil
}

func decodeHeader(raw []byte) (header, []byte, error) {
	var h header
	if len(raw) < headerSize {
		return h, nil, fmt.Errorf("record shorter than header (%d bytes)", len(raw))
	}
	if err := bin.UnmarshalBorsh(&h, raw[:headerSize]); err != nil {
		return h, nil, fmt.Errorf("decode header: %w", err)
	}
	return h, raw[headerSize:], nil
}
