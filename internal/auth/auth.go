// Package auth verifies which identities authorized a call.
package auth

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gagliardetto/solana-go"
)

var ErrUnauthorized = errors.New("unauthorized")

// Signers is the set of identities that verifiably signed the current call.
type Signers map[solana.PublicKey]struct{}

func NewSigners(keys ...solana.PublicKey) Signers {
	s := make(Signers, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s Signers) Has(key solana.PublicKey) bool {
	_, ok := s[key]
	return ok
}

// RequireSigner fails with ErrUnauthorized unless expected signed the call.
func RequireSigner(expected solana.PublicKey, signers Signers) error {
	if expected.IsZero() || !signers.Has(expected) {
		return ErrUnauthorized
	}
	return nil
}

// SignedBy is one presented signature over an operation digest.
type SignedBy struct {
	Signer    solana.PublicKey
	Signature solana.Signature
}

// Sign produces a SignedBy for message.
func Sign(key solana.PrivateKey, message []byte) (SignedBy, error) {
	sig, err := key.Sign(message)
	if err != nil {
		return SignedBy{}, err
	}
	return SignedBy{Signer: key.PublicKey(), Signature: sig}, nil
}

// Verify returns the identities whose signature over message is valid.
// Invalid signatures are dropped rather than reported so a forged entry can
// never widen the set.
func Verify(message []byte, presented []SignedBy) Signers {
	out := make(Signers, len(presented))
	for _, p := range presented {
		if p.Signature.Verify(p.Signer, message) {
			out[p.Signer] = struct{}{}
		}
	}
	return out
}

// Authorize signs the digest of op/args with every key and verifies the
// result. Used by in-process callers that hold their own keys.
func Authorize(op string, args [][]byte, keys ...solana.PrivateKey) (Signers, error) {
	msg := OperationDigest(op, args...)
	presented := make([]SignedBy, 0, len(keys))
	for _, k := range keys {
		sb, err := Sign(k, msg)
		if err != nil {
			return nil, err
		}
		presented = append(presented, sb)
	}
	return Verify(msg, presented), nil
}

// OperationDigest is the canonical message signed for an operation.
func OperationDigest(op string, args ...[]byte) []byte {
	h := sha256.New()
	writeField(h, []byte(op))
	for _, a := range args {
		writeField(h, a)
	}
	return h.Sum(nil)
}

func writeField(h io.Writer, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// U64 encodes an operation argument.
func U64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
