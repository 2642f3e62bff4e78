// Package address derives record addresses from stable seeds.
//
// Every record lives at a program-derived address, so the same
// (namespace, key) tuple always maps to the same location and there is no
// registry to keep in sync.
package address

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID namespaces all derived addresses of a deployment.
var DefaultProgramID = solana.MustPublicKeyFromBase58("6RHVMDZ3MmHw224mMmqmMnXttgovREK57gD2NHgjTpz5")

const (
	seedConfig   = "config"
	seedTreasury = "treasury"
	seedLottery  = "lottery"
	seedTicket   = "ticket"
	seedToken    = "token"
)

// Deriver maps seeds to addresses under one program id.
type Deriver struct {
	ProgramID solana.PublicKey
}

func New(programID solana.PublicKey) Deriver {
	return Deriver{ProgramID: programID}
}

// Default uses DefaultProgramID.
func Default() Deriver {
	return New(DefaultProgramID)
}

func (d Deriver) Config() solana.PublicKey {
	return d.derive([]byte(seedConfig))
}

func (d Deriver) Treasury() solana.PublicKey {
	return d.derive([]byte(seedTreasury))
}

func (d Deriver) Lottery(lotteryID uint64) solana.PublicKey {
	return d.derive([]byte(seedLottery), u64(lotteryID))
}

// Ticket allows at most one ticket per purchaser per lottery.
func (d Deriver) Ticket(lotteryID uint64, purchaser solana.PublicKey) solana.PublicKey {
	return d.derive([]byte(seedTicket), u64(lotteryID), purchaser.Bytes())
}

// TokenAccount is owner's account for mint. Owners may themselves be
// derived addresses (lottery pool, treasury vault).
func (d Deriver) TokenAccount(owner, mint solana.PublicKey) solana.PublicKey {
	return d.derive([]byte(seedToken), owner.Bytes(), mint.Bytes())
}

func (d Deriver) derive(seeds ...[]byte) solana.PublicKey {
	addr, _, err := solana.FindProgramAddress(seeds, d.ProgramID)
	if err != nil {
		// only reachable if no bump seed yields an off-curve point
		panic(fmt.Sprintf("derive address: %v", err))
	}
	return addr
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
