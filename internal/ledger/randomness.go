package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"StableLottery/internal/model"
)

// DrawInputs are the only entropy a draw consumes. All of them are recorded
// on the Lottery so anyone can recompute the result.
type DrawInputs struct {
	OraclePrice       int64
	OraclePublishTime int64
	DrawTimestamp     int64
	PrizePool         uint64 // before the fee is taken
	LotteryID         uint64
}

// DeriveSeed hashes the draw inputs into the 32-byte draw seed.
func DeriveSeed(in DrawInputs) [32]byte {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(in.OraclePrice))
	binary.LittleEndian.PutUint64(buf[8:], uint64(in.OraclePublishTime))
	binary.LittleEndian.PutUint64(buf[16:], uint64(in.DrawTimestamp))
	binary.LittleEndian.PutUint64(buf[24:], in.PrizePool)
	binary.LittleEndian.PutUint64(buf[32:], in.LotteryID)
	return sha256.Sum256(buf[:])
}

// ExpandNumbers stretches seed into one number per slot, each in
// [1, maxNumber]. Numbers may repeat across slots.
func ExpandNumbers(seed [32]byte, maxNumber uint8) model.Numbers {
	var out model.Numbers
	var buf [33]byte
	copy(buf[:32], seed[:])
	for i := range out {
		buf[32] = byte(i)
		sum := sha256.Sum256(buf[:])
		out[i] = uint8(1 + binary.BigEndian.Uint64(sum[:8])%uint64(maxNumber))
	}
	return out
}

// checkSample rejects oracle samples that are non-positive or further than
// maxAge seconds from now in either direction.
func checkSample(s model.PriceSample, now, maxAge int64) error {
	if s.Price <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOraclePrice, s.Price)
	}
	age := now - s.PublishTime
	if age < 0 {
		age = -age
	}
	if age > maxAge {
		return fmt.Errorf("%w: published %ds from now, limit %ds", ErrStaleOracleData, age, maxAge)
	}
	return nil
}
