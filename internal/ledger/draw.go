package ledger

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"StableLottery/internal/auth"
	"StableLottery/internal/model"
	"StableLottery/internal/safemath"
	"StableLottery/internal/store"
)

// ExecuteDraw closes sales, derives the winning numbers and takes the
// protocol fee. The oracle is read outside the write transaction; the state
// guard is checked again inside it so a concurrent draw can commit at most
// once.
func (e *Engine) ExecuteDraw(ctx context.Context, signers auth.Signers, lotteryID uint64) (model.Lottery, error) {
	err := e.store.View(func(tx *store.Tx) error {
		if _, err := e.requireOperator(tx, signers); err != nil {
			return err
		}
		lot, _, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		return drawable(lot)
	})
	if err != nil {
		return model.Lottery{}, fmt.Errorf("execute draw: %w", err)
	}

	sample, err := e.oracle.ReadPrice(ctx)
	if err != nil {
		return model.Lottery{}, fmt.Errorf("execute draw: read %s oracle: %w", e.oracle.Name(), err)
	}
	now := e.now()
	if err := checkSample(sample, now, seconds(e.params.MaxOracleStaleness)); err != nil {
		return model.Lottery{}, fmt.Errorf("execute draw: %w", err)
	}

	var (
		lot      model.Lottery
		operator solana.PublicKey
	)
	err = e.store.Update(func(tx *store.Tx) error {
		cfg, err := e.requireOperator(tx, signers)
		if err != nil {
			return err
		}
		operator = cfg.AuthorizedOperator
		current, lotAt, err := e.readLottery(tx, lotteryID)
		if err != nil {
			return err
		}
		lot = current
		if err := drawable(lot); err != nil {
			return err
		}

		lot.DrawSeed = DeriveSeed(DrawInputs{
			OraclePrice:       sample.Price,
			OraclePublishTime: sample.PublishTime,
			DrawTimestamp:     now,
			PrizePool:         lot.PrizePool,
			LotteryID:         lotteryID,
		})
		lot.WinningNumbers = ExpandNumbers(lot.DrawSeed, lot.MaxNumber)
		lot.HasWinningNumbers = true
		lot.DrawTimestamp = now
		lot.OraclePrice = sample.Price
		lot.OracleConfidence = sample.Confidence
		lot.OraclePublishTime = sample.PublishTime
		lot.State = model.StateCompleted

		fee, err := safemath.MulDiv(lot.PrizePool, e.params.FeeBps, BpsDenominator)
		if err != nil {
			return err
		}
		if err := e.creditTreasury(tx, lot, lotAt, fee, operator, false); err != nil {
			return err
		}
		if lot.PrizePool, err = safemath.Sub(lot.PrizePool, fee); err != nil {
			return err
		}
		lot.FeeTaken = fee
		lot.DistributablePool = lot.PrizePool
		return tx.Write(lotAt, &lot)
	})
	if err != nil {
		return model.Lottery{}, fmt.Errorf("execute draw: %w", err)
	}

	e.log.Info("ledger: draw executed",
		"lottery_id", lotteryID,
		"numbers", lot.WinningNumbers,
		"fee", lot.FeeTaken,
		"distributable", lot.DistributablePool,
		"oracle_price", lot.OraclePrice,
	)
	e.emit(&model.Event{
		Type:      model.EventDrawExecuted,
		Timestamp: lot.DrawTimestamp,
		LotteryID: lotteryID,
		Actor:     operator.String(),
		Amount:    lot.DistributablePool,
		Numbers:   lot.WinningNumbers.String(),
		Seed:      base58.Encode(lot.DrawSeed[:]),
	})
	return lot, nil
}

func drawable(lot model.Lottery) error {
	switch lot.State {
	case model.StateCreated:
		return nil
	case model.StateCompleted:
		return fmt.Errorf("%w: lottery %d", ErrDrawAlreadyExecuted, lot.LotteryID)
	default:
		return fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotOpen, lot.LotteryID, lot.State)
	}
}

// DrawVerification compares recorded winning numbers against a
// recomputation from the recorded inputs.
type DrawVerification struct {
	LotteryID  uint64        `json:"lottery_id"`
	Seed       string        `json:"seed"`
	Recorded   model.Numbers `json:"recorded"`
	Recomputed model.Numbers `json:"recomputed"`
	Valid      bool          `json:"valid"`
}

// VerifyDraw recomputes a completed lottery's seed and numbers. The seed
// covers the pool before the fee, which is the distributable snapshot plus
// the fee taken.
func VerifyDraw(lot model.Lottery) (DrawVerification, error) {
	if lot.State != model.StateCompleted || !lot.HasWinningNumbers {
		return DrawVerification{}, fmt.Errorf("%w: lottery %d is %s", ErrLotteryNotCompleted, lot.LotteryID, lot.State)
	}
	prePool, err := safemath.Add(lot.DistributablePool, lot.FeeTaken)
	if err != nil {
		return DrawVerification{}, err
	}
	seed := DeriveSeed(DrawInputs{
		OraclePrice:       lot.OraclePrice,
		OraclePublishTime: lot.OraclePublishTime,
		DrawTimestamp:     lot.DrawTimestamp,
		PrizePool:         prePool,
		LotteryID:         lot.LotteryID,
	})
	got := ExpandNumbers(seed, lot.MaxNumber)
	return DrawVerification{
		LotteryID:  lot.LotteryID,
		Seed:       base58.Encode(seed[:]),
		Recorded:   lot.WinningNumbers,
		Recomputed: got,
		Valid:      seed == lot.DrawSeed && got == lot.WinningNumbers,
	}, nil
}
