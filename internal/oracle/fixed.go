package oracle

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"StableLottery/internal/model"
)

// FixedReader returns a controllable sample for development and testing.
// When Clock is set the sample is stamped with the clock's current time,
// so it never goes stale.
type FixedReader struct {
	Sample model.PriceSample
	Clock  clockwork.Clock
	Err    error
}

func NewFixedReader(price int64, clock clockwork.Clock) *FixedReader {
	return &FixedReader{Sample: model.PriceSample{Price: price}, Clock: clock}
}

func (f *FixedReader) Name() string { return "fixed" }

func (f *FixedReader) ReadPrice(_ context.Context) (model.PriceSample, error) {
	if f.Err != nil {
		return model.PriceSample{}, fmt.Errorf("%w: %v", ErrUnavailable, f.Err)
	}
	s := f.Sample
	if f.Clock != nil {
		s.PublishTime = f.Clock.Now().Unix()
	}
	return s, nil
}
