package oracle

import (
	"context"
	"errors"

	"StableLottery/internal/model"
)

// ErrUnavailable wraps every failure to obtain a sample.
var ErrUnavailable = errors.New("oracle unavailable")

// Reader returns the most recent price sample of one feed.
type Reader interface {
	ReadPrice(ctx context.Context) (model.PriceSample, error)
	Name() string
}
