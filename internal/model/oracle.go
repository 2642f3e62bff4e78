package model

// PriceSample is one oracle reading. Price and Confidence are raw integers
// scaled by 10^Exponent.
type PriceSample struct {
	Price       int64
	Confidence  uint64
	Exponent    int32
	PublishTime int64
}
