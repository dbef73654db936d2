package oracle

import (
	"context"
	"math"
	"time"
)

// Quote is one fixed-point price observation. Price carries Expo implicit
// decimal places; feeds conventionally use -8.
type Quote struct {
	FeedID      string
	Price       int64
	Expo        int32
	Conf        uint64
	PublishTime time.Time
}

// Decimal converts the fixed-point price to a decimal value using the
// feed's own exponent.
func (q Quote) Decimal() float64 {
	if q.Expo < 0 {
		return float64(q.Price) / math.Pow10(int(-q.Expo))
	}
	return float64(q.Price) * math.Pow10(int(q.Expo))
}

// Client abstracts the price-oracle network.
type Client interface {
	// GetPriceUpdateData returns signed update payloads suitable for
	// posting on-chain alongside a mint.
	GetPriceUpdateData(ctx context.Context, feedIDs []string) ([][]byte, error)
	// GetLatestPrice reads the most recent published price for a feed.
	GetLatestPrice(ctx context.Context, feedID string) (Quote, error)
}
