package oracle

import (
	"context"
	"crypto/sha256"
	"time"
)

// FakeClient serves a constant price so the service can run without an
// oracle network. Update payloads are derived by hashing the feed id.
type FakeClient struct {
	Price int64
	Expo  int32
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Price: 100_00000000, Expo: -8}
}

func (f *FakeClient) GetPriceUpdateData(_ context.Context, feedIDs []string) ([][]byte, error) {
	updates := make([][]byte, 0, len(feedIDs))
	for _, id := range feedIDs {
		sum := sha256.Sum256([]byte("update:" + id))
		updates = append(updates, sum[:])
	}
	return updates, nil
}

func (f *FakeClient) GetLatestPrice(_ context.Context, feedID string) (Quote, error) {
	return Quote{
		FeedID:      feedID,
		Price:       f.Price,
		Expo:        f.Expo,
		Conf:        1,
		PublishTime: time.Now().UTC(),
	}, nil
}
