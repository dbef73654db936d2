package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FakeClient emulates the contract in memory so the service can run without
// a chain. Transaction hashes are derived deterministically from the payload.
type FakeClient struct {
	UpdateFee *big.Int

	mu     sync.Mutex
	nextID uint64
	assets map[uint64]*fakeAsset
}

type fakeAsset struct {
	meta      AssetMetadata
	remaining *big.Int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		UpdateFee: big.NewInt(10),
		nextID:    1,
		assets:    make(map[uint64]*fakeAsset),
	}
}

func (f *FakeClient) GetUpdateFee(_ context.Context, _ [][]byte) (*big.Int, error) {
	return new(big.Int).Set(f.UpdateFee), nil
}

func (f *FakeClient) MintAsset(_ context.Context, params MintParams) (*Receipt, error) {
	if params.Payment == nil || params.Payment.Cmp(f.UpdateFee) < 0 {
		return nil, fmt.Errorf("insufficient funds for update fee")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	issuer := common.HexToAddress("0x" + fakeHashHex(params.DocumentHash)[:40])
	f.assets[id] = &fakeAsset{
		meta: AssetMetadata{
			Issuer:            issuer,
			DocumentHash:      params.DocumentHash,
			TotalValue:        new(big.Int).Set(params.TotalValue),
			FractionCount:     new(big.Int).Set(params.FractionCount),
			MinFractionSize:   new(big.Int).Set(params.MinFractionSize),
			MintedAt:          time.Now().UTC(),
			OraclePriceAtMint: 100_00000000, // fixed-point, 8 decimals
			PriceFeedID:       params.PriceFeedID,
			Verified:          true,
		},
		remaining: new(big.Int).Set(params.FractionCount),
	}

	return &Receipt{
		TxHash:      "0x" + fakeHashHex("mint:"+params.DocumentHash),
		BlockNumber: id,
		Logs:        []*types.Log{AssetMintedLog(id, issuer)},
	}, nil
}

func (f *FakeClient) PurchaseFraction(_ context.Context, params PurchaseParams) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	asset, ok := f.assets[params.AssetID]
	if !ok {
		return nil, fmt.Errorf("execution reverted: AssetDoesNotExist")
	}
	if asset.remaining.Cmp(params.Amount) < 0 {
		return nil, fmt.Errorf("execution reverted: InsufficientFractionsAvailable")
	}
	asset.remaining.Sub(asset.remaining, params.Amount)

	return &Receipt{
		TxHash:      "0x" + fakeHashHex(fmt.Sprintf("purchase:%d:%s", params.AssetID, params.Amount)),
		BlockNumber: params.AssetID,
	}, nil
}

func (f *FakeClient) GetAssetMetadata(_ context.Context, assetID uint64) (AssetMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	asset, ok := f.assets[assetID]
	if !ok {
		// mirror the contract sentinel: zero issuer, no error
		return AssetMetadata{}, nil
	}
	return asset.meta, nil
}

func (f *FakeClient) GetPriceAtMint(_ context.Context, assetID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	asset, ok := f.assets[assetID]
	if !ok {
		return 0, fmt.Errorf("execution reverted: AssetDoesNotExist")
	}
	return asset.meta.OraclePriceAtMint, nil
}

func fakeHashHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
