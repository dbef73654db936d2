package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestParseAssetMinted(t *testing.T) {
	receipt := &Receipt{
		Logs: []*types.Log{
			{Topics: []common.Hash{common.HexToHash("0x01")}}, // unrelated event
			AssetMintedLog(42, common.HexToAddress("0xabc")),
		},
	}

	id, ok := ParseAssetMinted(receipt)
	if !ok || id != 42 {
		t.Fatalf("expected asset id 42, got %d ok=%v", id, ok)
	}
}

func TestParseAssetMintedAbsent(t *testing.T) {
	if _, ok := ParseAssetMinted(&Receipt{}); ok {
		t.Fatalf("expected no event in empty receipt")
	}
}

func TestEncodeBytes32(t *testing.T) {
	hexIn := EncodeBytes32("0x00000000000000000000000000000000000000000000000000000000000000ff")
	if hexIn[31] != 0xff || hexIn[0] != 0 {
		t.Fatalf("hex input not decoded: %v", hexIn)
	}

	opaque := EncodeBytes32("my-secret")
	if string(opaque[:9]) != "my-secret" {
		t.Fatalf("opaque input not left-copied: %v", opaque)
	}
	if opaque[9] != 0 {
		t.Fatalf("expected zero padding after opaque input")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(errors.New("execution reverted: AssetDoesNotExist")) {
		t.Fatalf("expected contract guard to look like not-found")
	}
	if IsNotFound(errors.New("connection refused")) {
		t.Fatalf("transport errors are not not-found")
	}
	if IsNotFound(nil) {
		t.Fatalf("nil is not not-found")
	}
}

func TestFakeClientMintAndPurchase(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeClient()

	fee, err := fake.GetUpdateFee(ctx, [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("update fee: %v", err)
	}

	receipt, err := fake.MintAsset(ctx, MintParams{
		DocumentHash:    "doc-1",
		TotalValue:      big.NewInt(1000),
		FractionCount:   big.NewInt(10),
		MinFractionSize: big.NewInt(1),
		Payment:         fee,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	id, ok := ParseAssetMinted(receipt)
	if !ok {
		t.Fatalf("expected minted event in fake receipt")
	}

	meta, err := fake.GetAssetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if !meta.Exists() {
		t.Fatalf("expected minted asset to exist")
	}

	if _, err := fake.PurchaseFraction(ctx, PurchaseParams{AssetID: id, Amount: big.NewInt(11)}); err == nil {
		t.Fatalf("expected oversubscribed purchase to revert")
	}
	if _, err := fake.PurchaseFraction(ctx, PurchaseParams{AssetID: id, Amount: big.NewInt(10)}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
}

func TestFakeClientUnknownAssetIsSentinel(t *testing.T) {
	fake := NewFakeClient()

	meta, err := fake.GetAssetMetadata(context.Background(), 7)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Exists() {
		t.Fatalf("expected zero-issuer sentinel for unknown asset")
	}
}
