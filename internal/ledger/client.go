package ledger

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"assetrails/internal/contracts"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client abstracts the on-chain fractional-asset interaction.
type Client interface {
	GetUpdateFee(ctx context.Context, updateData [][]byte) (*big.Int, error)
	MintAsset(ctx context.Context, params MintParams) (*Receipt, error)
	PurchaseFraction(ctx context.Context, params PurchaseParams) (*Receipt, error)
	GetAssetMetadata(ctx context.Context, assetID uint64) (AssetMetadata, error)
	GetPriceAtMint(ctx context.Context, assetID uint64) (int64, error)
}

// HealthChecker is optionally implemented by clients backed by a live node.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type MintParams struct {
	DocumentHash    string
	TotalValue      *big.Int
	FractionCount   *big.Int
	MinFractionSize *big.Int
	PriceFeedID     [32]byte
	PriceUpdateData [][]byte
	LockupPeriod    time.Duration
	Payment         *big.Int // wei, must equal the quoted update fee
}

type PurchaseParams struct {
	AssetID   uint64
	Amount    *big.Int
	Secret    [32]byte
	Nullifier [32]byte
	Payment   *big.Int // wei
}

// Receipt is the confirmed outcome of a ledger-mutating call.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Logs        []*types.Log
}

// AssetMetadata mirrors the contract's per-asset record. An all-zero issuer
// is the contract's sentinel for a non-existent asset.
type AssetMetadata struct {
	Issuer            common.Address
	DocumentHash      string
	TotalValue        *big.Int
	FractionCount     *big.Int
	MinFractionSize   *big.Int
	MintedAt          time.Time
	OraclePriceAtMint int64
	PriceFeedID       [32]byte
	Verified          bool
}

func (m AssetMetadata) Exists() bool {
	return m.Issuer != (common.Address{})
}

// FeedIDHex renders the recorded feed identifier the way the oracle API
// expects it.
func (m AssetMetadata) FeedIDHex() string {
	return "0x" + hex.EncodeToString(m.PriceFeedID[:])
}

var assetABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(contracts.FractionalAssetABI))
	if err != nil {
		panic("ledger: invalid FractionalAsset ABI: " + err.Error())
	}
	return parsed
}

// ParseAssetMinted scans a receipt for the AssetMinted event and returns the
// assigned asset identifier. Absence of the event is not an error; the mint
// call itself already succeeded.
func ParseAssetMinted(r *Receipt) (uint64, bool) {
	eventID := assetABI.Events["AssetMinted"].ID
	for _, lg := range r.Logs {
		if len(lg.Topics) < 2 || lg.Topics[0] != eventID {
			continue
		}
		return new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(), true
	}
	return 0, false
}

// AssetMintedLog builds the event log the contract emits on mint. The fake
// client and test doubles use it to produce receipts ParseAssetMinted accepts.
func AssetMintedLog(assetID uint64, issuer common.Address) *types.Log {
	return &types.Log{
		Topics: []common.Hash{
			assetABI.Events["AssetMinted"].ID,
			common.BigToHash(new(big.Int).SetUint64(assetID)),
			common.BytesToHash(issuer.Bytes()),
		},
	}
}

// IsNotFound reports whether a metadata lookup failure is characteristic of a
// non-existent asset rather than a transport problem.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "AssetDoesNotExist") || strings.Contains(msg, "execution reverted")
}

// EncodeBytes32 packs an opaque caller-supplied value into the fixed-width
// form the contract expects. Hex input is decoded; anything else is copied
// byte-for-byte, left-aligned.
func EncodeBytes32(value string) [32]byte {
	var out [32]byte
	trimmed := strings.TrimPrefix(value, "0x")
	if decoded, err := hex.DecodeString(trimmed); err == nil && len(trimmed) == 64 {
		copy(out[:], decoded)
		return out
	}
	copy(out[:], []byte(value))
	return out
}
