package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthClient talks to the FractionalAsset contract over JSON-RPC.
type EthClient struct {
	client    *ethclient.Client
	contract  *bind.BoundContract
	abi       abi.ABI
	address   common.Address
	chainID   *big.Int
	transacts *bind.TransactOpts
}

type EthClientConfig struct {
	RPCURL          string
	PrivateKeyHex   string
	ContractAddress string
}

func NewEthClient(ctx context.Context, cfg EthClientConfig) (*EthClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("fractional asset address is required")
	}
	if cfg.PrivateKeyHex == "" {
		return nil, fmt.Errorf("private key is required for submitting transactions")
	}

	cli, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	bound := bind.NewBoundContract(address, assetABI, cli, cli, cli)

	pk, err := parsePrivateKey(cfg.PrivateKeyHex)
	if err != nil {
		return nil, err
	}

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	txOpts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	txOpts.Context = ctx
	txOpts.GasLimit = 0 // let node estimate
	txOpts.GasPrice = nil
	txOpts.Nonce = nil

	return &EthClient{
		client:    cli,
		contract:  bound,
		abi:       assetABI,
		address:   address,
		chainID:   chainID,
		transacts: txOpts,
	}, nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func (c *EthClient) GetUpdateFee(ctx context.Context, updateData [][]byte) (*big.Int, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getUpdateFee", updateData); err != nil {
		return nil, fmt.Errorf("get update fee: %w", err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *EthClient) MintAsset(ctx context.Context, params MintParams) (*Receipt, error) {
	opts := *c.transacts
	opts.Context = ctx
	opts.Value = params.Payment

	tx, err := c.contract.Transact(&opts, "mintAsset",
		params.DocumentHash,
		params.TotalValue,
		params.FractionCount,
		params.MinFractionSize,
		params.PriceFeedID,
		params.PriceUpdateData,
		big.NewInt(int64(params.LockupPeriod/time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("mint asset tx: %w", err)
	}
	return c.awaitReceipt(ctx, tx)
}

func (c *EthClient) PurchaseFraction(ctx context.Context, params PurchaseParams) (*Receipt, error) {
	opts := *c.transacts
	opts.Context = ctx
	opts.Value = params.Payment

	tx, err := c.contract.Transact(&opts, "purchaseFraction",
		new(big.Int).SetUint64(params.AssetID),
		params.Amount,
		params.Secret,
		params.Nullifier,
	)
	if err != nil {
		return nil, fmt.Errorf("purchase fraction tx: %w", err)
	}
	return c.awaitReceipt(ctx, tx)
}

func (c *EthClient) GetAssetMetadata(ctx context.Context, assetID uint64) (AssetMetadata, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getAssetMetadata", new(big.Int).SetUint64(assetID)); err != nil {
		return AssetMetadata{}, fmt.Errorf("get asset metadata: %w", err)
	}

	mintedAt := *abi.ConvertType(out[5], new(*big.Int)).(**big.Int)

	return AssetMetadata{
		Issuer:            *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		DocumentHash:      *abi.ConvertType(out[1], new(string)).(*string),
		TotalValue:        *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		FractionCount:     *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		MinFractionSize:   *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		MintedAt:          time.Unix(mintedAt.Int64(), 0).UTC(),
		OraclePriceAtMint: *abi.ConvertType(out[6], new(int64)).(*int64),
		PriceFeedID:       *abi.ConvertType(out[7], new([32]byte)).(*[32]byte),
		Verified:          *abi.ConvertType(out[8], new(bool)).(*bool),
	}, nil
}

func (c *EthClient) GetPriceAtMint(ctx context.Context, assetID uint64) (int64, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "getPriceAtMint", new(big.Int).SetUint64(assetID)); err != nil {
		return 0, fmt.Errorf("get price at mint: %w", err)
	}
	return *abi.ConvertType(out[0], new(int64)).(*int64), nil
}

func (c *EthClient) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("rpc client not configured")
	}
	_, err := c.client.BlockNumber(ctx)
	return err
}

// awaitReceipt waits for on-chain confirmation. A broadcast transaction is
// never abandoned; callers must learn its outcome.
func (c *EthClient) awaitReceipt(ctx context.Context, tx *types.Transaction) (*Receipt, error) {
	receipt, err := waitForReceipt(ctx, c.client, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("transaction %s reverted on-chain", tx.Hash().Hex())
	}
	return &Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Logs:        receipt.Logs,
	}, nil
}

type receiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var receiptPollInterval = 2 * time.Second

// waitForReceipt polls until the transaction is mined or context cancelled.
func waitForReceipt(ctx context.Context, client receiptFetcher, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, tx.Hash())
		if receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
