package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type stubReceiptFetcher struct {
	errs    []error
	receipt *types.Receipt
	calls   int
}

func (s *stubReceiptFetcher) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	idx := s.calls
	s.calls++
	if idx < len(s.errs) {
		return nil, s.errs[idx]
	}
	return s.receipt, nil
}

func TestWaitForReceiptRetriesWhilePending(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = time.Millisecond
	defer func() { receiptPollInterval = old }()

	fetcher := &stubReceiptFetcher{
		errs:    []error{ethereum.NotFound, ethereum.NotFound},
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	tx := types.NewTx(&types.LegacyTx{})

	receipt, err := waitForReceipt(context.Background(), fetcher, tx)
	if err != nil {
		t.Fatalf("wait for receipt: %v", err)
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if fetcher.calls != 3 {
		t.Fatalf("expected 3 polls, got %d", fetcher.calls)
	}
}

func TestWaitForReceiptStopsOnTransportError(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = time.Millisecond
	defer func() { receiptPollInterval = old }()

	fetcher := &stubReceiptFetcher{errs: []error{errors.New("connection reset")}}
	tx := types.NewTx(&types.LegacyTx{})

	if _, err := waitForReceipt(context.Background(), fetcher, tx); err == nil {
		t.Fatalf("expected transport error to stop polling")
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected a single poll, got %d", fetcher.calls)
	}
}
