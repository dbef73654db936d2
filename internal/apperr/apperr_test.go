package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	require.Equal(t, http.StatusBadRequest, KindProofGeneration.HTTPStatus())
	require.Equal(t, http.StatusNotFound, KindAssetNotFound.HTTPStatus())
	require.Equal(t, http.StatusBadRequest, KindInsufficientFunds.HTTPStatus())
	require.Equal(t, http.StatusBadRequest, KindContractReverted.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestClassifyRevertTable(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{"execution reverted: InsufficientFractionsAvailable", KindInsufficientAvailability},
		{"execution reverted: InvalidProof", KindInvalidProof},
		{"execution reverted: PaymentMismatch", KindPaymentMismatch},
		{"insufficient funds for gas * price + value", KindInsufficientFunds},
		{"execution reverted: TransferPaused", KindContractReverted},
		{"dial tcp: connection refused", KindInternal},
	}

	for _, tc := range cases {
		got := ClassifyRevert(errors.New(tc.raw))
		require.Equal(t, tc.kind, got.Kind, "input %q", tc.raw)
		require.Contains(t, got.Error(), tc.raw, "original detail must survive classification")
	}
}

func TestClassifyRevertPassesThroughClassified(t *testing.T) {
	original := New(KindAssetNotFound, "asset 9 does not exist")
	require.Same(t, original, ClassifyRevert(original))
	require.Same(t, original, Wrap(original, "ignored"))
}

func TestWrapClassifiesOnce(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), "ledger call failed")
	require.Equal(t, KindInternal, wrapped.Kind)
	require.Equal(t, "ledger call failed", wrapped.Message)
	require.Equal(t, "boom", wrapped.Detail)
}
