package apperr

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind is the closed set of failure categories the API reports.
type Kind string

const (
	KindValidation               Kind = "VALIDATION_ERROR"
	KindProofGeneration          Kind = "PROOF_GENERATION_ERROR"
	KindAssetNotFound            Kind = "ASSET_NOT_FOUND"
	KindInsufficientFunds        Kind = "INSUFFICIENT_FUNDS"
	KindInvalidProof             Kind = "INVALID_PROOF"
	KindInsufficientAvailability Kind = "INSUFFICIENT_AVAILABILITY"
	KindPaymentMismatch          Kind = "PAYMENT_MISMATCH"
	KindContractReverted         Kind = "CONTRACT_REVERTED"
	KindInternal                 Kind = "INTERNAL_ERROR"
)

// HTTPStatus maps a kind to the status code the API responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAssetNotFound:
		return http.StatusNotFound
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is a classified failure. Message is the single user-visible line;
// Detail carries the collaborator's own diagnostic and is only surfaced for
// validation and proof-generation failures.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// Wrap classifies err as Internal unless it already carries a kind.
// Errors are classified once, at the first point they are observed.
func Wrap(err error, message string) *Error {
	if classified, ok := err.(*Error); ok {
		return classified
	}
	return &Error{Kind: KindInternal, Message: message, Detail: err.Error()}
}

// revertRules maps revert-reason substrings to kinds. Substring matching on
// free-text revert messages is fragile; keeping the whole mapping here means
// extending it never touches workflow code.
var revertRules = []struct {
	substr  string
	kind    Kind
	message string
}{
	{"InsufficientFractionsAvailable", KindInsufficientAvailability, "not enough fractions available for this purchase"},
	{"InvalidProof", KindInvalidProof, "eligibility proof was rejected by the ledger"},
	{"PaymentMismatch", KindPaymentMismatch, "payment does not match the computed cost"},
}

// ClassifyRevert maps a ledger call failure to the taxonomy. Already
// classified errors pass through unchanged.
func ClassifyRevert(err error) *Error {
	if classified, ok := err.(*Error); ok {
		return classified
	}

	msg := err.Error()
	for _, rule := range revertRules {
		if strings.Contains(msg, rule.substr) {
			return &Error{Kind: rule.kind, Message: rule.message, Detail: msg}
		}
	}
	if strings.Contains(strings.ToLower(msg), "insufficient funds") {
		return &Error{Kind: KindInsufficientFunds, Message: "payment below the required amount", Detail: msg}
	}
	if strings.Contains(strings.ToLower(msg), "revert") {
		// the reverted path keeps the raw reason in the user-visible line
		return &Error{Kind: KindContractReverted, Message: "ledger transaction reverted: " + msg}
	}
	return &Error{Kind: KindInternal, Message: "ledger call failed", Detail: msg}
}
