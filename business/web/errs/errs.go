// Package errs provides the trusted error type handlers use to report
// request failures to clients, and the mapping of ledger errors onto it.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context. Its message is safe to show to
// the client.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// statuses maps the expected ledger errors to the status reported.
var statuses = []struct {
	err    error
	status int
}{
	{database.ErrInvalidTx, http.StatusBadRequest},
	{database.ErrInvalidBlock, http.StatusBadRequest},
	{database.ErrBlockNotFound, http.StatusNotFound},
	{state.ErrNoTransactions, http.StatusBadRequest},
	{state.ErrChainChanged, http.StatusConflict},
	{state.ErrGenesisMismatch, http.StatusConflict},
}

// FromLedger converts an expected ledger error into a trusted error. Any
// other error is returned unchanged and reported as an internal error.
func FromLedger(err error) error {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return NewTrusted(err, s.status)
		}
	}
	return err
}
