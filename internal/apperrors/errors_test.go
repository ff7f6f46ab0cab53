package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   apperrors.Kind
		status int
	}{
		{"validation", apperrors.Validation("amount must be positive"), apperrors.KindValidation, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.NotFound("account", "a1")), apperrors.KindNotFound, http.StatusNotFound},
		{"overpayment", apperrors.NewAppError(apperrors.ErrOverpayment, "too much", nil), apperrors.KindOverpayment, http.StatusUnprocessableEntity},
		{"conflict sentinel", apperrors.ErrConcurrencyConflict, apperrors.KindConcurrencyConflict, http.StatusConflict},
		{"second default", apperrors.NewAppError(apperrors.ErrDefaultAccountExists, "TRY already has a default", nil), apperrors.KindDefaultAccountExists, http.StatusConflict},
		{"plain error", errors.New("boom"), apperrors.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, apperrors.KindOf(tt.err))
			assert.Equal(t, tt.status, apperrors.HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("driver failure")
	err := apperrors.NewAppError(apperrors.ErrConcurrencyConflict, "balance row changed", cause)

	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "balance row changed", apperrors.Message(err))
}

func TestDefaultAccountExistsIsNotAConflict(t *testing.T) {
	err := apperrors.NewAppError(apperrors.ErrDefaultAccountExists, "TRY already has a default", nil)

	assert.ErrorIs(t, err, apperrors.ErrDefaultAccountExists)
	assert.NotErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}

func TestMessageMasksInternalErrors(t *testing.T) {
	assert.Equal(t, "internal server error", apperrors.Message(errors.New("pq: connection refused")))
}
