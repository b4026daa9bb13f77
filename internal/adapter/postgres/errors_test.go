package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/taskbot/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil, "task", uuid.New()))
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got := MapError(pgx.ErrNoRows, "task", id)

	require.ErrorIs(t, got, domain.ErrNotFound)
	assert.Equal(t, fmt.Sprintf("task %s: not found", id), got.Error())
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	got := MapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows), "user", int64(7))
	assert.ErrorIs(t, got, domain.ErrNotFound)
	assert.Contains(t, got.Error(), "user 7")
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{code: "23505", want: domain.ErrAlreadyExists},
		{code: "23503", want: domain.ErrNotFound},
		{code: "23514", want: domain.ErrValidation},
		{code: "22001", want: domain.ErrValidation},
		{code: "57P01", want: domain.ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			got := MapError(&pgconn.PgError{Code: tt.code}, "task", uuid.New())
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		got := MapError(ctxErr, "task", uuid.New())
		assert.ErrorIs(t, got, ctxErr)
		assert.False(t, errors.Is(got, domain.ErrStorageUnavailable))
	}
}

func TestMapError_UnknownIsStorageUnavailable(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	got := MapError(cause, "task", uuid.New())

	assert.ErrorIs(t, got, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, got, cause)
}
