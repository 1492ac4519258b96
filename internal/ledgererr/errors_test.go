package ledgererr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("property", "P-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("dispose: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestAlreadyDisposedIsConflict(t *testing.T) {
	err := AlreadyDisposed("P-1")
	assert.True(t, errors.Is(err, ErrAlreadyDisposed))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(Conflict("lost race"), ErrAlreadyDisposed))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain message",
			err:  NotFound("case", "C-9"),
			want: "case C-9 not found",
		},
		{
			name: "fields appended",
			err: Validation(
				FieldError{Field: "station", Message: "is required"},
				FieldError{Field: "year", Message: "must be positive"},
			),
			want: "invalid input (station: is required; year: must be positive)",
		},
		{
			name: "cause appended",
			err:  StoreUnavailable(errors.New("disk I/O error"), "create case"),
			want: "store unavailable during create case: disk I/O error",
		},
		{
			name: "code fallback",
			err:  &Error{Code: CodeImmutableRecord},
			want: "immutable record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestFieldsOf(t *testing.T) {
	err := fmt.Errorf("create: %w", Validation(FieldError{Field: "firDate", Message: "is required"}))
	fields := FieldsOf(err)
	assert.Len(t, fields, 1)
	assert.Equal(t, "firDate", fields[0].Field)
	assert.Nil(t, FieldsOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
