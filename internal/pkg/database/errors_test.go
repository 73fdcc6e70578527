package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func pgError(code string) error {
	return &pgconn.PgError{Code: code, Message: "test"}
}

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"connection exception class 08", pgError("08006"), true},
		{"admin shutdown", pgError("57P01"), true},
		{"context deadline", context.DeadlineExceeded, false},
		{"wrapped context deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), false},
		{"context canceled", context.Canceled, false},
		{"undefined function", pgError("42883"), false},
		{"unique violation", pgError("23505"), false},
		{"record not found", gorm.ErrRecordNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestIsUndefinedObjectError(t *testing.T) {
	assert.True(t, IsUndefinedObjectError(pgError("42883")))
	assert.True(t, IsUndefinedObjectError(pgError("42P01")))
	assert.False(t, IsUndefinedObjectError(pgError("08006")))
	assert.False(t, IsUndefinedObjectError(errors.New("plain")))
	assert.False(t, IsUndefinedObjectError(nil))
}

func TestIsTimeoutError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	assert.True(t, IsTimeoutError(ctx.Err()))
	assert.True(t, IsTimeoutError(pgError("57014")))
	assert.False(t, IsTimeoutError(pgError("23505")))
	assert.False(t, IsTimeoutError(nil))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(pgError("23505")))
	assert.False(t, IsDuplicateKeyError(pgError("23503")))
	assert.False(t, IsDuplicateKeyError(errors.New("duplicate")))
}
