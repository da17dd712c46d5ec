package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		in       error
		expected Kind
	}{
		{"invalid argument", invalidArgument("bad %s", "input"), KindInvalidArgument},
		{"not found", ErrNotFound, KindNotFound},
		{"table not found", fmt.Errorf("wrapped: %w", ErrTableNotFound), KindNotFound},
		{"grpc not found", status.Error(codes.NotFound, "table missing"), KindNotFound},
		{"table exists", ErrTableExists, KindExists},
		{"grpc already exists", status.Error(codes.AlreadyExists, "table exists"), KindExists},
		{"not connected", ErrNotConnected, KindConnection},
		{"other", errors.New("boom"), KindIO},
		{"op error", &OpError{Op: "close", Kind: KindClose, Err: errors.New("boom")}, KindClose},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, kindOf(test.in))
		})
	}
}

func TestOpError(t *testing.T) {
	err := newOpError("create_table", "users", ErrTableExists)
	assert.Equal(t, KindExists, err.Kind)
	assert.True(t, errors.Is(err, ErrTableExists))
	assert.True(t, IsKind(err, KindExists))
	assert.False(t, IsKind(err, KindIO))
	assert.Equal(t, "create_table users (exists): table already exists", err.Error())

	again := newOpError("other", "other", err)
	assert.Same(t, err, again, "operation errors are never wrapped twice")

	noTable := newOpError("list_tables", "", errors.New("boom"))
	assert.Equal(t, "list_tables (io): boom", noTable.Error())
}
