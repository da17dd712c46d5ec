package store

import (
	"context"
	"io"

	"cloud.google.com/go/bigtable"
)

var _ Store = (*Client)(nil)

// Store is the set of operations offered by `Client`, for callers wanting to
// substitute it.
type Store interface {
	// CreateTable returns `ErrTableExists`, leaving the table untouched, when `name` already exists.
	CreateTable(ctx context.Context, name string, families ...string) error
	// DropTable returns `ErrTableNotFound` when `name` does not exist.
	DropTable(ctx context.Context, name string) error
	TableExists(ctx context.Context, name string) (bool, error)
	ListTables(ctx context.Context) ([]string, error)

	InsertOne(ctx context.Context, table, rowKey, family, column, value string) error
	// InsertBatch writes one row per entry of `rows` under generated keys, which are returned.
	InsertBatch(ctx context.Context, table, family string, rows []map[string]interface{}, rowKeyPrefix string) ([]string, error)
	InsertBatchFromFile(ctx context.Context, table, family, path, rowKeyPrefix string) ([]string, error)
	InsertBatchFromReader(ctx context.Context, table, family string, r io.Reader, rowKeyPrefix string) ([]string, error)

	DeleteRow(ctx context.Context, table, rowKey string) error
	DeleteRows(ctx context.Context, table string, rowKeys []string) error
	DeleteRowsByPrefix(ctx context.Context, table, prefix string) error

	QueryAll(ctx context.Context, table string, opts ...ReadOption) ([]RowMap, error)
	// QueryByRowKey returns `ErrNotFound` when the row does not exist.
	QueryByRowKey(ctx context.Context, table, rowKey string, opts ...ReadOption) ([]RowMap, error)
	QueryByColumn(ctx context.Context, table, family, column, value string, opts ...ReadOption) ([]RowMap, error)
	QueryByColumns(ctx context.Context, table, family string, params map[string]string, opts ...ReadOption) ([]RowMap, error)
	RowKeyPrefixQuery(ctx context.Context, table, prefix string, opts ...ReadOption) ([]RowMap, error)
	RowKeyRegexQuery(ctx context.Context, table, pattern string, opts ...ReadOption) ([]RowMap, error)
	Scan(ctx context.Context, table string, opts ...ReadOption) *Iterator

	ResolveResult(row bigtable.Row) (RowMap, error)

	// Close releases the connection, the instance cannot be used afterwards.
	Close() error
}
