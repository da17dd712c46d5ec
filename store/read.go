package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"cloud.google.com/go/bigtable"
	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"go.uber.org/zap"
)

// QueryAll returns every row of `table`, in row key order.
func (c *Client) QueryAll(ctx context.Context, table string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "query_all", table)
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	return c.collect(ctx, table, bigtable.InfiniteRange(""), nil, opts)
}

// QueryByRowKey returns the single row `rowKey`, `ErrNotFound` is returned
// when it does not exist.
func (c *Client) QueryByRowKey(ctx context.Context, table, rowKey string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "query_by_row_key", table, zap.String("row_key", rowKey))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	if table == "" {
		return nil, invalidArgument("table name is required")
	}

	if rowKey == "" {
		return nil, invalidArgument("row key is required")
	}

	options := NewReadOptions(opts...)
	row, err := c.bt.Client.Open(table).ReadRow(ctx, rowKey, bigtable.RowFilter(options.filter(nil)))
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}

	if basebigt.IsEmptyRow(row) {
		return nil, ErrNotFound
	}

	columns, err := c.ResolveResult(row)
	if err != nil {
		return nil, err
	}

	rowsRead.WithLabelValues(table).Inc()
	return []RowMap{columns}, nil
}

// QueryByColumn returns the rows whose latest `family:column` value is
// exactly `value`. Rows without that column never match.
func (c *Client) QueryByColumn(ctx context.Context, table, family, column, value string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "query_by_column", table, zap.String("family", family), zap.String("column", column))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	if err := validateTarget(table, family); err != nil {
		return nil, err
	}

	filter := columnEqualsFilter(family, column, c.compressor.Compress([]byte(value)))
	return c.collect(ctx, table, bigtable.InfiniteRange(""), filter, opts)
}

// QueryByColumns returns the rows matching every `column == value` pair of
// `params`, all columns being in `family`. Empty `params` returns every row.
func (c *Client) QueryByColumns(ctx context.Context, table, family string, params map[string]string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "query_by_columns", table, zap.String("family", family), zap.Int("predicate_count", len(params)))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	if err := validateTarget(table, family); err != nil {
		return nil, err
	}

	values := make(map[string][]byte, len(params))
	for column, value := range params {
		values[column] = c.compressor.Compress([]byte(value))
	}

	return c.collect(ctx, table, bigtable.InfiniteRange(""), allColumnsEqualFilter(family, values), opts)
}

// RowKeyPrefixQuery returns the rows whose key starts with `prefix`. An
// empty prefix returns every row.
func (c *Client) RowKeyPrefixQuery(ctx context.Context, table, prefix string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "row_key_prefix_query", table, zap.String("prefix", prefix))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	return c.collect(ctx, table, prefixRowSet(prefix), nil, opts)
}

// RowKeyRegexQuery returns the rows whose whole key matches the RE2
// expression `pattern`.
func (c *Client) RowKeyRegexQuery(ctx context.Context, table, pattern string, opts ...ReadOption) (rows []RowMap, err error) {
	ctx, op := c.startOp(ctx, "row_key_regex_query", table, zap.String("pattern", pattern))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	if pattern == "" {
		return nil, invalidArgument("pattern is required")
	}

	if _, err := regexp.Compile(pattern); err != nil {
		return nil, invalidArgument("pattern %q: %s", pattern, err)
	}

	return c.collect(ctx, table, bigtable.InfiniteRange(""), bigtable.RowKeyFilter(pattern), opts)
}

// Scan streams the rows of `table` along with their keys. Reading stops
// early when `ctx` is cancelled, which callers not draining the iterator
// must do.
func (c *Client) Scan(ctx context.Context, table string, opts ...ReadOption) *Iterator {
	it := NewIterator(ctx)
	if err := c.ensureOpen(); err != nil {
		it.PushError(&OpError{Op: "scan", Table: table, Kind: KindConnection, Err: err})
		return it
	}

	go func() {
		var err error
		opCtx, op := c.startOp(ctx, "scan", table)
		defer func() {
			op.end(&err)
			if err != nil {
				it.PushError(err)
				return
			}
			it.PushFinished()
		}()

		err = c.readRows(opCtx, table, bigtable.InfiniteRange(""), nil, NewReadOptions(opts...), func(row *Row) bool {
			return it.PushItem(row)
		})
	}()

	return it
}

func prefixRowSet(prefix string) bigtable.RowSet {
	if prefix == "" {
		return bigtable.InfiniteRange("")
	}
	return bigtable.PrefixRange(prefix)
}

func (c *Client) collect(ctx context.Context, table string, rowSet bigtable.RowSet, filter bigtable.Filter, opts []ReadOption) (out []RowMap, err error) {
	options := NewReadOptions(opts...)
	err = c.readRows(ctx, table, rowSet, filter, options, func(row *Row) bool {
		out = append(out, row.Columns)
		return true
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// readRows streams `rowSet` to `fn` until it returns false. The underlying
// stream is always released before returning.
func (c *Client) readRows(ctx context.Context, table string, rowSet bigtable.RowSet, filter bigtable.Filter, options *ReadOptions, fn func(row *Row) bool) error {
	if table == "" {
		return invalidArgument("table name is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if tracer.Enabled() {
		zlog.Debug("reading rows", zap.String("table", table), zap.Object("options", options))
	}

	start := time.Now()
	count := 0
	var resolveErr error
	err := c.bt.Client.Open(table).ReadRows(ctx, rowSet, func(row bigtable.Row) bool {
		columns, err := c.ResolveResult(row)
		if err != nil {
			resolveErr = err
			return false
		}

		count++
		return fn(&Row{Key: row.Key(), Columns: columns})
	}, options.bigtableOptions(filter)...)

	rowsRead.WithLabelValues(table).Add(float64(count))
	if resolveErr != nil {
		return resolveErr
	}

	if err != nil {
		if isContextError(err) && ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("read rows: %w", err)
	}

	zlog.Debug("rows read", zap.String("table", table), zap.Int("count", count), zap.Duration("elapsed", time.Since(start)))
	return nil
}
