package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DeleteRow removes the whole row `rowKey`. Deleting a row that does not
// exist succeeds.
func (c *Client) DeleteRow(ctx context.Context, table, rowKey string) (err error) {
	ctx, op := c.startOp(ctx, "delete_row", table, zap.String("row_key", rowKey))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	return c.deleteRows(ctx, table, []string{rowKey})
}

// DeleteRows removes every row of `rowKeys` in as few round-trips as the
// flush thresholds allow. Row keys that could not be deleted are available
// through `basebigt.FailedKeys(err)`.
func (c *Client) DeleteRows(ctx context.Context, table string, rowKeys []string) (err error) {
	ctx, op := c.startOp(ctx, "delete_rows", table, zap.Int("row_count", len(rowKeys)))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	return c.deleteRows(ctx, table, rowKeys)
}

func (c *Client) deleteRows(ctx context.Context, table string, rowKeys []string) error {
	if table == "" {
		return invalidArgument("table name is required")
	}

	t := c.bt.Table(table)
	for _, key := range rowKeys {
		if key == "" {
			return invalidArgument("row key is required")
		}
		t.DeleteKey(key)
	}

	pending := len(t.PendingRows())
	if err := t.FlushMutations(ctx); err != nil {
		return err
	}

	rowsWritten.WithLabelValues(table).Add(float64(pending))
	return nil
}

// DeleteRowsByPrefix drops, server side, every row whose key starts with
// `prefix`. The prefix cannot be empty, use `DropTable` to get rid of
// everything.
func (c *Client) DeleteRowsByPrefix(ctx context.Context, table, prefix string) (err error) {
	ctx, op := c.startOp(ctx, "delete_rows_by_prefix", table, zap.String("prefix", prefix))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	if table == "" {
		return invalidArgument("table name is required")
	}

	if prefix == "" {
		return invalidArgument("prefix is required")
	}

	if err := c.bt.Admin.DropRowRange(ctx, table, prefix); err != nil {
		return fmt.Errorf("drop row range: %w", err)
	}

	return nil
}
