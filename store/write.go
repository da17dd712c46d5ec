package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/streamingfast/cfstore"
	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"go.uber.org/zap"
)

// InsertOne writes `value` in `family:column` of row `rowKey`.
func (c *Client) InsertOne(ctx context.Context, table, rowKey, family, column, value string) (err error) {
	ctx, op := c.startOp(ctx, "insert_one", table, zap.String("row_key", rowKey), zap.String("family", family), zap.String("column", column))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	if err := validateCell(table, rowKey, family); err != nil {
		return err
	}

	t := c.bt.Table(table)
	t.SetCell(rowKey, family, column, c.compressor.Compress([]byte(value)))
	if err := t.FlushMutations(ctx); err != nil {
		return err
	}

	rowsWritten.WithLabelValues(table).Inc()
	return nil
}

// InsertBatch writes every entry of `rows` as a new row of `table`, each
// map key being a column of `family`. Row keys are generated, see
// `cfstore.NewRowKey`, and returned in the order of `rows`. When the write
// fails, the generated keys are still returned and `basebigt.FailedKeys`
// tells which ones were not written.
func (c *Client) InsertBatch(ctx context.Context, table, family string, rows []map[string]interface{}, rowKeyPrefix string) (keys []string, err error) {
	ctx, op := c.startOp(ctx, "insert_batch", table, zap.String("family", family), zap.Int("row_count", len(rows)))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	return c.insertRows(ctx, table, family, rows, rowKeyPrefix)
}

// InsertBatchFromFile is `InsertBatchFromReader` over the file at `path`.
func (c *Client) InsertBatchFromFile(ctx context.Context, table, family, path, rowKeyPrefix string) (keys []string, err error) {
	ctx, op := c.startOp(ctx, "insert_batch_file", table, zap.String("family", family), zap.String("path", path))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			zlog.Warn("unable to close input file", zap.String("path", path), zap.Error(closeErr))
		}
	}()

	rows, err := decodeJSONLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c.insertRows(ctx, table, family, rows, rowKeyPrefix)
}

// InsertBatchFromReader reads one JSON object per line out of `r` and writes
// each of them as a single new row of `table`, like `InsertBatch` does.
func (c *Client) InsertBatchFromReader(ctx context.Context, table, family string, r io.Reader, rowKeyPrefix string) (keys []string, err error) {
	ctx, op := c.startOp(ctx, "insert_batch_reader", table, zap.String("family", family))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	rows, err := decodeJSONLines(r)
	if err != nil {
		return nil, err
	}

	return c.insertRows(ctx, table, family, rows, rowKeyPrefix)
}

func (c *Client) insertRows(ctx context.Context, table, family string, rows []map[string]interface{}, rowKeyPrefix string) ([]string, error) {
	if err := validateTarget(table, family); err != nil {
		return nil, err
	}

	t := c.bt.Table(table)
	keys := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, invalidArgument("row #%d has no column", i)
		}

		key := cfstore.NewRowKey(rowKeyPrefix)
		for column, value := range row {
			cell, err := cellValue(value)
			if err != nil {
				return nil, invalidArgument("row #%d column %q: %s", i, column, err)
			}
			t.SetCell(key, family, column, c.compressor.Compress(cell))
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return keys, nil
	}

	if err := t.FlushMutations(ctx); err != nil {
		failed := basebigt.FailedKeys(err)
		rowsWritten.WithLabelValues(table).Add(float64(len(keys) - len(failed)))
		return keys, err
	}

	rowsWritten.WithLabelValues(table).Add(float64(len(keys)))
	return keys, nil
}

// decodeJSONLines reads a stream of JSON objects, one per row.
func decodeJSONLines(r io.Reader) (out []map[string]interface{}, err error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	for {
		var row map[string]interface{}
		if err := decoder.Decode(&row); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, invalidArgument("decoding row #%d: %s", len(out), err)
		}

		out = append(out, row)
	}
}

// cellValue turns a decoded value into the bytes stored in its cell. A nil
// value is stored as an empty value, composite values as their JSON encoding.
func cellValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return []byte{}, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.Number:
		return []byte(v.String()), nil
	case bool:
		return []byte(strconv.FormatBool(v)), nil
	case int:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(v, 10)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return json.Marshal(v)
	}
}

func validateCell(table, rowKey, family string) error {
	if rowKey == "" {
		return invalidArgument("row key is required")
	}
	return validateTarget(table, family)
}

func validateTarget(table, family string) error {
	switch {
	case table == "":
		return invalidArgument("table name is required")
	case family == "":
		return invalidArgument("column family is required")
	}
	return nil
}
