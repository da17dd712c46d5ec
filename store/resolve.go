package store

import (
	"fmt"

	"cloud.google.com/go/bigtable"
	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"go.uber.org/zap"
)

// ResolveResult flattens `row` into a `RowMap`, keeping for each column only
// the value of its most recent version. Values are returned as stored.
func ResolveResult(row bigtable.Row) RowMap {
	out, _ := resolve(row, nil)
	return out
}

// ResolveResult is the package level `ResolveResult` that also decompresses
// values written by this client.
func (c *Client) ResolveResult(row bigtable.Row) (RowMap, error) {
	return resolve(row, c.compressor.Decompress)
}

func resolve(row bigtable.Row, decode func([]byte) ([]byte, error)) (RowMap, error) {
	latest := basebigt.LatestItems(row)
	out := make(RowMap, len(latest))
	for family, items := range latest {
		columns := make(map[string]string, len(items))
		for column, item := range items {
			value := item.Value
			if decode != nil {
				var err error
				if value, err = decode(value); err != nil {
					return nil, fmt.Errorf("decoding %s:%s of row %q: %w", family, column, item.Row, err)
				}
			}

			zlog.Debug("resolved cell",
				zap.String("row_key", item.Row),
				zap.String("family", family),
				zap.String("column", column),
				zap.Int64("timestamp", int64(item.Timestamp)),
				zap.Int("value_size", len(value)),
			)
			columns[column] = string(value)
		}
		out[family] = columns
	}

	return out, nil
}
