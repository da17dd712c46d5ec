// Copyright 2019 dfuse Platform Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package basebigt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigtable"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type BaseTable struct {
	// We "inherit" from `Table` so that `ReadRows` and `ReadRow` is available directly on the instance.
	*bigtable.Table

	Name     string
	Families []string

	maxRowsBeforeFlush  uint64
	maxBytesBeforeFlush uint64

	pendingRows  []*PendingRow
	pendingIndex map[string]int
}

type SetEntry struct {
	Family string
	Column string
	Value  []byte
}

// PendingRow groups every change buffered for a single row key so that it
// is sent as one mutation.
type PendingRow struct {
	Key       string
	DeleteRow bool
	Sets      []*SetEntry
}

func (r *PendingRow) size() int {
	size := len(r.Key) + 20
	for _, s := range r.Sets {
		size += len(s.Family) + len(s.Column) + len(s.Value) + 20
	}
	return size
}

func (r *PendingRow) mutation() *bigtable.Mutation {
	mut := bigtable.NewMutation()
	if r.DeleteRow {
		mut.DeleteRow()
	}

	now := bigtable.Now().TruncateToMilliseconds()
	for _, s := range r.Sets {
		mut.Set(s.Family, s.Column, now, s.Value)
	}
	return mut
}

func NewBaseTable(name string, families []string, client *bigtable.Client, maxRowsBeforeFlush, maxBytesBeforeFlush uint64) *BaseTable {
	return &BaseTable{
		Table:               client.Open(name),
		Families:            families,
		Name:                name,
		maxRowsBeforeFlush:  maxRowsBeforeFlush,
		maxBytesBeforeFlush: maxBytesBeforeFlush,
		pendingIndex:        map[string]int{},
	}
}

func (b *BaseTable) PendingRows() []*PendingRow {
	return b.pendingRows
}

func (b *BaseTable) pendingRow(key string) *PendingRow {
	if idx, found := b.pendingIndex[key]; found {
		return b.pendingRows[idx]
	}

	row := &PendingRow{Key: key}
	b.pendingIndex[key] = len(b.pendingRows)
	b.pendingRows = append(b.pendingRows, row)
	return row
}

func (b *BaseTable) SetCell(key, family, column string, value []byte) {
	row := b.pendingRow(key)
	row.Sets = append(row.Sets, &SetEntry{
		Family: family,
		Column: column,
		Value:  value,
	})
}

// DeleteKey buffers the deletion of the whole row `key`. Cells set before
// on the same key are discarded.
func (b *BaseTable) DeleteKey(key string) {
	row := b.pendingRow(key)
	row.DeleteRow = true
	row.Sets = nil
}

// FlushMutations sends every buffered row, in chunks bounded by the flush
// thresholds. Rows that could not be written, including the ones of chunks
// never sent because `ctx` was cancelled, are reported through `*BulkError`.
func (b *BaseTable) FlushMutations(ctx context.Context) error {
	if len(b.pendingRows) == 0 {
		return nil
	}

	rows := b.pendingRows
	b.pendingRows = nil
	b.pendingIndex = map[string]int{}

	if tracer.Enabled() {
		zlog.Debug("number of rows in table before flushing", zap.String("table_name", b.Name), zap.Int("length_pending_rows", len(rows)))
	}

	chunks := b.chunks(rows)

	var errs error
	for i, chunk := range chunks {
		if err := b.doFlushMutations(ctx, chunk.keys, chunk.mutations); err != nil {
			errs = multierr.Append(errs, err)
		}

		if ctx.Err() != nil && i < len(chunks)-1 {
			var unsent []string
			for _, rest := range chunks[i+1:] {
				unsent = append(unsent, rest.keys...)
			}

			zlog.Debug("flush interrupted", zap.String("table_name", b.Name), zap.Int("unsent_rows", len(unsent)))
			return multierr.Append(errs, &BulkError{Table: b.Name, FailedKeys: unsent, Err: ctx.Err()})
		}
	}

	return errs
}

type mutationChunk struct {
	keys      []string
	mutations []*bigtable.Mutation
}

func (b *BaseTable) chunks(rows []*PendingRow) (out []*mutationChunk) {
	batch := NewBatchOp(b.maxBytesBeforeFlush, b.maxRowsBeforeFlush)
	current := &mutationChunk{}
	for _, row := range rows {
		size := row.size()
		if len(current.keys) > 0 && batch.WouldFlushNext(size) {
			zlog.Debug("splitting flush in chunks", zap.String("table_name", b.Name), zap.Object("batch", batch))
			out = append(out, current)
			current = &mutationChunk{}
			batch.Reset()
		}

		current.keys = append(current.keys, row.Key)
		current.mutations = append(current.mutations, row.mutation())
		batch.Op(size)
	}

	return append(out, current)
}

func (b *BaseTable) doFlushMutations(ctx context.Context, keys []string, mutations []*bigtable.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	if len(mutations) == 1 {
		if err := b.Apply(ctx, keys[0], mutations[0]); err != nil {
			return &BulkError{Table: b.Name, FailedKeys: keys, Err: err}
		}
		return nil
	}

	errs, err := b.ApplyBulk(ctx, keys, mutations)
	if err != nil {
		return &BulkError{Table: b.Name, FailedKeys: keys, Err: err}
	}
	if len(errs) != 0 {
		bulkErr := &BulkError{Table: b.Name}
		for i, rowErr := range errs {
			if rowErr == nil {
				continue
			}
			bulkErr.FailedKeys = append(bulkErr.FailedKeys, keys[i])
			bulkErr.Err = multierr.Append(bulkErr.Err, fmt.Errorf("row %q: %w", keys[i], rowErr))
		}
		if len(bulkErr.FailedKeys) > 0 {
			return bulkErr
		}
	}

	return nil
}

// BulkError reports the row keys that could not be written by a flush.
type BulkError struct {
	Table      string
	FailedKeys []string
	Err        error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("apply bulk error for table %s (%d rows failed): %s", e.Table, len(e.FailedKeys), e.Err)
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// FailedKeys collects the failed row keys out of `err`, which can be a
// single `*BulkError`, a combination of them, or an error wrapping either.
func FailedKeys(err error) (out []string) {
	if err == nil {
		return nil
	}

	if bulkErr, ok := err.(*BulkError); ok {
		return bulkErr.FailedKeys
	}

	if errs := multierr.Errors(err); len(errs) > 1 {
		for _, e := range errs {
			out = append(out, FailedKeys(e)...)
		}
		return out
	}

	return FailedKeys(errors.Unwrap(err))
}

// TableAdmin is the part of `*bigtable.AdminClient` needed to create a table.
type TableAdmin interface {
	CreateTable(ctx context.Context, table string) error
	CreateColumnFamily(ctx context.Context, table, family string) error
	SetGCPolicy(ctx context.Context, table, family string, policy bigtable.GCPolicy) error
	DeleteTable(ctx context.Context, table string) error
}

var _ TableAdmin = (*bigtable.AdminClient)(nil)

// Create creates the table along with its families, each keeping at most
// `maxVersions` versions. The admin error is returned as is when the table
// already exists. When a family cannot be set up, the table is dropped so
// that the creation can be attempted again.
func (b *BaseTable) Create(ctx context.Context, admin TableAdmin, maxVersions int) error {
	zlog.Info("creating table", zap.String("name", b.Name), zap.Strings("families", b.Families))
	if err := admin.CreateTable(ctx, b.Name); err != nil {
		return err
	}

	if err := b.ensureFamilies(ctx, admin, maxVersions); err != nil {
		if dropErr := admin.DeleteTable(ctx, b.Name); dropErr != nil {
			zlog.Warn("unable to drop partially created table", zap.String("name", b.Name), zap.Error(dropErr))
		}
		return err
	}

	return nil
}

func (b *BaseTable) ensureFamilies(ctx context.Context, admin TableAdmin, maxVersions int) error {
	for _, family := range b.Families {
		if err := admin.CreateColumnFamily(ctx, b.Name, family); err != nil && !IsAlreadyExistsError(err) {
			return fmt.Errorf("create family %s on table %s: %w", family, b.Name, err)
		}

		if err := admin.SetGCPolicy(ctx, b.Name, family, bigtable.MaxVersionsPolicy(maxVersions)); err != nil {
			return fmt.Errorf("apply gc policy on family %s of table %s: %w", family, b.Name, err)
		}
	}

	return nil
}

func SplitColumn(familyColumn string) (family, column string, ok bool) {
	chunks := strings.SplitN(familyColumn, ":", 2)
	if len(chunks) != 2 {
		return "", "", false
	}
	return chunks[0], chunks[1], true
}
