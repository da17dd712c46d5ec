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
	"fmt"
	"testing"

	"cloud.google.com/go/bigtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLatestItems(t *testing.T) {
	row := bigtable.Row{
		"cf1": []bigtable.ReadItem{
			{Row: "k", Column: "cf1:name", Timestamp: 1000, Value: []byte("old")},
			{Row: "k", Column: "cf1:name", Timestamp: 3000, Value: []byte("new")},
			{Row: "k", Column: "cf1:name", Timestamp: 2000, Value: []byte("middle")},
			{Row: "k", Column: "cf1:age", Timestamp: 1000, Value: []byte("42")},
		},
		"cf2": []bigtable.ReadItem{
			{Row: "k", Column: "cf2:name", Timestamp: 1000, Value: []byte("other")},
		},
	}

	latest := LatestItems(row)
	require.Len(t, latest, 2)
	assert.Equal(t, []byte("new"), latest["cf1"]["name"].Value)
	assert.Equal(t, bigtable.Timestamp(3000), latest["cf1"]["name"].Timestamp)
	assert.Equal(t, []byte("42"), latest["cf1"]["age"].Value)
	assert.Equal(t, []byte("other"), latest["cf2"]["name"].Value)
}

func TestLatestItemsEmpty(t *testing.T) {
	assert.True(t, IsEmptyRow(bigtable.Row{}))
	assert.Empty(t, LatestItems(bigtable.Row{}))
}

func TestSplitColumn(t *testing.T) {
	tests := []struct {
		in             string
		expectedFamily string
		expectedColumn string
		expectedOk     bool
	}{
		{"cf1:name", "cf1", "name", true},
		{"cf1:", "cf1", "", true},
		{"cf1:a:b", "cf1", "a:b", true},
		{"cf1", "", "", false},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			family, column, ok := SplitColumn(test.in)
			assert.Equal(t, test.expectedOk, ok)
			assert.Equal(t, test.expectedFamily, family)
			assert.Equal(t, test.expectedColumn, column)
		})
	}
}

func TestBatchOp(t *testing.T) {
	batch := NewBatchOp(100, 2)
	assert.False(t, batch.WouldFlushNext(10))

	batch.Op(10)
	batch.Op(10)
	assert.True(t, batch.WouldFlushNext(10), "third op exceeds the ops threshold")

	batch.Reset()
	assert.False(t, batch.WouldFlushNext(100))
	assert.True(t, batch.WouldFlushNext(101), "size threshold exceeded")
}

func TestChunks(t *testing.T) {
	table := &BaseTable{Name: "test", maxRowsBeforeFlush: 2, pendingIndex: map[string]int{}}
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		table.SetCell(key, "cf1", "name", []byte(key))
	}

	chunks := table.chunks(table.PendingRows())
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0].keys)
	assert.Equal(t, []string{"c", "d"}, chunks[1].keys)
	assert.Equal(t, []string{"e"}, chunks[2].keys)
	assert.Len(t, chunks[2].mutations, 1)
}

func TestPendingRowsMergePerKey(t *testing.T) {
	table := &BaseTable{Name: "test", pendingIndex: map[string]int{}}

	table.SetCell("a", "cf1", "name", []byte("x"))
	table.SetCell("a", "cf1", "age", []byte("1"))
	table.SetCell("b", "cf1", "name", []byte("y"))
	table.DeleteKey("c")

	rows := table.PendingRows()
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Key)
	assert.Len(t, rows[0].Sets, 2)
	assert.Equal(t, "b", rows[1].Key)
	assert.True(t, rows[2].DeleteRow)
	assert.Empty(t, rows[2].Sets)
}

func TestFailedKeys(t *testing.T) {
	err := &BulkError{Table: "t", FailedKeys: []string{"a", "b"}, Err: assert.AnError}
	assert.Equal(t, []string{"a", "b"}, FailedKeys(err))
	assert.Nil(t, FailedKeys(nil))

	combined := multierr.Combine(err, &BulkError{Table: "t", FailedKeys: []string{"c"}, Err: assert.AnError})
	assert.Equal(t, []string{"a", "b", "c"}, FailedKeys(fmt.Errorf("insert: %w", combined)))
	assert.Nil(t, FailedKeys(assert.AnError))
}
