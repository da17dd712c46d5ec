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
	"cloud.google.com/go/bigtable"
)

func IsEmptyRow(row bigtable.Row) bool {
	return len(row) <= 0
}

// LatestItems returns, per family and per column qualifier, the version of
// the cell with the greatest timestamp. Older versions are dropped. On equal
// timestamps, the first item seen wins.
func LatestItems(row bigtable.Row) map[string]map[string]bigtable.ReadItem {
	out := make(map[string]map[string]bigtable.ReadItem, len(row))
	for family, items := range row {
		columns := make(map[string]bigtable.ReadItem, len(items))
		for _, item := range items {
			column := item.Column
			if _, qualifier, ok := SplitColumn(item.Column); ok {
				column = qualifier
			}

			if existing, found := columns[column]; found && existing.Timestamp >= item.Timestamp {
				continue
			}
			columns[column] = item
		}
		out[family] = columns
	}

	return out
}
