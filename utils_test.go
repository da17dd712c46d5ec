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

package cfstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolToByte(t *testing.T) {
	assert.Equal(t, byte(1), BoolToByte(true))
	assert.Equal(t, byte(0), BoolToByte(false))
}

func TestByteToBool(t *testing.T) {
	assert.Equal(t, false, ByteToBool([]byte{}))
	assert.Equal(t, false, ByteToBool([]byte{0}))
	assert.Equal(t, true, ByteToBool([]byte{1}))
	assert.Equal(t, false, ByteToBool([]byte{0, 1}))
	assert.Equal(t, true, ByteToBool([]byte{1, 0}))
}

func TestUint64ToBytes(t *testing.T) {
	assert.Equal(t, B("0000000000000001"), Uint64ToBytes(1))
	assert.Equal(t, B("ffffffffffffffff"), Uint64ToBytes(18446744073709551615))
}

func TestDigest16(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	assert.Equal(t, "bc4b2a76b9719d91", Digest16("hello"))
	assert.Len(t, Digest16(""), RowKeyDigestLength)
}

func TestNewRowKey(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		key := NewRowKey("user#")
		require.True(t, strings.HasPrefix(key, "user#"))
		require.Len(t, key, len("user#")+RowKeyDigestLength)
		require.False(t, seen[key], "duplicate row key %q", key)
		seen[key] = true
	}

	assert.Len(t, NewRowKey(""), RowKeyDigestLength)
}
