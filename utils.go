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
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"

	"github.com/google/uuid"
)

// B is a shortcut for (must) hex.DecodeString
var B = func(s string) []byte {
	out, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}

	return out
}

// H is a shortcut for hex.EncodeToString
var H = hex.EncodeToString

func BoolToByte(value bool) byte {
	if value {
		return byte(1)
	}
	return byte(0)
}

func Uint64ToBytes(value uint64) []byte {
	out := make([]byte, 8)
	bigEndian.PutUint64(out, value)

	return out
}

func ByteToBool(value []byte) bool {
	if len(value) <= 0 {
		return false
	}

	return value[0] != 0
}

var bigEndian = binary.BigEndian

// RowKeyDigestLength is the length, in hex characters, of the digest part of
// a generated row key.
const RowKeyDigestLength = 16

// Digest16 returns the 16 middle hex characters (8..24) of the MD5 digest of
// `in`, the short form of an MD5 hex digest.
func Digest16(in string) string {
	sum := md5.Sum([]byte(in))
	return hex.EncodeToString(sum[:])[8:24]
}

// NewRowKey generates a synthetic row key made of `prefix` followed by the
// 16 characters digest of a random UUID.
func NewRowKey(prefix string) string {
	return prefix + Digest16(uuid.NewString())
}
