package store

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/golang/protobuf/proto"
	"github.com/streamingfast/cfstore"
)

// RowMap is a resolved row: column family, then column qualifier, then the
// latest value of that column.
type RowMap map[string]map[string]string

func (m RowMap) Value(family, column string) (value string, present bool) {
	columns, found := m[family]
	if !found {
		return "", false
	}

	value, present = columns[column]
	return
}

// Families returns the column families of the row, sorted.
func (m RowMap) Families() []string {
	out := make([]string, 0, len(m))
	for family := range m {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}

func (m RowMap) String(family, column string) (string, error) {
	value, present := m.Value(family, column)
	if !present {
		return "", NewErrColumnNotPresent(family + ":" + column)
	}
	return value, nil
}

// Bool reads `true`/`false` textual values as well as single byte values
// written with `cfstore.BoolToByte`.
func (m RowMap) Bool(family, column string) (bool, error) {
	value, present := m.Value(family, column)
	if !present {
		return false, NewErrColumnNotPresent(family + ":" + column)
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b, nil
	}

	if len(value) == 1 {
		return cfstore.ByteToBool([]byte(value)), nil
	}

	return false, fmt.Errorf("column '%s:%s' value %q is not a boolean", family, column, value)
}

// Uint64 reads decimal values as well as 8 bytes big endian values written
// with `cfstore.Uint64ToBytes`. An 8 bytes value holding a non-printable byte
// is always read as big endian, an 8 bytes value made only of ASCII digits
// (like "12345678") is read as decimal.
func (m RowMap) Uint64(family, column string) (uint64, error) {
	value, present := m.Value(family, column)
	if !present {
		return 0, NewErrColumnNotPresent(family + ":" + column)
	}

	if value == "" {
		return 0, NewErrEmptyValue(family + ":" + column)
	}

	if len(value) == 8 && !isPrintableASCII(value) {
		return binary.BigEndian.Uint64([]byte(value)), nil
	}

	if v, err := strconv.ParseUint(value, 10, 64); err == nil {
		return v, nil
	}

	if len(value) == 8 {
		return binary.BigEndian.Uint64([]byte(value)), nil
	}

	return 0, fmt.Errorf("column '%s:%s' value %q is not an unsigned integer", family, column, value)
}

func isPrintableASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] >= 0x7f {
			return false
		}
	}
	return true
}

func (m RowMap) JSON(family, column string, v interface{}) error {
	value, present := m.Value(family, column)
	if !present {
		return NewErrColumnNotPresent(family + ":" + column)
	}

	if value == "" {
		return NewErrEmptyValue(family + ":" + column)
	}

	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("unmarshalling error in column '%s:%s': %w", family, column, err)
	}

	return nil
}

// Proto unmarshals the column into the message returned by `protoResolver`.
// The resolver is only called when the column holds a value, which avoids
// allocating messages for absent columns.
func (m RowMap) Proto(family, column string, protoResolver func() proto.Message) error {
	value, present := m.Value(family, column)
	if !present {
		return NewErrColumnNotPresent(family + ":" + column)
	}

	if value == "" {
		return NewErrEmptyValue(family + ":" + column)
	}

	if err := proto.Unmarshal([]byte(value), protoResolver()); err != nil {
		return fmt.Errorf("unmarshalling error in column '%s:%s': %w", family, column, err)
	}

	return nil
}
