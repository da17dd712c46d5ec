package store

import (
	"strconv"
)

const Unlimited = 0

// Row is a resolved row along with its key.
type Row struct {
	Key     string
	Columns RowMap
}

type Limit int

func (l Limit) Bounded() bool {
	return int(l) > 0
}

func (l Limit) Unbounded() bool {
	return int(l) <= 0
}

func (l Limit) String() string {
	if l.Unbounded() {
		return "unlimited"
	}

	return strconv.FormatInt(int64(l), 10)
}
