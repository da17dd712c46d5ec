package store

import (
	"strings"

	"cloud.google.com/go/bigtable"
	"go.uber.org/zap/zapcore"
)

func NewReadOptions(opts ...ReadOption) *ReadOptions {
	out := &ReadOptions{}
	for _, opt := range opts {
		opt.Apply(out)
	}

	return out
}

type ReadOptions struct {
	Limit    Limit
	Families []string
}

func (o *ReadOptions) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("limit", o.Limit.String())
	encoder.AddString("families", strings.Join(o.Families, ","))
	return nil
}

// filter restricts `filter` to the requested families and to the latest
// version of each cell. A nil `filter` means every row.
func (o *ReadOptions) filter(filter bigtable.Filter) bigtable.Filter {
	filters := make([]bigtable.Filter, 0, 3)
	if filter != nil {
		filters = append(filters, filter)
	}

	if len(o.Families) > 0 {
		filters = append(filters, familiesFilter(o.Families))
	}
	filters = append(filters, bigtable.LatestNFilter(1))

	if len(filters) == 1 {
		return filters[0]
	}
	return bigtable.ChainFilters(filters...)
}

func (o *ReadOptions) bigtableOptions(filter bigtable.Filter) []bigtable.ReadOption {
	out := []bigtable.ReadOption{bigtable.RowFilter(o.filter(filter))}
	if o.Limit.Bounded() {
		out = append(out, bigtable.LimitRows(int64(o.Limit)))
	}
	return out
}

type ReadOption interface {
	Apply(o *ReadOptions)
}

type ReadOptionFunc func(o *ReadOptions)

func (f ReadOptionFunc) Apply(o *ReadOptions) {
	f(o)
}

// WithLimit bounds the number of rows returned, 0 or less means unlimited.
func WithLimit(limit int) ReadOption {
	return ReadOptionFunc(func(o *ReadOptions) {
		o.Limit = Limit(limit)
	})
}

// WithFamilies only returns the cells of the given column families.
func WithFamilies(families ...string) ReadOption {
	return ReadOptionFunc(func(o *ReadOptions) {
		o.Families = append(o.Families, families...)
	})
}
