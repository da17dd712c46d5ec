package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"cloud.google.com/go/bigtable"
)

// Bigtable regular expressions must match the whole family, qualifier or
// value, so quoting is enough to get an exact match. Patterns are parsed as
// UTF-8 text but matched against raw bytes, so bytes outside printable ASCII
// are written as `\xHH` escapes.
func exact(in string) string {
	var out strings.Builder
	out.Grow(len(in))
	for i := 0; i < len(in); i++ {
		b := in[i]
		switch {
		case b < 0x20 || b >= 0x7f:
			fmt.Fprintf(&out, `\x%02x`, b)
		case isRegexpMeta(b):
			out.WriteByte('\\')
			out.WriteByte(b)
		default:
			out.WriteByte(b)
		}
	}

	return out.String()
}

func isRegexpMeta(b byte) bool {
	return len(regexp.QuoteMeta(string(b))) > 1
}

func familiesFilter(families []string) bigtable.Filter {
	quoted := make([]string, len(families))
	for i, family := range families {
		quoted[i] = exact(family)
	}

	return bigtable.FamilyFilter(strings.Join(quoted, "|"))
}

// columnPredicate matches cells of `family:column` whose latest version is
// exactly `value`.
func columnPredicate(family, column string, value []byte) bigtable.Filter {
	return bigtable.ChainFilters(
		bigtable.FamilyFilter(exact(family)),
		bigtable.ColumnFilter(exact(column)),
		bigtable.LatestNFilter(1),
		bigtable.ValueFilter(exact(string(value))),
	)
}

// columnEqualsFilter keeps whole rows whose latest `family:column` value is
// `value`. Rows without that column are dropped.
func columnEqualsFilter(family, column string, value []byte) bigtable.Filter {
	return bigtable.ConditionFilter(columnPredicate(family, column, value), bigtable.PassAllFilter(), bigtable.BlockAllFilter())
}

// allColumnsEqualFilter keeps whole rows matching every `column == value`
// of `params`. Conditions are nested so that each one only applies when the
// previous one held. A nil filter is returned for empty `params`.
func allColumnsEqualFilter(family string, params map[string][]byte) bigtable.Filter {
	columns := make([]string, 0, len(params))
	for column := range params {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var filter bigtable.Filter
	for i := len(columns) - 1; i >= 0; i-- {
		column := columns[i]

		pass := filter
		if pass == nil {
			pass = bigtable.PassAllFilter()
		}
		filter = bigtable.ConditionFilter(columnPredicate(family, column, params[column]), pass, bigtable.BlockAllFilter())
	}

	return filter
}
