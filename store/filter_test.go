package store

import (
	"regexp"
	"testing"

	"cloud.google.com/go/bigtable"
	"github.com/stretchr/testify/assert"
)

func TestExact(t *testing.T) {
	assert.Equal(t, `a\.b\*`, exact("a.b*"))
	assert.Equal(t, "plain", exact("plain"))
	assert.Equal(t, "", exact(""))
	assert.Equal(t, `a\x0ab`, exact("a\nb"))
	assert.Equal(t, `\xff\xfe`, exact("\xff\xfe"))
	assert.Equal(t, `\xc3\xa9t\xc3\xa9`, exact("été"))
	assert.Equal(t, `\x00\x7f`, exact("\x00\x7f"))

	compiled := regexp.MustCompile("^(?:" + exact("\x01a.b\x1f") + ")$")
	assert.True(t, compiled.MatchString("\x01a.b\x1f"))
	assert.False(t, compiled.MatchString("\x01axb\x1f"))
}

func TestColumnEqualsFilter(t *testing.T) {
	expected := bigtable.ConditionFilter(
		bigtable.ChainFilters(
			bigtable.FamilyFilter("cf1"),
			bigtable.ColumnFilter(`e\.mail`),
			bigtable.LatestNFilter(1),
			bigtable.ValueFilter(`a\+b@x\.org`),
		),
		bigtable.PassAllFilter(),
		bigtable.BlockAllFilter(),
	)

	assert.Equal(t, expected, columnEqualsFilter("cf1", "e.mail", []byte("a+b@x.org")))
}

func TestAllColumnsEqualFilter(t *testing.T) {
	assert.Nil(t, allColumnsEqualFilter("cf1", nil))
	assert.Nil(t, allColumnsEqualFilter("cf1", map[string][]byte{}))

	expected := bigtable.ConditionFilter(
		columnPredicate("cf1", "age", []byte("42")),
		bigtable.ConditionFilter(
			columnPredicate("cf1", "city", []byte("Paris")),
			bigtable.PassAllFilter(),
			bigtable.BlockAllFilter(),
		),
		bigtable.BlockAllFilter(),
	)

	actual := allColumnsEqualFilter("cf1", map[string][]byte{
		"city": []byte("Paris"),
		"age":  []byte("42"),
	})
	assert.Equal(t, expected, actual)
}

func TestReadOptionsFilter(t *testing.T) {
	options := NewReadOptions()
	assert.Equal(t, bigtable.LatestNFilter(1), options.filter(nil))
	assert.Len(t, options.bigtableOptions(nil), 1)

	options = NewReadOptions(WithLimit(10), WithFamilies("cf1", "cf.2"))
	assert.Equal(t, Limit(10), options.Limit)
	assert.Equal(t, bigtable.ChainFilters(bigtable.FamilyFilter(`cf1|cf\.2`), bigtable.LatestNFilter(1)), options.filter(nil))
	assert.Len(t, options.bigtableOptions(nil), 2)

	rowKeys := bigtable.RowKeyFilter("abc.*")
	assert.Equal(t, bigtable.ChainFilters(rowKeys, bigtable.LatestNFilter(1)), NewReadOptions().filter(rowKeys))
}

func TestLimit(t *testing.T) {
	assert.Equal(t, "unlimited", Limit(Unlimited).String())
	assert.Equal(t, "5", Limit(5).String())
}
