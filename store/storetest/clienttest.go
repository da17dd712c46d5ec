package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/streamingfast/cfstore"
	"github.com/streamingfast/cfstore/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientTests = []struct {
	name string
	test func(t *testing.T, client *store.Client)
}{
	{"table_lifecycle", TestTableLifecycle},
	{"create_existing_table", TestCreateExistingTable},
	{"drop_missing_table", TestDropMissingTable},
	{"insert_and_get", TestInsertAndGet},
	{"query_all", TestQueryAll},
	{"query_by_column", TestQueryByColumn},
	{"query_by_columns", TestQueryByColumns},
	{"row_key_prefix", TestRowKeyPrefix},
	{"row_key_regex", TestRowKeyRegex},
	{"insert_batch", TestInsertBatch},
	{"insert_batch_from_reader", TestInsertBatchFromReader},
	{"delete", TestDelete},
	{"scan", TestScan},
	{"large_values", TestLargeValues},
	{"query_by_binary_and_large_values", TestQueryByBinaryAndLargeValues},
	{"closed_client", TestClosedClient},
}

var tableSeq int

func newTable(t *testing.T, client *store.Client, families ...string) string {
	t.Helper()

	tableSeq++
	name := fmt.Sprintf("t%d_%s", tableSeq, strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, client.CreateTable(context.Background(), name, families...))
	return name
}

func TestTableLifecycle(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	exists, err := client.TableExists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	tables, err := client.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, name)

	require.NoError(t, client.DropTable(ctx, name))

	exists, err = client.TableExists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateExistingTable(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)
	require.NoError(t, client.InsertOne(ctx, name, "row1", store.DefaultFamily, "name", "john"))

	err := client.CreateTable(ctx, name, "other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrTableExists))
	assert.True(t, store.IsKind(err, store.KindExists))

	rows, err := client.QueryByRowKey(ctx, name, "row1")
	require.NoError(t, err)
	assert.Equal(t, []store.RowMap{{"cf1": {"name": "john"}}}, rows)
}

func TestDropMissingTable(t *testing.T, client *store.Client) {
	err := client.DropTable(context.Background(), "table_that_does_not_exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrTableNotFound))
	assert.True(t, store.IsKind(err, store.KindNotFound))
}

func TestInsertAndGet(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client, "info", "stats")

	require.NoError(t, client.InsertOne(ctx, name, "user#1", "info", "name", "john"))
	require.NoError(t, client.InsertOne(ctx, name, "user#1", "stats", "visits", "3"))
	require.NoError(t, client.InsertOne(ctx, name, "user#1", "info", "name", "johnny"))

	rows, err := client.QueryByRowKey(ctx, name, "user#1")
	require.NoError(t, err)
	assert.Equal(t, []store.RowMap{{
		"info":  {"name": "johnny"},
		"stats": {"visits": "3"},
	}}, rows)

	rows, err = client.QueryByRowKey(ctx, name, "user#1", store.WithFamilies("stats"))
	require.NoError(t, err)
	assert.Equal(t, []store.RowMap{{"stats": {"visits": "3"}}}, rows)

	_, err = client.QueryByRowKey(ctx, name, "user#2")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = client.InsertOne(ctx, name, "", "info", "name", "x")
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
	assert.True(t, store.IsKind(err, store.KindInvalidArgument))
}

func TestQueryAll(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	rows, err := client.QueryAll(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, rows)

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "key", key))
	}

	rows, err = client.QueryAll(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []store.RowMap{
		{"cf1": {"key": "a"}},
		{"cf1": {"key": "b"}},
		{"cf1": {"key": "c"}},
	}, rows)

	rows, err = client.QueryAll(ctx, name, store.WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = client.QueryAll(ctx, "table_that_does_not_exist")
	assert.True(t, store.IsKind(err, store.KindNotFound))
}

func insertPeople(t *testing.T, client *store.Client, table string) {
	t.Helper()

	people := map[string]map[string]string{
		"p1": {"city": "Paris", "age": "30"},
		"p2": {"city": "Paris", "age": "40"},
		"p3": {"city": "Lyon", "age": "30"},
		"p4": {"age": "30"},
	}

	ctx := context.Background()
	for key, columns := range people {
		for column, value := range columns {
			require.NoError(t, client.InsertOne(ctx, table, key, "cf1", column, value))
		}
	}
}

func cities(rows []store.RowMap) (out []string) {
	for _, row := range rows {
		out = append(out, row["cf1"]["city"]+"/"+row["cf1"]["age"])
	}
	sort.Strings(out)
	return out
}

func TestQueryByColumn(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)
	insertPeople(t, client, name)

	rows, err := client.QueryByColumn(ctx, name, "cf1", "city", "Paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris/30", "Paris/40"}, cities(rows))

	rows, err = client.QueryByColumn(ctx, name, "cf1", "city", "Par")
	require.NoError(t, err)
	assert.Empty(t, rows, "equality is exact")

	rows, err = client.QueryByColumn(ctx, name, "cf1", "city", "Par.*")
	require.NoError(t, err)
	assert.Empty(t, rows, "values are not patterns")

	// Only the latest version is compared
	require.NoError(t, client.InsertOne(ctx, name, "p2", "cf1", "city", "Nice"))
	rows, err = client.QueryByColumn(ctx, name, "cf1", "city", "Paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris/30"}, cities(rows))
}

func TestQueryByColumns(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)
	insertPeople(t, client, name)

	rows, err := client.QueryByColumns(ctx, name, "cf1", map[string]string{"city": "Paris", "age": "30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris/30"}, cities(rows))

	rows, err = client.QueryByColumns(ctx, name, "cf1", map[string]string{"age": "30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/30", "Lyon/30", "Paris/30"}, cities(rows))

	rows, err = client.QueryByColumns(ctx, name, "cf1", map[string]string{"city": "Lyon", "age": "40"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = client.QueryByColumns(ctx, name, "cf1", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestRowKeyPrefix(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	for _, key := range []string{"abc123", "abc", "xabc", "ab", "abd"} {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "key", key))
	}

	rows, err := client.RowKeyPrefixQuery(ctx, name, "abc")
	require.NoError(t, err)
	assert.Equal(t, []store.RowMap{
		{"cf1": {"key": "abc"}},
		{"cf1": {"key": "abc123"}},
	}, rows)

	rows, err = client.RowKeyPrefixQuery(ctx, name, "")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestRowKeyRegex(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	for _, key := range []string{"user#1", "user#22", "admin#1"} {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "key", key))
	}

	rows, err := client.RowKeyRegexQuery(ctx, name, `user#\d+`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = client.RowKeyRegexQuery(ctx, name, "user#(")
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
}

func TestInsertBatch(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	var rows []map[string]interface{}
	for i := 0; i < 50; i++ {
		rows = append(rows, map[string]interface{}{"index": i, "even": i%2 == 0, "note": nil})
	}

	keys, err := client.InsertBatch(ctx, name, "cf1", rows, "batch-")
	require.NoError(t, err)
	require.Len(t, keys, 50)

	unique := map[string]bool{}
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, "batch-"))
		assert.Len(t, key, len("batch-")+cfstore.RowKeyDigestLength)
		unique[key] = true
	}
	assert.Len(t, unique, 50)

	stored, err := client.QueryAll(ctx, name)
	require.NoError(t, err)
	assert.Len(t, stored, 50)

	first, err := client.QueryByRowKey(ctx, name, keys[0])
	require.NoError(t, err)
	assert.Equal(t, store.RowMap{"cf1": {"index": "0", "even": "true", "note": ""}}, first[0])

	_, err = client.InsertBatch(ctx, name, "cf1", []map[string]interface{}{{}}, "")
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
}

func TestInsertBatchFromReader(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	in := strings.NewReader(`{"name":"john","age":30,"tags":["a","b"]}
{"name":"jane","age":31}
{"name":"jim","age":32,"address":{"city":"Paris"}}
`)

	keys, err := client.InsertBatchFromReader(ctx, name, "cf1", in, "")
	require.NoError(t, err)
	require.Len(t, keys, 3)

	rows, err := client.QueryAll(ctx, name)
	require.NoError(t, err)
	require.Len(t, rows, 3, "exactly one row per line")

	var names []string
	for _, row := range rows {
		names = append(names, row["cf1"]["name"])
	}
	sort.Strings(names)
	assert.Equal(t, []string{"jane", "jim", "john"}, names)

	john, err := client.QueryByColumn(ctx, name, "cf1", "name", "john")
	require.NoError(t, err)
	require.Len(t, john, 1)
	assert.Equal(t, `["a","b"]`, john[0]["cf1"]["tags"])
	assert.Equal(t, "30", john[0]["cf1"]["age"])
}

func TestDelete(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	for _, key := range []string{"a1", "a2", "b1", "b2", "c1"} {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "key", key))
	}

	require.NoError(t, client.DeleteRow(ctx, name, "c1"))
	require.NoError(t, client.DeleteRow(ctx, name, "does-not-exist"))
	require.NoError(t, client.DeleteRows(ctx, name, []string{"b1", "b2"}))

	rows, err := client.QueryAll(ctx, name)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, client.DeleteRowsByPrefix(ctx, name, "a"))
	rows, err = client.QueryAll(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.True(t, errors.Is(client.DeleteRowsByPrefix(ctx, name, ""), store.ErrInvalidArgument))
}

func TestScan(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	for _, key := range []string{"k3", "k1", "k2"} {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "key", key))
	}

	var keys []string
	it := client.Scan(ctx, name)
	for it.Next() {
		row := it.Item()
		assert.Equal(t, row.Key, row.Columns["cf1"]["key"])
		keys = append(keys, row.Key)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"k1", "k2", "k3"}, keys)

	keys = nil
	it = client.Scan(ctx, name, store.WithLimit(1))
	for it.Next() {
		keys = append(keys, it.Item().Key)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"k1"}, keys)

	it = client.Scan(ctx, "table_that_does_not_exist")
	assert.False(t, it.Next())
	assert.True(t, store.IsKind(it.Err(), store.KindNotFound))
}

func TestLargeValues(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	large := strings.Repeat("0123456789", 100)
	require.NoError(t, client.InsertOne(ctx, name, "big", "cf1", "blob", large))

	rows, err := client.QueryByRowKey(ctx, name, "big")
	require.NoError(t, err)
	assert.Equal(t, large, rows[0]["cf1"]["blob"])
}

func TestQueryByBinaryAndLargeValues(t *testing.T, client *store.Client) {
	ctx := context.Background()
	name := newTable(t, client)

	large := strings.Repeat("x", 300)
	values := map[string]string{
		"large":   large,
		"binary":  "\xff\xfe",
		"utf8":    "été",
		"control": "a\nb",
		"empty":   "",
	}
	for key, value := range values {
		require.NoError(t, client.InsertOne(ctx, name, key, "cf1", "value", value))
	}
	require.NoError(t, client.InsertOne(ctx, name, "other-large", "cf1", "value", strings.Repeat("y", 300)))

	for key, value := range values {
		rows, err := client.QueryByColumn(ctx, name, "cf1", "value", value)
		require.NoError(t, err, key)
		require.Len(t, rows, 1, key)
		assert.Equal(t, value, rows[0]["cf1"]["value"], key)
	}

	rows, err := client.QueryByColumns(ctx, name, "cf1", map[string]string{"value": large})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, large, rows[0]["cf1"]["value"])
}

func TestClosedClient(t *testing.T, client *store.Client) {
	require.NoError(t, client.Close())
	require.NoError(t, client.Close(), "closing twice is a no-op")

	_, err := client.QueryAll(context.Background(), "any")
	assert.True(t, errors.Is(err, store.ErrNotConnected))

	it := client.Scan(context.Background(), "any")
	assert.False(t, it.Next())
	assert.True(t, errors.Is(it.Err(), store.ErrNotConnected))
}
