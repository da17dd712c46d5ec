package store_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/bigtable/bttest"
	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"github.com/streamingfast/cfstore/store"
	"github.com/streamingfast/cfstore/store/storetest"
	"github.com/streamingfast/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.TestingOverride()
}

func TestAll(t *testing.T) {
	storetest.TestAll(t, "bigtable", newTestFactory(t, ""))
}

func TestAllUncompressed(t *testing.T) {
	storetest.TestAll(t, "bigtable-none", newTestFactory(t, "none"))
}

func newTestServer(t *testing.T) (host, port string, cleanup func()) {
	t.Helper()

	srv, err := bttest.NewServer("localhost:0")
	require.NoError(t, err)

	host, port, err = net.SplitHostPort(srv.Addr)
	require.NoError(t, err)

	return host, port, srv.Close
}

func newTestFactory(t *testing.T, compression string) storetest.DriverFactory {
	return func() (*store.Client, storetest.DriverCleanupFunc) {
		host, port, stopServer := newTestServer(t)

		config := basebigt.NewConfig()
		config.Host = host
		config.Port = port
		config.Compression = compression

		client, err := store.Open(context.Background(), config)
		require.NoError(t, err)

		return client, func() {
			assert.NoError(t, client.Close())
			stopServer()
		}
	}
}

func TestNew(t *testing.T) {
	host, port, stopServer := newTestServer(t)
	defer stopServer()

	client, err := store.New(context.Background(), "bigtable://dev.dev?host="+host+"&port="+port)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "dev", client.Config().Project)
	require.NoError(t, client.CreateTable(context.Background(), "users"))
}

func TestNewFromProperties(t *testing.T) {
	host, port, stopServer := newTestServer(t)
	defer stopServer()

	path := filepath.Join(t.TempDir(), "connection.properties")
	require.NoError(t, os.WriteFile(path, []byte("zookeeperHost="+host+"\nzookeeperPort="+port+"\n"), 0644))

	client, err := store.NewFromProperties(context.Background(), path)
	require.NoError(t, err)
	defer client.Close()

	tables, err := client.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestOpenInvalid(t *testing.T) {
	tests := []struct {
		name   string
		dsn    string
		config *basebigt.Config
	}{
		{"bad dsn scheme", "kv://dev.dev", nil},
		{"bad dsn host", "bigtable://dev?host=localhost&port=1", nil},
		{"bad compression", "bigtable://dev.dev?host=localhost&port=1&compression=snappy", nil},
		{"nil config", "", nil},
		{"host without port", "", &basebigt.Config{Host: "localhost", MaxVersions: 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var err error
			if test.dsn != "" {
				_, err = store.New(context.Background(), test.dsn)
			} else {
				_, err = store.Open(context.Background(), test.config)
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, store.ErrInvalidArgument))
			assert.True(t, store.IsKind(err, store.KindInvalidArgument))
		})
	}
}

func TestInsertBatchFromFile(t *testing.T) {
	client, cleanup := newTestFactory(t, "")()
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.CreateTable(ctx, "imports", "data"))

	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"1","name":"a"}
{"id":"2","name":"b"}
`), 0644))

	keys, err := client.InsertBatchFromFile(ctx, "imports", "data", path, "imp-")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	rows, err := client.RowKeyPrefixQuery(ctx, "imports", "imp-")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = client.InsertBatchFromFile(ctx, "imports", "data", filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindIO))
}

func TestInsertBatchCancelledReportsEveryRow(t *testing.T) {
	host, port, stopServer := newTestServer(t)
	defer stopServer()

	config := basebigt.NewConfig()
	config.Host = host
	config.Port = port
	config.MaxRowsBeforeFlush = 1

	client, err := store.Open(context.Background(), config)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.CreateTable(context.Background(), "events"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []map[string]interface{}{{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}}
	keys, err := client.InsertBatch(ctx, "events", store.DefaultFamily, rows, "evt-")
	require.Error(t, err)
	require.Len(t, keys, 4)

	failed := basebigt.FailedKeys(err)
	assert.ElementsMatch(t, keys, failed)

	stored, err := client.QueryAll(context.Background(), "events")
	require.NoError(t, err)
	assert.Len(t, stored, len(keys)-len(failed))
}

func TestNewFromPropertiesErrors(t *testing.T) {
	_, err := store.NewFromProperties(context.Background(), filepath.Join(t.TempDir(), "missing.properties"))
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindIO))

	path := filepath.Join(t.TempDir(), "connection.properties")
	require.NoError(t, os.WriteFile(path, []byte("zookeeperHost=localhost\n"), 0644))

	_, err = store.NewFromProperties(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
	assert.True(t, store.IsKind(err, store.KindInvalidArgument))
}
