package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/streamingfast/cfstore/cmd/cfstore/decoder"
	"github.com/streamingfast/cfstore/cmd/cfstore/formatter"
	"github.com/streamingfast/cfstore/store"
	"go.uber.org/zap"
)

func getClient(ctx context.Context) (*store.Client, error) {
	if dsn := viper.GetString("global-dsn"); dsn != "" {
		redacted, err := store.RemoveDSNOptions(dsn, "credentials")
		if err != nil {
			redacted = "<invalid>"
		}

		zlog.Info("setting up store", zap.String("dsn", redacted))
		client, err := store.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
		return client, nil
	}

	if path := viper.GetString("global-config"); path != "" {
		zlog.Info("setting up store", zap.String("config", path))
		client, err := store.NewFromProperties(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
		return client, nil
	}

	return nil, fmt.Errorf("one of --dsn or --config is required")
}

func closeClient(client *store.Client) {
	if err := client.Close(); err != nil {
		zlog.Warn("unable to close store", zap.Error(err))
	}
}

// rowKey turns a row key argument into the actual key according to the
// `<group>-global-key-format` flag.
func rowKey(group string, arg string) (string, error) {
	keyFormat, err := formatter.NewDecoder(viper.GetString(group + "-global-key-format"))
	if err != nil {
		return "", err
	}

	key, err := keyFormat.Decode(arg)
	if err != nil {
		return "", fmt.Errorf("row key %q: %w", arg, err)
	}

	return string(key), nil
}

func readOptions(limitKey string) []store.ReadOption {
	var opts []store.ReadOption
	if families := viper.GetStringSlice("read-global-family"); len(families) > 0 {
		opts = append(opts, store.WithFamilies(families...))
	}

	if limitKey != "" {
		opts = append(opts, store.WithLimit(viper.GetInt(limitKey)))
	}

	return opts
}

type rowPrinter struct {
	values  decoder.Decode
	asJSON  bool
	encoder *json.Encoder
	count   int
}

func newRowPrinter() (*rowPrinter, error) {
	values, err := decoder.NewDecoder(viper.GetString("read-global-decoder"))
	if err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}

	return &rowPrinter{
		values:  values,
		asJSON:  viper.GetBool("read-global-json"),
		encoder: json.NewEncoder(os.Stdout),
	}, nil
}

func (p *rowPrinter) decoded(columns store.RowMap) store.RowMap {
	out := make(store.RowMap, len(columns))
	for family, values := range columns {
		decoded := make(map[string]string, len(values))
		for column, value := range values {
			decoded[column] = p.values.Decode([]byte(value))
		}
		out[family] = decoded
	}
	return out
}

func (p *rowPrinter) Print(key string, columns store.RowMap) error {
	p.count++
	decoded := p.decoded(columns)

	if p.asJSON {
		return p.encoder.Encode(map[string]interface{}{"key": key, "columns": decoded})
	}

	if key != "" {
		fmt.Printf("Row\t->\t%s\n", key)
	} else {
		fmt.Printf("Row\t->\t#%d\n", p.count)
	}

	for _, family := range decoded.Families() {
		columns := make([]string, 0, len(decoded[family]))
		for column := range decoded[family] {
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			fmt.Printf("\t%s:%s\t->\t%s\n", family, column, decoded[family][column])
		}
	}
	return nil
}

func (p *rowPrinter) Summary() {
	if p.asJSON {
		return
	}

	fmt.Println("")
	fmt.Printf("Found %d rows\n", p.count)
}
