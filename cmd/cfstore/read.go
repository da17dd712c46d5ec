package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/streamingfast/cfstore/store"
	. "github.com/streamingfast/cli"
	"go.uber.org/zap"
)

var ReadGetCmd = Command(readGetRunE,
	"get <table> <row-key>",
	"Retrieve a single row",
	ExactArgs(2),
)

var ReadScanCmd = Command(readScanRunE,
	"scan <table>",
	"Scan the rows of a table in key order",
	ExactArgs(1),
	Flags(func(flags *pflag.FlagSet) {
		flags.Int("limit", 100, "Number of rows to return, 0 is unbounded")
	}),
)

var ReadPrefixCmd = Command(readPrefixRunE,
	"prefix <table> <prefix>",
	"Retrieve the rows whose key starts with a prefix",
	ExactArgs(2),
	Flags(func(flags *pflag.FlagSet) {
		flags.Int("limit", 100, "Number of rows to return, 0 is unbounded")
		flags.Bool("regex", false, "treat the prefix argument as a regular expression matching the whole row key")
	}),
)

var ReadWhereCmd = Command(readWhereRunE,
	"where <table> <family> <column=value> [<column=value>...]",
	"Retrieve the rows whose columns all equal the given values",
	CommandOptionFunc(func(cmd *cobra.Command) {
		cmd.Args = cobra.MinimumNArgs(3)
	}),
	Flags(func(flags *pflag.FlagSet) {
		flags.Int("limit", 100, "Number of rows to return, 0 is unbounded")
	}),
)

func readGetRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	printer, err := newRowPrinter()
	if err != nil {
		return err
	}

	table := args[0]
	key, err := rowKey("read", args[1])
	if err != nil {
		return err
	}

	zlog.Info("store get row", zap.String("table", table), zap.String("key", args[1]))
	rows, err := client.QueryByRowKey(ctx, table, key, readOptions("")...)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("Row ->\t%s\tNOT FOUND\n", args[1])
			return nil
		}
		return fmt.Errorf("failed to get row: %w", err)
	}

	for _, row := range rows {
		if err := printer.Print(args[1], row); err != nil {
			return err
		}
	}
	return nil
}

func readScanRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	printer, err := newRowPrinter()
	if err != nil {
		return err
	}

	table := args[0]
	zlog.Info("store scan", zap.String("table", table), zap.Int("limit", viper.GetInt("read-scan-limit")))

	err = scanRows(ctx, client, table, readOptions("read-scan-limit"), func(row *store.Row) error {
		return printer.Print(row.Key, row.Columns)
	})
	if err != nil {
		return err
	}

	printer.Summary()
	return nil
}

// scanRows calls `fn` on every row of `table`, the scan is cancelled as soon
// as `fn` fails.
func scanRows(ctx context.Context, client store.Store, table string, opts []store.ReadOption, fn func(row *store.Row) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	itr := client.Scan(ctx, table, opts...)
	for itr.Next() {
		if err := fn(itr.Item()); err != nil {
			return err
		}
	}
	if err := itr.Err(); err != nil {
		return fmt.Errorf("iteration failed: %w", err)
	}

	return nil
}

func readPrefixRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	printer, err := newRowPrinter()
	if err != nil {
		return err
	}

	table := args[0]
	opts := readOptions("read-prefix-limit")

	var rows []store.RowMap
	if viper.GetBool("read-prefix-regex") {
		zlog.Info("store row key regex", zap.String("table", table), zap.String("pattern", args[1]))
		rows, err = client.RowKeyRegexQuery(ctx, table, args[1], opts...)
	} else {
		var prefix string
		if prefix, err = rowKey("read", args[1]); err != nil {
			return err
		}

		zlog.Info("store prefix", zap.String("table", table), zap.String("prefix", args[1]))
		rows, err = client.RowKeyPrefixQuery(ctx, table, prefix, opts...)
	}
	if err != nil {
		return fmt.Errorf("prefix query: %w", err)
	}

	return printRows(printer, rows)
}

func readWhereRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	printer, err := newRowPrinter()
	if err != nil {
		return err
	}

	table, family := args[0], args[1]
	params, err := parsePredicates(args[2:])
	if err != nil {
		return err
	}

	zlog.Info("store where", zap.String("table", table), zap.String("family", family), zap.Any("params", params))
	rows, err := client.QueryByColumns(ctx, table, family, params, readOptions("read-where-limit")...)
	if err != nil {
		return fmt.Errorf("where query: %w", err)
	}

	return printRows(printer, rows)
}

func parsePredicates(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		column, value, found := strings.Cut(arg, "=")
		if !found || column == "" {
			return nil, fmt.Errorf("invalid predicate %q, expected <column>=<value>", arg)
		}

		if existing, ok := out[column]; ok && existing != value {
			return nil, fmt.Errorf("column %q compared to both %q and %q", column, existing, value)
		}
		out[column] = value
	}
	return out, nil
}

func printRows(printer *rowPrinter, rows []store.RowMap) error {
	for _, row := range rows {
		if err := printer.Print("", row); err != nil {
			return err
		}
	}

	printer.Summary()
	return nil
}
