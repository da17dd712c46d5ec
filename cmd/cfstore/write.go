package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	basebigt "github.com/streamingfast/cfstore/base/bigt"
	. "github.com/streamingfast/cli"
	"go.uber.org/zap"
)

var WritePutCmd = Command(writePutRunE,
	"put <table> <row-key> <family> <column> <value>",
	"Write a single cell",
	ExactArgs(5),
)

var WriteImportCmd = Command(writeImportRunE,
	"import <table> <file>",
	"Write every JSON object of a JSON lines file as a new row",
	ExactArgs(2),
	Flags(func(flags *pflag.FlagSet) {
		flags.String("family", "cf1", "column family receiving the object fields")
		flags.String("prefix", "", "prefix of the generated row keys")
	}),
)

var WriteDeleteCmd = Command(writeDeleteRunE,
	"delete <table> <row-key> [<row-key>...]",
	"Delete whole rows",
	CommandOptionFunc(func(cmd *cobra.Command) {
		cmd.Args = cobra.MinimumNArgs(2)
	}),
	Flags(func(flags *pflag.FlagSet) {
		flags.Bool("prefix", false, "treat the single row key argument as a prefix and drop every matching row")
	}),
)

func writePutRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	table, family, column, value := args[0], args[2], args[3], args[4]
	key, err := rowKey("write", args[1])
	if err != nil {
		return err
	}

	if err := client.InsertOne(ctx, table, key, family, column, value); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	fmt.Printf("Wrote %s:%s of row %q\n", family, column, args[1])
	return nil
}

func writeImportRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	table, path := args[0], args[1]
	family := viper.GetString("write-import-family")
	prefix := viper.GetString("write-import-prefix")
	zlog.Info("importing rows", zap.String("table", table), zap.String("path", path), zap.String("family", family), zap.String("prefix", prefix))

	keys, err := client.InsertBatchFromFile(ctx, table, family, path, prefix)
	if err != nil {
		if failed := basebigt.FailedKeys(err); len(failed) > 0 {
			fmt.Printf("%d rows out of %d could not be written\n", len(failed), len(keys))
		}
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Imported %d rows\n", len(keys))
	return nil
}

func writeDeleteRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	table := args[0]
	keys := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		key, err := rowKey("write", arg)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}

	if viper.GetBool("write-delete-prefix") {
		if len(keys) != 1 {
			return fmt.Errorf("exactly one prefix is expected with --prefix, got %d", len(keys))
		}

		if err := client.DeleteRowsByPrefix(ctx, table, keys[0]); err != nil {
			return fmt.Errorf("delete by prefix: %w", err)
		}

		fmt.Printf("Dropped rows with prefix %q\n", args[1])
		return nil
	}

	if err := client.DeleteRows(ctx, table, keys); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	fmt.Printf("Deleted %d rows\n", len(keys))
	return nil
}
