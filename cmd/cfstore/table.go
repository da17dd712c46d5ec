package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	. "github.com/streamingfast/cli"
	"go.uber.org/zap"
)

var TableCreateCmd = Command(tableCreateRunE,
	"create <table>",
	"Create a table, the table is left untouched when it already exists",
	ExactArgs(1),
	Flags(func(flags *pflag.FlagSet) {
		flags.StringSlice("family", nil, "column family to create, can be repeated (defaults to 'cf1')")
	}),
)

var TableDropCmd = Command(tableDropRunE,
	"drop <table>",
	"Drop a table and all its rows",
	ExactArgs(1),
)

var TableListCmd = Command(tableListRunE,
	"list",
	"List the tables of the instance",
	ExactArgs(0),
)

func tableCreateRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	table := args[0]
	families := viper.GetStringSlice("table-create-family")
	zlog.Info("creating table", zap.String("table", table), zap.Strings("families", families))

	if err := client.CreateTable(ctx, table, families...); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	fmt.Printf("Table %q created\n", table)
	return nil
}

func tableDropRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	table := args[0]
	zlog.Info("dropping table", zap.String("table", table))

	if err := client.DropTable(ctx, table); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	fmt.Printf("Table %q dropped\n", table)
	return nil
}

func tableListRunE(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer closeClient(client)

	tables, err := client.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	for _, table := range tables {
		fmt.Println(table)
	}
	return nil
}
