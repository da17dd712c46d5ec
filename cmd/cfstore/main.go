package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/streamingfast/logging"

	. "github.com/streamingfast/cli"
)

// Commit sha1 value, injected via go build `ldflags` at build time
var commit = ""

// Version value, injected via go build `ldflags` at build time
var version = "dev"

// Date value, injected via go build `ldflags` at build time
var date = ""

var zlog, tracer = logging.RootLogger("cfstore", "github.com/streamingfast/cfstore/cmd/cfstore")

func init() {
	logging.InstantiateLoggers()
}

func main() {
	Run("cfstore", "Column family store client",
		ConfigureViper("CFSTORE"),
		ConfigureVersion(),

		Group("table", "Table administration commands",
			TableCreateCmd,
			TableDropCmd,
			TableListCmd,
		),

		Group("write", "Row write commands",
			WritePutCmd,
			WriteImportCmd,
			WriteDeleteCmd,

			PersistentFlags(
				func(flags *pflag.FlagSet) {
					flags.String("key-format", "ascii", "how row keys given as arguments are written. Supported formats: 'ascii', 'hex', 'base58'")
				},
			),
		),

		Group("read", "Row read commands",
			ReadGetCmd,
			ReadScanCmd,
			ReadPrefixCmd,
			ReadWhereCmd,

			PersistentFlags(
				func(flags *pflag.FlagSet) {
					flags.String("decoder", "ascii", "value decoding. Supported schemes: 'ascii', 'hex', 'base58', 'proto:///path/to/file.proto@<message_type>'")
					flags.String("key-format", "ascii", "how row keys given as arguments are written. Supported formats: 'ascii', 'hex', 'base58'")
					flags.StringSlice("family", nil, "only return the cells of those column families, all by default")
					flags.Bool("json", false, "print rows as JSON lines instead of a table")
				},
			),
		),

		PersistentFlags(
			func(flags *pflag.FlagSet) {
				flags.String("dsn", "", "URL to connect to the store (ex: 'bigtable://project.instance', 'bigtable://dev.dev?host=localhost&port=8086' for the emulator)")
				flags.String("config", "", "Path to a properties file with the connection settings, used when --dsn is not set")
			},
		),
		AfterAllHook(func(cmd *cobra.Command) {
			cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
				return nil
			}
		}),
	)
}

func ConfigureVersion() CommandOption {
	return CommandOptionFunc(func(cmd *cobra.Command) {
		cmd.Version = versionString(version)
	})
}

func versionString(version string) string {
	var labels []string
	if len(commit) >= 7 {
		labels = append(labels, fmt.Sprintf("Commit %s", commit[0:7]))
	}

	if date != "" {
		labels = append(labels, fmt.Sprintf("Built %s", date))
	}

	if len(labels) == 0 {
		return version
	}

	return fmt.Sprintf("%s (%s)", version, strings.Join(labels, ", "))
}
