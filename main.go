package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redexp/tjs-postfix-lsp/providers"
	"github.com/redexp/tjs-postfix-lsp/state"
	"github.com/redexp/tjs-postfix-lsp/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var (
	webSocket  int
	debug      bool
	verbose    int
	logFile    string
	configPath string
	language   string
)

var rootCmd = &cobra.Command{
	Use:          "tjs-postfix-lsp",
	Short:        "Language server for JavaScript and TypeScript documents",
	SilenceUsage: true,
	// editors pass transport flags like --stdio
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	Args:               cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()

		if err != nil {
			return err
		}

		return providers.StartServer(providers.Options{
			WebSocket: webSocket,
			Debug:     debug,
			Config:    cfg,
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the syntax tree of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := dumpFile(args[0], language)

		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), res)

		return err
	},
}

func init() {
	var flags *pflag.FlagSet

	flags = rootCmd.PersistentFlags()
	flags.CountVarP(&verbose, "verbose", "v", "add verbosity (-vv for debug)")
	flags.StringVar(&logFile, "log-file", "", "log to file instead of stderr")
	flags.StringVar(&configPath, "config", "", "yaml configuration file")

	flags = rootCmd.Flags()
	flags.IntVar(&webSocket, "web-socket", 0, "start websocket server on port")
	flags.BoolVar(&debug, "debug", false, "log every JSON-RPC message")

	dumpCmd.Flags().StringVarP(&language, "language", "l", "", "languageId, guessed from the extension by default")

	rootCmd.AddCommand(dumpCmd)
}

func configureLog() {
	var path *string

	if logFile != "" {
		path = &logFile
	}

	commonlog.Configure(verbose, path)
}

func loadConfig() (providers.ClientConfiguration, error) {
	if configPath == "" {
		return providers.DefaultConfiguration(), nil
	}

	return providers.LoadConfigFile(configPath)
}

func dumpFile(path string, languageID string) (res string, err error) {
	text, err := os.ReadFile(path)

	if err != nil {
		return
	}

	abs, err := filepath.Abs(path)

	if err != nil {
		return
	}

	if languageID == "" {
		languageID = state.LanguageID(path)
	}

	registry := state.NewRegistry(state.WithPoolSize(1))
	defer registry.Shutdown()

	uri := utils.ToUri(abs)

	if err = registry.Open(uri, languageID, 0, string(text)); err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	root, err := snap.Root()

	if err != nil {
		return
	}

	return state.Dump(root), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
