// netsec trains and serves the phishing website classifier.
//
// Usage:
//
//	netsec train [--file=<csv>]
//	netsec serve [--addr=<host:port>] [--file=<csv>]
//	netsec predict --file=<csv> [--output=<csv>]
//	netsec push --file=<csv>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askiada/netsec-pipeline/internal/config"
	"github.com/askiada/netsec-pipeline/internal/logging"
)

var rootFlags struct {
	envFile string
}

// cfg is loaded before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "netsec",
	Short:         "Phishing website detection: training pipeline and prediction service",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(rootFlags.envFile)
		if err != nil {
			return err
		}
		logging.Init(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(pushCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
