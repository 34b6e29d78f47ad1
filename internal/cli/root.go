package cli

import (
	"github.com/spf13/cobra"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/pkg/bender"
)

// Global configuration variables
var (
	configFile   string
	benderConfig *BenderConfig
	databaseURL  string
	debug        bool
	verbose      bool
	silent       bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bender",
		Short: "Bender - comment REST service",
		Long: `Bender serves a REST API for creating, reading, updating and deleting
comments stored in PostgreSQL.

Configuration is read from --config, $BENDER_CONFIG or bender.yaml in the
working directory. --url overrides the configured database.`,
		Version:       bender.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			path := configFile
			if path == "" {
				path = GetConfigPath()
			}

			var err error
			benderConfig, err = LoadBenderConfig(path)
			if err != nil {
				cmd.PrintErrf("Warning: Failed to load config file: %v\n", err)
			}
			if benderConfig == nil {
				benderConfig = DefaultConfig()
			}

			if databaseURL != "" {
				benderConfig.Database.URL = databaseURL
			} else if benderConfig.Database.URL != "" {
				databaseURL = benderConfig.Database.URL
			}

			logger.Configure(logger.Options{
				Level:   benderConfig.Log.Level,
				Format:  benderConfig.Log.Format,
				Debug:   debug,
				Verbose: verbose,
				Silent:  silent,
				Output:  cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: bender.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "only log errors")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newPingCommand())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
