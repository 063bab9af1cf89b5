package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand. Empty
// values leave the configuration untouched.
type globalFlags struct {
	config  string
	log     string
	db      string
	backend string
	items   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	var closeLog func()

	rootCmd := &cobra.Command{
		Use:           "lostfound",
		Short:         "Lost and found item matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := setupLogger(flags.log, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			closeLog = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLog != nil {
				closeLog()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "configuration file path (default lostfound.toml)")
	pf.StringVarP(&flags.log, "log", "l", "", "log file path (default: stdout/stderr only)")
	pf.StringVarP(&flags.db, "db", "d", "", "SQLite database path")
	pf.StringVar(&flags.backend, "backend", "", "item storage backend: json or sqlite")
	pf.StringVar(&flags.items, "items", "", "JSON item file path")

	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newInitCommand(flags))
	rootCmd.AddCommand(newItemsCommand(flags))
	rootCmd.AddCommand(newMatchesCommand(flags))
	rootCmd.AddCommand(newVerifyCommand(flags))
	rootCmd.AddCommand(newRejectCommand(flags))

	return rootCmd
}
