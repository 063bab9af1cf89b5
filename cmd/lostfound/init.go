package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create storage and the first admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(a *app) error {
				if err := os.MkdirAll(a.cfg.Storage.UploadsDir, 0o755); err != nil {
					return fmt.Errorf("creating uploads directory: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database ready: %s\n", a.cfg.Storage.DBPath)
				if a.cfg.Storage.Backend == "json" {
					fmt.Fprintf(out, "Item file ready: %s\n", a.cfg.Storage.ItemsFile)
				}
				fmt.Fprintf(out, "Uploads directory: %s\n", a.cfg.Storage.UploadsDir)
				fmt.Fprintln(out)

				created, err := ensureAdmin(cmd.Context(), a.db, a.cfg.Auth.AdminEmail, out)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintln(out, "An admin account already exists.")
				}
				return nil
			})
		},
	}
}
