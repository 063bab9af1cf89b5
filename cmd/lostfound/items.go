package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/model"
)

func newItemsCommand(flags *globalFlags) *cobra.Command {
	var status, itemType string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List reported items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch status {
			case "", model.ItemStatusPending, model.ItemStatusActive, model.ItemStatusMatched:
			default:
				return fmt.Errorf("unknown status %q", status)
			}

			return withApp(cmd.Context(), flags, func(a *app) error {
				all, err := a.catalog.All(cmd.Context())
				if err != nil {
					return err
				}
				items := make([]model.Item, 0, len(all))
				for _, it := range all {
					if status != "" && it.Status != status {
						continue
					}
					if itemType != "" && it.Type != itemType {
						continue
					}
					items = append(items, it)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderItems(items, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only items with this status (pending, active, matched)")
	cmd.Flags().StringVarP(&itemType, "type", "t", "", "only lost or found items")
	return cmd
}

func newMatchesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "matches <item-id>",
		Short: "Show potential matches for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(a *app) error {
				matches, err := a.catalog.Matches(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(matches) == 0 {
					fmt.Fprintln(out, "No potential matches.")
					return nil
				}
				fmt.Fprintln(out, renderMatches(matches))
				return nil
			})
		},
	}
}

func newVerifyCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <item-id>",
		Short: "Verify an item and run automatic matching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(a *app) error {
				result, err := a.lifecycle.Verify(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.AutoMatchedWith != "" {
					fmt.Fprintf(out, "Item %s verified and matched with %s (score %.2f).\n",
						args[0], result.AutoMatchedWith, result.Score)
					return nil
				}
				fmt.Fprintf(out, "Item %s verified.\n", args[0])
				return nil
			})
		},
	}
}

func newRejectCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <item-id>",
		Short: "Reject and delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(a *app) error {
				if err := a.lifecycle.Reject(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %s rejected.\n", args[0])
				return nil
			})
		},
	}
}
