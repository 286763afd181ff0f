package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/setup"
)

var (
	menuForce   bool
	historySize int
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Fetch and view competitor menus",
}

var menuFetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Scrape a competitor's menu now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sync.Timeout)
		defer cancel()

		batch, err := api.FetchMenu(ctx, id, menuForce)
		if err != nil {
			return fail(err)
		}
		return render(batch, func() { out.Menu(batch) })
	},
}

var menuShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the latest stored menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		batch, err := api.StoredMenu(cmd.Context(), id)
		if err != nil {
			if client.IsNotFound(err) {
				out.Notify(setup.LevelInfo, "no stored menu, fetch one with: compctl menu fetch "+args[0])
				return nil
			}
			return fail(err)
		}
		return render(batch, func() { out.Menu(batch) })
	},
}

var menuHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "List stored menu batches, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		batches, err := api.MenuBatches(cmd.Context(), id, historySize)
		if err != nil {
			return fail(err)
		}
		return render(batches, func() { out.Batches(batches) })
	},
}

func init() {
	menuFetchCmd.Flags().BoolVarP(&menuForce, "force", "f", false, "scrape even when a recent batch is cached")
	menuHistoryCmd.Flags().IntVar(&historySize, "limit", 20, "number of batches to show")

	menuCmd.AddCommand(menuFetchCmd, menuShowCmd, menuHistoryCmd)
}
