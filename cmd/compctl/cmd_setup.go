package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/cli"
	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

var skipSync bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Pick competitors to track, then sync their menus",
	Long: `Interactive competitor setup:
  1. load (or create) the business profile
  2. search for competitors near it
  3. choose which ones to track, edit them or add your own
  4. save the selection
  5. fetch every tracked competitor's menu`,
	RunE: runSetup,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the menu of every tracked competitor, one at a time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd)
	},
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompter := cli.NewPrompter(cmd.InOrStdin(), out)

	profile, err := api.BusinessProfile(ctx)
	if client.IsNotFound(err) {
		out.Notify(setup.LevelInfo, "let's set up your business profile first")
		req, perr := prompter.Profile(models.BusinessProfileRequest{})
		if perr != nil {
			return perr
		}
		profile, err = setup.EnsureProfile(ctx, api, &req)
	}
	if err != nil {
		return fail(err)
	}

	businessType, location := setup.SearchTerms(profile)
	out.Notify(setup.LevelInfo, fmt.Sprintf("searching for %s near %s", businessType, location))

	candidates, err := setup.SearchCandidates(ctx, api, businessType, location, out)
	if err != nil {
		return errReported{err}
	}

	sel := setup.NewSelection(candidates)
	picker := cli.NewPicker(sel, out.Styles())

	for {
		program := tea.NewProgram(picker,
			tea.WithContext(ctx),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		)
		if _, err := program.Run(); err != nil {
			return err
		}

		switch picker.Action() {
		case cli.ActionAbort, cli.ActionNone:
			out.Notify(setup.LevelInfo, "setup cancelled, nothing saved")
			return nil
		case cli.ActionEdit:
			current, err := sel.Edit(picker.Cursor())
			if err != nil {
				return err
			}
			edited, err := prompter.Candidate(current)
			if err != nil {
				return err
			}
			if _, err := sel.Submit(edited); err != nil {
				out.Notify(setup.LevelWarning, err.Error())
			}
			picker.Reset("updated " + edited.Name)
			continue
		case cli.ActionAdd:
			added, err := prompter.Candidate(models.CandidateCompetitor{})
			if err != nil {
				return err
			}
			if _, err := sel.Submit(added); err != nil {
				out.Notify(setup.LevelWarning, err.Error())
			}
			picker.Reset("added " + added.Name)
			continue
		}
		break
	}

	result, err := setup.Commit(ctx, api, sel.Items(), out)
	if err != nil {
		logger.Debug("commit", zap.Error(err))
		if result == nil {
			return errReported{err}
		}
	}

	if skipSync {
		listAll = false
		return reloadCompetitors(cmd)
	}
	return runSync(cmd)
}

func runSync(cmd *cobra.Command) error {
	runner := setup.NewSyncRunner(api, out, cfg.Sync.Timeout, cfg.Sync.Pause)

	reports, err := runner.Run(cmd.Context())
	if err != nil {
		return errReported{err}
	}

	ok := 0
	for _, r := range reports {
		if r.OK() {
			ok++
		}
		logger.Debug("menu sync", zap.Int("competitor_id", r.CompetitorID), zap.Error(r.Err))
	}
	if len(reports) > 0 {
		out.Notify(setup.LevelInfo, fmt.Sprintf("menu sync finished: %d of %d succeeded", ok, len(reports)))
	}

	listAll = false
	return reloadCompetitors(cmd)
}

func init() {
	setupCmd.Flags().BoolVar(&skipSync, "no-sync", false, "save the selection without fetching menus")
}
