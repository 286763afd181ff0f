package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/foxxcyber/compwatch/internal/cli"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

var (
	searchType     string
	searchLocation string
	searchRadius   int
	searchSave     bool

	listAll       bool
	deleteYes     bool
	competitorReq models.ManualCompetitorRequest
	placeID       string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for nearby competitors without saving them",
	Long: `Search for nearby competitors. The business type and location default to
the business profile's industry and address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if searchType == "" || searchLocation == "" {
			profile, err := setup.EnsureProfile(ctx, api, nil)
			if err != nil {
				return fail(err)
			}
			bt, loc := setup.SearchTerms(profile)
			if searchType == "" {
				searchType = bt
			}
			if searchLocation == "" {
				searchLocation = loc
			}
		}

		var (
			candidates []models.CandidateCompetitor
			err        error
		)
		if searchSave || searchRadius > 0 {
			candidates, err = api.SearchCompetitors(ctx, models.CompetitorSearchRequest{
				BusinessType: searchType, Location: searchLocation, SaveToDB: searchSave, Radius: searchRadius,
			})
			if err != nil {
				return fail(err)
			}
		} else {
			candidates, err = setup.SearchCandidates(ctx, api, searchType, searchLocation, out)
			if err != nil {
				return errReported{err}
			}
		}

		return render(candidates, func() {
			if len(candidates) > 0 {
				out.Candidates(candidates)
			}
		})
	},
}

var competitorsCmd = &cobra.Command{
	Use:     "competitors",
	Aliases: []string{"comp"},
	Short:   "List and manage tracked competitors",
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reloadCompetitors(cmd)
	},
}

// reloadCompetitors fetches and prints the full list
func reloadCompetitors(cmd *cobra.Command) error {
	competitors, err := api.ListCompetitors(cmd.Context(), listAll)
	if err != nil {
		return fail(err)
	}
	return render(competitors, func() { out.Competitors(competitors) })
}

var competitorsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		comp, err := api.GetCompetitor(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		return render(comp, func() { out.Competitor(comp) })
	},
}

var competitorsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Start or stop tracking a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		comp, err := api.GetCompetitor(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}
		selected := !comp.IsSelected
		if _, err := api.UpdateCompetitor(cmd.Context(), id, &models.UpdateCompetitorRequest{IsSelected: &selected}); err != nil {
			return fail(err)
		}
		if selected {
			out.Notify(setup.LevelSuccess, "now tracking "+comp.Name)
		} else {
			out.Notify(setup.LevelSuccess, "stopped tracking "+comp.Name)
		}
		listAll = true
		return reloadCompetitors(cmd)
	},
}

var competitorsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a competitor's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		req := &models.UpdateCompetitorRequest{}
		flags := cmd.Flags()
		for name, field := range map[string]struct {
			dst **string
			src *string
		}{
			"name":     {&req.Name, &competitorReq.Name},
			"address":  {&req.Address, &competitorReq.Address},
			"category": {&req.Category, &competitorReq.Category},
			"website":  {&req.Website, &competitorReq.Website},
			"menu-url": {&req.MenuURL, &competitorReq.MenuURL},
		} {
			if flags.Changed(name) {
				*field.dst = field.src
			}
		}

		if *req == (models.UpdateCompetitorRequest{}) {
			comp, err := api.GetCompetitor(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			edited, err := cli.NewPrompter(cmd.InOrStdin(), out).Candidate(models.CandidateCompetitor{
				Name: comp.Name, Address: comp.Address, Category: comp.Category, Website: comp.Website, MenuURL: comp.MenuURL,
			})
			if err != nil {
				return err
			}
			req = &models.UpdateCompetitorRequest{
				Name: &edited.Name, Address: &edited.Address, Category: &edited.Category,
				Website: &edited.Website, MenuURL: &edited.MenuURL,
			}
		}

		comp, err := api.UpdateCompetitor(cmd.Context(), id, req)
		if err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, "updated "+comp.Name)
		listAll = true
		return reloadCompetitors(cmd)
	},
}

var competitorsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a competitor and all of its stored menus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		comp, err := api.GetCompetitor(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		if !deleteYes {
			ok, err := cli.NewPrompter(cmd.InOrStdin(), out).
				Confirm(fmt.Sprintf("Delete %s and every stored menu?", comp.Name))
			if err != nil {
				return err
			}
			if !ok {
				out.Notify(setup.LevelInfo, "nothing deleted")
				return nil
			}
		}

		if err := api.DeleteCompetitor(cmd.Context(), id); err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, "deleted "+comp.Name)
		listAll = true
		return reloadCompetitors(cmd)
	},
}

var competitorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a competitor by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := competitorReq
		if req.Name == "" {
			c, err := cli.NewPrompter(cmd.InOrStdin(), out).Candidate(models.CandidateCompetitor{})
			if err != nil {
				return err
			}
			req.Name, req.Address, req.Category, req.Website, req.MenuURL = c.Name, c.Address, c.Category, c.Website, c.MenuURL
		}
		if placeID != "" {
			req.GooglePlaceID = &placeID
		}
		req.IsSelected = true

		comp, err := api.AddCompetitor(cmd.Context(), &req)
		if err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, fmt.Sprintf("added %s (id %d)", comp.Name, comp.ID))
		return reloadCompetitors(cmd)
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid competitor id %q", s)
	}
	return id, nil
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "business type, e.g. \"Coffee Shop\"")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "free-text location")
	searchCmd.Flags().IntVar(&searchRadius, "radius", 0, "search radius in meters (max 50000)")
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "save hits as untracked competitors")

	competitorsListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include untracked competitors")
	competitorsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation")

	for _, c := range []*cobra.Command{competitorsEditCmd, competitorsAddCmd} {
		c.Flags().StringVar(&competitorReq.Name, "name", "", "competitor name")
		c.Flags().StringVar(&competitorReq.Address, "address", "", "street address")
		c.Flags().StringVar(&competitorReq.Category, "category", "", "category")
		c.Flags().StringVar(&competitorReq.Website, "website", "", "website url")
		c.Flags().StringVar(&competitorReq.MenuURL, "menu-url", "", "menu page or image url")
	}
	competitorsAddCmd.Flags().StringVar(&placeID, "place-id", "", "Google place id, fills in the website")

	competitorsCmd.AddCommand(competitorsListCmd, competitorsShowCmd, competitorsToggleCmd,
		competitorsEditCmd, competitorsDeleteCmd, competitorsAddCmd)
}
