package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxxcyber/compwatch/internal/cli"
	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

var (
	authEmail    string
	authPassword string
	authUsername string

	profileReq models.BusinessProfileRequest
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := promptCredentials(cmd); err != nil {
			return err
		}
		req := models.RegisterRequest{Email: authEmail, Password: authPassword}
		if authUsername != "" {
			req.Username = &authUsername
		}
		resp, err := api.Register(cmd.Context(), req)
		if err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, "registered and logged in as "+resp.User.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := promptCredentials(cmd); err != nil {
			return err
		}
		resp, err := api.Login(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, "logged in as "+resp.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.Logout(); err != nil {
			return err
		}
		out.Notify(setup.LevelInfo, "logged out")
		return nil
	},
}

func promptCredentials(cmd *cobra.Command) error {
	p := cli.NewPrompter(cmd.InOrStdin(), out)
	var err error
	if authEmail == "" {
		if authEmail, err = p.Ask("Email", ""); err != nil {
			return err
		}
	}
	if authPassword == "" {
		authPassword = os.Getenv("COMPWATCH_PASSWORD")
	}
	if authPassword == "" {
		if authPassword, err = p.Ask("Password", ""); err != nil {
			return err
		}
	}
	if strings.TrimSpace(authEmail) == "" || authPassword == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the business profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the business profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := api.BusinessProfile(cmd.Context())
		if err != nil {
			if client.IsNotFound(err) {
				out.Notify(setup.LevelInfo, "no business profile yet, create one with: compctl profile set")
				return nil
			}
			return fail(err)
		}
		return render(profile, func() { out.Profile(profile) })
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the business profile",
	Long: `Create or update the business profile. Fields not given as flags are
prompted for, prefilled with the current values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		current := models.BusinessProfileRequest{}
		if existing, err := api.BusinessProfile(ctx); err == nil {
			current = models.BusinessProfileRequest{
				Name:          existing.Name,
				Industry:      existing.Industry,
				StreetAddress: existing.StreetAddress,
				City:          existing.City,
				State:         existing.State,
				ZipCode:       existing.ZipCode,
			}
		} else if !client.IsNotFound(err) {
			return fail(err)
		}

		flags := cmd.Flags()
		changed := false
		for name, field := range map[string][2]*string{
			"name":     {&current.Name, &profileReq.Name},
			"industry": {&current.Industry, &profileReq.Industry},
			"street":   {&current.StreetAddress, &profileReq.StreetAddress},
			"city":     {&current.City, &profileReq.City},
			"state":    {&current.State, &profileReq.State},
			"zip":      {&current.ZipCode, &profileReq.ZipCode},
		} {
			if flags.Changed(name) {
				*field[0] = *field[1]
				changed = true
			}
		}

		if !changed {
			var err error
			if current, err = cli.NewPrompter(cmd.InOrStdin(), out).Profile(current); err != nil {
				return err
			}
		}

		profile, err := api.UpdateBusinessProfile(ctx, &current)
		if err != nil {
			return fail(err)
		}
		out.Notify(setup.LevelSuccess, "business profile saved")
		return render(profile, func() { out.Profile(profile) })
	},
}

var trackingCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Show or change whether competitor tracking is enabled",
}

var trackingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracking flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := api.TrackingStatus(cmd.Context())
		if err != nil {
			return fail(err)
		}
		return render(models.TrackingStatus{Enabled: enabled}, func() {
			if enabled {
				out.Notify(setup.LevelInfo, "competitor tracking is enabled")
			} else {
				out.Notify(setup.LevelInfo, "competitor tracking is disabled")
			}
		})
	},
}

func setTrackingCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: use + " competitor tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.SetTrackingStatus(cmd.Context(), enabled); err != nil {
				return fail(err)
			}
			out.Notify(setup.LevelSuccess, "competitor tracking "+use+"d")
			return nil
		},
	}
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (or COMPWATCH_PASSWORD)")
	}
	registerCmd.Flags().StringVar(&authUsername, "username", "", "optional username")

	f := profileSetCmd.Flags()
	f.StringVar(&profileReq.Name, "name", "", "business name")
	f.StringVar(&profileReq.Industry, "industry", "", "industry, used as the competitor search type")
	f.StringVar(&profileReq.StreetAddress, "street", "", "street address")
	f.StringVar(&profileReq.City, "city", "", "city")
	f.StringVar(&profileReq.State, "state", "", "2-letter state code")
	f.StringVar(&profileReq.ZipCode, "zip", "", "zip code")
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	trackingCmd.AddCommand(trackingStatusCmd, setTrackingCmd("enable", true), setTrackingCmd("disable", false))
}
