package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/vault-kv-cli/internal/adapters/kv/vault"
	profilesrender "github.com/bnema/vault-kv-cli/internal/adapters/render/profiles"
	"github.com/bnema/vault-kv-cli/internal/application"
	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage Vault profiles",
	}

	cmd.AddCommand(
		newProfileAddCmd(app),
		newProfileListCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileAddCmd(app *app) *cobra.Command {
	var (
		name    string
		baseURL string
		token   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a profile",
		Long:  "Add or replace a profile. The token is read from --token or VKV_TOKEN and kept in the configured secret store, never in the profiles file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = app.config.GetString(tokenKey)
			}

			if err := app.service.AddProfile(cmd.Context(), application.AddProfileCommand{
				ID:      domain.ProfileID(name),
				BaseURL: baseURL,
				Token:   token,
				Timeout: timeout,
			}); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "profile %s saved\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	cmd.Flags().StringVar(&baseURL, "url", "", "Vault KV base URL, e.g. https://vault:8200/v1/secret")
	cmd.Flags().StringVar(&token, "token", "", "Vault token (defaults to $VKV_TOKEN)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (default 5s)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

type profileView struct {
	ID       string `json:"id"`
	BaseURL  string `json:"base_url"`
	TokenRef string `json:"token_ref,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
}

func newProfileListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.service.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}

			views := make([]profileView, 0, len(profiles))
			for _, profile := range profiles {
				view := profileView{
					ID:       string(profile.ID),
					BaseURL:  profile.BaseURL,
					TokenRef: profile.TokenRef,
				}
				if profile.Timeout > 0 {
					view.Timeout = profile.Timeout.String()
				}
				views = append(views, view)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			rendered, err := app.profileRenderer(profiles, profilesrender.RenderOptions{
				Selected:       app.profileID(),
				DefaultTimeout: vault.DefaultTimeout,
			})
			if err != nil {
				return fmt.Errorf("render profiles: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a profile and its stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.RemoveProfile(cmd.Context(), domain.ProfileID(name)); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "profile %s removed\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
