package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/vault-kv-cli/internal/application"
	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME [VALUE]",
		Short: "Store the state of NAME",
		Long:  "Store the state of NAME. Without VALUE the state is read from stdin, minus one trailing newline.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read state from stdin: %w", err)
				}
				value = strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
			}

			profile := app.profileID()
			app.logger.Debug("setting state", zap.String("profile", string(profile)), zap.String("name", name))

			return runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Writing "+name+"...", func(ctx context.Context) error {
				return app.service.SetState(ctx, application.SetStateCommand{
					Profile: profile,
					Name:    name,
					Value:   value,
				})
			})
		},
	}
}

func newGetCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the state of NAME",
		Long:  "Print the state of NAME. A missing entry prints nothing on stdout and still exits 0.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result domain.StateResult
			err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Reading "+args[0]+"...", func(ctx context.Context) error {
				var err error
				result, err = app.service.GetState(ctx, application.GetStateQuery{
					Profile: app.profileID(),
					Name:    args[0],
				})
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			if !result.Found {
				_, err := fmt.Fprintf(cmd.ErrOrStderr(), "%s: not found\n", result.Name)
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.State)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")

	return cmd
}
