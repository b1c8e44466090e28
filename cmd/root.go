package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "vkv",
		Short:         "vkv: keep small state values in a Vault KV path",
		Long:          "vkv stores and reads one opaque state string per name under a Vault KV base path. Profiles name the base path, the timeout and where the token is kept locally.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("profile", "", "Profile to use (default \"default\")")

	rootCmd.AddCommand(
		newVersionCmd(),
		newProfileCmd(app),
		newSetCmd(app),
		newGetCmd(app),
	)

	return rootCmd
}
