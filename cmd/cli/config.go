package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewConfigCommand(appContainer *initialization.AppContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, change or reset the CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, appContainer)
		},
	})

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change and save configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, appContainer)
		},
	}
	setCmd.Flags().String("url", "", "API base URL")
	setCmd.Flags().Duration("timeout", 0, "Request timeout")
	setCmd.Flags().String("messages", "", "YAML or JSON file overriding failure messages")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset configuration and start fresh",
		Long:  `Remove the saved configuration, including the saved session.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(appContainer)
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, appContainer *initialization.AppContainer) error {
	configManager := appContainer.GetConfigManager()

	config, err := configManager.GetConfig(cmd.Context())
	if err != nil {
		return err
	}

	session := "none"
	if config.SignedIn() {
		session = fmt.Sprintf("saved for %s", config.LastUser)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file:     %s\n", configManager.ConfigFilePath())
	fmt.Fprintf(out, "API URL:         %s\n", config.APIBaseURL)
	fmt.Fprintf(out, "Timeout:         %s\n", config.Timeout)
	fmt.Fprintf(out, "Messages file:   %s\n", valueOr(config.ActionMessagesFile, "built-in"))
	fmt.Fprintf(out, "Session cookie:  %s\n", config.SessionCookieName)
	fmt.Fprintf(out, "Session:         %s\n", session)
	fmt.Fprintf(out, "Mock address:    %s\n", config.MockAddress)

	return nil
}

func runConfigSet(cmd *cobra.Command, appContainer *initialization.AppContainer) error {
	ctx := cmd.Context()
	configManager := appContainer.GetConfigManager()

	config, err := configManager.GetConfig(ctx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		config.APIBaseURL, _ = flags.GetString("url")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		config.Timeout = timeout
	}
	if flags.Changed("messages") {
		config.ActionMessagesFile, _ = flags.GetString("messages")
	}

	if err := configManager.SaveConfig(ctx, config); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration saved to %s\n", configManager.ConfigFilePath())
	return nil
}

func runReset(appContainer *initialization.AppContainer) error {
	configManager := appContainer.GetConfigManager()

	if err := configManager.ResetConfig(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to reset configuration")
		return err
	}

	fmt.Println("✅ Configuration reset successfully")
	fmt.Printf("Run '%s login' to sign in again\n", os.Args[0])
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
