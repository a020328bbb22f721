package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/icondb/icondb/internal/initialization"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "icondb",
		Short: "ICONDB command line client",
		Long: `icondb talks to an ICONDB server: sign in, upload and browse icons, tag and like posts,
follow other users. Failed requests are reported with the same messages the web client shows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			configureLogging(debug)
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "Override API URL")

	appContainer, err := initialization.NewAppContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app container: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(NewLoginCommand(appContainer))
	rootCmd.AddCommand(NewSignupCommand(appContainer))
	rootCmd.AddCommand(NewLogoutCommand(appContainer))
	rootCmd.AddCommand(NewWhoamiCommand(appContainer))
	rootCmd.AddCommand(NewListCommand(appContainer))
	rootCmd.AddCommand(NewShowCommand(appContainer))
	rootCmd.AddCommand(NewUploadCommand(appContainer))
	rootCmd.AddCommand(NewUpdateCommand(appContainer))
	rootCmd.AddCommand(NewDeleteCommand(appContainer))
	rootCmd.AddCommand(NewDownloadCommand(appContainer))
	rootCmd.AddCommand(NewTagCommand(appContainer))
	rootCmd.AddCommand(NewLikeCommand(appContainer))
	rootCmd.AddCommand(NewSearchCommand(appContainer))
	rootCmd.AddCommand(NewProfileCommand(appContainer))
	rootCmd.AddCommand(NewNicknameCommand(appContainer))
	rootCmd.AddCommand(NewFollowCommand(appContainer))
	rootCmd.AddCommand(NewUnfollowCommand(appContainer))
	rootCmd.AddCommand(NewConfigCommand(appContainer))
	rootCmd.AddCommand(NewMockServerCommand(appContainer))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// configureLogging keeps client commands quiet unless --debug is set; their
// failures are already shown as notifications.
func configureLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.FatalLevel)
}
