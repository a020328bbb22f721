package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/icondb/icondb/internal/initialization"
	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type mockServerOptions struct {
	address   string
	empty     bool
	accessLog bool
}

func NewMockServerCommand(appContainer *initialization.AppContainer) *cobra.Command {
	opts := &mockServerOptions{}

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory ICONDB API for local development",
		Long: `Run an in-memory ICONDB API that speaks the same routes and status codes as the real server.
Unless --empty is given it starts with a seeded account (testuser / password123).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMockServer(cmd, appContainer, opts)
		},
	}

	cmd.Flags().StringVar(&opts.address, "addr", "", "Listen address (defaults to mock_address)")
	cmd.Flags().BoolVar(&opts.empty, "empty", false, "Start without the seeded account")
	cmd.Flags().BoolVar(&opts.accessLog, "access-log", false, "Log every request")

	return cmd
}

func runMockServer(cmd *cobra.Command, appContainer *initialization.AppContainer, opts *mockServerOptions) error {
	if zerolog.GlobalLevel() > zerolog.InfoLevel {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := appContainer.GetConfigManager().GetConfig(ctx)
	if err != nil {
		return err
	}

	address := opts.address
	if address == "" {
		address = config.MockAddress
	}

	store := memstore.NewSeeded()
	if opts.empty {
		store = memstore.New()
	}

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		Store:             store,
		SessionCookieName: config.SessionCookieName,
		AccessLog:         opts.accessLog,
	})

	log.Info().Str("address", address).Bool("seeded", !opts.empty).Msg("Starting mock API")

	if err := app.Listen(address, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("Mock API stopped with error")
		return err
	}

	log.Info().Msg("Mock API stopped")
	return nil
}
