package initialization

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/icondb/icondb/internal/version"
	"github.com/icondb/icondb/pkg/apierror"
	"github.com/icondb/icondb/pkg/clients/icondb"
	"github.com/icondb/icondb/pkg/domain"
	"github.com/icondb/icondb/pkg/notify"
	"github.com/icondb/icondb/pkg/request"
	"github.com/icondb/icondb/pkg/stores"

	"github.com/rs/zerolog/log"
)

type AppDependencies struct {
	Config   domain.CLIConfig
	Client   *icondb.Client
	Executor *request.Executor
	Console  *notify.Console
	Auth     *stores.AuthStore
	Profile  *stores.ProfileStore
	Search   *stores.SearchStore
}

type AppDependencyConfig struct {
	// APIBaseURL overrides the configured base URL when set.
	APIBaseURL string
	Out        io.Writer
	// Debug also mirrors notifications into the log.
	Debug bool
}

type AppContainer struct {
	configManager domain.ConfigManager
}

func NewAppContainer(options ...domain.ConfigManagerOption) (*AppContainer, error) {
	configManager, err := domain.NewConfigManager(options...)
	if err != nil {
		return nil, err
	}

	return &AppContainer{
		configManager: configManager,
	}, nil
}

func (c *AppContainer) GetConfigManager() domain.ConfigManager {
	return c.configManager
}

// BuildAppDependencies wires the API client, the request executor and the
// stores from the saved configuration. A saved session is restored into the
// client's cookie jar.
func (c *AppContainer) BuildAppDependencies(ctx context.Context, config AppDependencyConfig) (*AppDependencies, error) {
	cliConfig, err := c.configManager.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if config.APIBaseURL != "" {
		cliConfig.APIBaseURL = config.APIBaseURL
	}

	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	table, err := apierror.LoadTableFile(cliConfig.ActionMessagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load action messages: %w", err)
	}

	client, err := icondb.NewClient(
		icondb.WithBaseURL(cliConfig.APIBaseURL),
		icondb.WithTimeout(cliConfig.Timeout),
		icondb.WithUserAgent(version.UserAgent()),
		icondb.WithSessionCookieName(cliConfig.SessionCookieName),
		icondb.WithSessionCookie(cliConfig.SessionCookie),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	console := notify.NewConsole(out)
	sink := notify.Multi{console}
	if config.Debug {
		sink = append(sink, notify.NewLog(log.Logger))
	}

	executor := request.NewExecutor(sink,
		request.WithTable(table),
		request.WithLogger(log.Logger),
	)

	log.Debug().Str("api_url", cliConfig.APIBaseURL).Bool("signed_in", cliConfig.SignedIn()).Msg("App dependencies built")

	return &AppDependencies{
		Config:   cliConfig,
		Client:   client,
		Executor: executor,
		Console:  console,
		Auth:     stores.NewAuthStore(client),
		Profile:  stores.NewProfileStore(client),
		Search:   stores.NewSearchStore(client),
	}, nil
}
