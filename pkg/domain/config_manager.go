package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const configFileName = "config.yaml"

type CLIConfig struct {
	APIBaseURL         string        `mapstructure:"api_base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	ActionMessagesFile string        `mapstructure:"action_messages_file"`
	SessionCookie      string        `mapstructure:"session_cookie"`
	SessionCookieName  string        `mapstructure:"session_cookie_name"`
	MockAddress        string        `mapstructure:"mock_address"`
	LastUser           string        `mapstructure:"last_user"`
}

// SignedIn reports whether a session was saved by an earlier login.
func (c CLIConfig) SignedIn() bool {
	return c.SessionCookie != ""
}

type ConfigManager interface {
	GetConfig(ctx context.Context) (CLIConfig, error)
	SaveConfig(ctx context.Context, config CLIConfig) error
	SaveSession(ctx context.Context, cookie, user string) error
	ResetConfig(ctx context.Context) error
	ConfigFilePath() string
}

type configManager struct {
	viper *viper.Viper
	dir   string
}

// ConfigManagerOption configures NewConfigManager
type ConfigManagerOption func(*configManager)

// WithConfigDir stores the config file in dir instead of $HOME/.icondb.
func WithConfigDir(dir string) ConfigManagerOption {
	return func(m *configManager) {
		m.dir = dir
	}
}

func NewConfigManager(options ...ConfigManagerOption) (ConfigManager, error) {
	m := &configManager{viper: viper.New()}

	for _, option := range options {
		option(m)
	}

	if m.dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		m.dir = filepath.Join(homeDir, ".icondb")
	}

	v := m.viper
	m.setup(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	return m, nil
}

func (m *configManager) setup(v *viper.Viper) {
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("ICONDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"api_base_url":         "ICONDB_API_URL",
		"timeout":              "ICONDB_TIMEOUT",
		"action_messages_file": "ICONDB_ACTION_MESSAGES",
		"session_cookie":       "ICONDB_SESSION_COOKIE",
		"session_cookie_name":  "ICONDB_SESSION_COOKIE_NAME",
		"mock_address":         "ICONDB_MOCK_ADDRESS",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(m.dir)
}

func (m *configManager) GetConfig(ctx context.Context) (CLIConfig, error) {
	var config CLIConfig
	if err := m.viper.Unmarshal(&config); err != nil {
		return CLIConfig{}, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

func (m *configManager) SaveConfig(ctx context.Context, config CLIConfig) error {
	m.viper.Set("api_base_url", config.APIBaseURL)
	m.viper.Set("timeout", config.Timeout.String())
	m.viper.Set("action_messages_file", config.ActionMessagesFile)
	m.viper.Set("session_cookie", config.SessionCookie)
	m.viper.Set("session_cookie_name", config.SessionCookieName)
	m.viper.Set("mock_address", config.MockAddress)
	m.viper.Set("last_user", config.LastUser)

	return m.write()
}

func (m *configManager) SaveSession(ctx context.Context, cookie, user string) error {
	m.viper.Set("session_cookie", cookie)
	m.viper.Set("last_user", user)

	return m.write()
}

func (m *configManager) ResetConfig(ctx context.Context) error {
	if err := os.Remove(m.ConfigFilePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	// Values read from the removed file live in the viper instance, so
	// start over from defaults and environment.
	v := viper.New()
	m.setup(v)
	m.viper = v

	return nil
}

func (m *configManager) ConfigFilePath() string {
	return filepath.Join(m.dir, configFileName)
}

func (m *configManager) write() error {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.viper.WriteConfigAs(m.ConfigFilePath()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:5000")
	v.SetDefault("timeout", "10s")
	v.SetDefault("action_messages_file", "")
	v.SetDefault("session_cookie", "")
	v.SetDefault("session_cookie_name", "session_cookie_name")
	v.SetDefault("mock_address", ":5000")
	v.SetDefault("last_user", "")
}
