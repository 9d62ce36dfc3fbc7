package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/arango/internal/auth"
	"github.com/fivetwenty-io/arango/internal/client"
	"github.com/fivetwenty-io/arango/internal/constants"
	"github.com/fivetwenty-io/arango/pkg/arango"
	"github.com/fivetwenty-io/arango/pkg/arangoclient"
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-server configuration
	Servers       map[string]*ServerConfig `json:"servers,omitempty"        yaml:"servers,omitempty"`
	CurrentServer string                   `json:"current_server,omitempty" yaml:"current_server,omitempty"`

	// Global settings
	Output  string `json:"output"   yaml:"output"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

// ServerConfig represents configuration for a single ArangoDB server.
type ServerConfig struct {
	Endpoint       string     `json:"endpoint"                   yaml:"endpoint"`
	Database       string     `json:"database,omitempty"         yaml:"database,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	SkipTLSVerify  bool       `json:"skip_tls_verify"            yaml:"skip_tls_verify"`
}

// loadConfig builds the CLI configuration from viper.
func loadConfig() *Config {
	config := &Config{
		Servers:       make(map[string]*ServerConfig),
		CurrentServer: viper.GetString("current_server"),
		Output:        viper.GetString("output"),
		NoColor:       viper.GetBool("no_color"),
	}

	serversRaw := viper.GetStringMap("servers")
	for name, serverRaw := range serversRaw {
		serverMap, ok := serverRaw.(map[string]interface{})
		if !ok {
			continue
		}

		config.Servers[name] = parseServerConfig(serverMap)
	}

	return config
}

func parseServerConfig(serverMap map[string]interface{}) *ServerConfig {
	serverConfig := &ServerConfig{}

	if endpoint, ok := serverMap["endpoint"].(string); ok {
		serverConfig.Endpoint = endpoint
	}

	if database, ok := serverMap["database"].(string); ok {
		serverConfig.Database = database
	}

	if username, ok := serverMap["username"].(string); ok {
		serverConfig.Username = username
	}

	if token, ok := serverMap["token"].(string); ok {
		serverConfig.Token = token
	}

	if skipTLS, ok := serverMap["skip_tls_verify"].(bool); ok {
		serverConfig.SkipTLSVerify = skipTLS
	}

	if raw, ok := serverMap["token_expires_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			serverConfig.TokenExpiresAt = &parsed
		}
	}

	if raw, ok := serverMap["last_refreshed"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			serverConfig.LastRefreshed = &parsed
		}
	}

	return serverConfig
}

// saveConfigStruct writes the configuration back to the config file.
func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".arango")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep viper in sync so later commands in the same process see the change
	viper.Set("servers", config.Servers)
	viper.Set("current_server", config.CurrentServer)

	return nil
}

// getCurrentServerConfig returns the configuration for the currently targeted server.
func getCurrentServerConfig() (*ServerConfig, error) {
	config := loadConfig()

	if config.CurrentServer == "" {
		if len(config.Servers) == 0 {
			return nil, fmt.Errorf("%w, use 'arango login' to add one", ErrNoServersConfigured)
		}

		for name := range config.Servers {
			config.CurrentServer = name

			break
		}
	}

	serverConfig, exists := config.Servers[config.CurrentServer]
	if !exists {
		return nil, fmt.Errorf("%w in configuration: '%s'", ErrCurrentServerNotFound, config.CurrentServer)
	}

	return serverConfig, nil
}

// getServerConfigByFlag returns server config based on the --server flag or
// the current server.
func getServerConfigByFlag(serverFlag string) (*ServerConfig, error) {
	if serverFlag == "" {
		return getCurrentServerConfig()
	}

	config := loadConfig()

	if serverConfig, exists := config.Servers[serverFlag]; exists {
		return serverConfig, nil
	}

	resolved := normalizeEndpoint(serverFlag)
	for _, serverConfig := range config.Servers {
		if serverConfig.Endpoint == resolved {
			return serverConfig, nil
		}
	}

	// Not in the config: treat the flag as a direct endpoint
	if strings.Contains(serverFlag, "://") || strings.Contains(serverFlag, ":") {
		return &ServerConfig{Endpoint: resolved}, nil
	}

	return nil, fmt.Errorf("%w, use 'arango login' to add it: '%s'", ErrServerNotFound, serverFlag)
}

// ResolveServerEndpoint resolves a short name or returns the endpoint if it's
// already a URL.
func ResolveServerEndpoint(nameOrEndpoint string) (string, error) {
	if nameOrEndpoint == "" {
		return "", ErrServerNameRequired
	}

	config := loadConfig()

	if serverConfig, exists := config.Servers[nameOrEndpoint]; exists {
		return serverConfig.Endpoint, nil
	}

	return normalizeEndpoint(nameOrEndpoint), nil
}

// normalizeEndpoint trims a trailing slash and defaults the scheme.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	return endpoint
}

// extractDomainFromEndpoint extracts a short config key from an endpoint URL.
func extractDomainFromEndpoint(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return endpoint
	}

	return parsed.Hostname()
}

// resolveDatabase picks the database for a command: flag, then server config,
// then _system.
func resolveDatabase(cmd *cobra.Command, serverConfig *ServerConfig) string {
	if database, _ := cmd.Root().PersistentFlags().GetString("database"); database != "" {
		return database
	}

	if serverConfig.Database != "" {
		return serverConfig.Database
	}

	return constants.DefaultDatabase
}

// CreateClientWithServer creates an arango client using the specified server
// or the current one. Logged-in servers get a token manager that renews and
// persists JWTs transparently.
func CreateClientWithServer(cmd *cobra.Command) (arango.Client, string, error) {
	serverFlag, _ := cmd.Root().PersistentFlags().GetString("server")

	serverConfig, err := getServerConfigByFlag(serverFlag)
	if err != nil {
		return nil, "", err
	}

	if serverConfig.Endpoint == "" {
		return nil, "", fmt.Errorf("%w, use 'arango login' first", ErrEndpointRequired)
	}

	database := resolveDatabase(cmd, serverConfig)

	clientConfig := &arango.Config{
		Endpoint:      serverConfig.Endpoint,
		Database:      database,
		SkipTLSVerify: serverConfig.SkipTLSVerify,
	}

	if viper.GetBool("verbose") {
		clientConfig.Logger = NewCLILogger()
		clientConfig.Debug = true
	}

	// An explicit --token wins over the stored login
	if token := viper.GetString("token"); token != "" {
		clientConfig.Token = token

		arangoClient, err := arangoclient.New(cmd.Context(), clientConfig)
		if err != nil {
			return nil, "", err
		}

		return arangoClient, database, nil
	}

	if serverConfig.Username != "" {
		return createPersistingClient(cmd, clientConfig, serverConfig)
	}

	if serverConfig.Token != "" {
		clientConfig.Token = serverConfig.Token
	}

	arangoClient, err := arangoclient.New(cmd.Context(), clientConfig)
	if err != nil {
		return nil, "", err
	}

	return arangoClient, database, nil
}

// createPersistingClient wires a ConfigTokenManager so renewed JWTs survive
// across CLI invocations.
func createPersistingClient(cmd *cobra.Command, clientConfig *arango.Config, serverConfig *ServerConfig) (arango.Client, string, error) {
	serverKey := findServerKey(serverConfig)

	var initialExpiry time.Time
	if serverConfig.TokenExpiresAt != nil {
		initialExpiry = *serverConfig.TokenExpiresAt
	}

	tokenManager := auth.NewConfigTokenManager(
		&auth.JWTConfig{
			AuthURL:  serverConfig.Endpoint + constants.AuthPath,
			Username: serverConfig.Username,
			Password: viper.GetString("password"),
		},
		NewConfigPersister(),
		serverKey,
		serverConfig.Token,
		initialExpiry,
	)

	arangoClient, err := client.NewWithTokenManager(clientConfig, tokenManager)
	if err != nil {
		return nil, "", err
	}

	return arangoClient, clientConfig.Database, nil
}

// findServerKey returns the config map key for a server, falling back to the
// endpoint's host name.
func findServerKey(serverConfig *ServerConfig) string {
	config := loadConfig()

	for name, candidate := range config.Servers {
		if candidate.Endpoint == serverConfig.Endpoint {
			return name
		}
	}

	return extractDomainFromEndpoint(serverConfig.Endpoint)
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage arango CLI configuration including servers and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			rendered, err := renderStructured(config)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Setting", "Value")

			_ = table.Append("Current Server", config.CurrentServer)
			_ = table.Append("Output", config.Output)
			_ = table.Append("No Color", boolWord(config.NoColor))

			for name, server := range config.Servers {
				_ = table.Append("Server: "+name, server.Endpoint)

				if server.Database != "" {
					_ = table.Append("  Database", server.Database)
				}

				if server.Username != "" {
					_ = table.Append("  Username", server.Username)
				}

				if server.Token != "" {
					_ = table.Append("  Token", "***")
				}

				if server.TokenExpiresAt != nil {
					_ = table.Append("  Token Expires", server.TokenExpiresAt.Format(time.RFC3339))
				}
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

// configKeys lists the keys 'config set' accepts.
var configKeys = map[string]bool{
	"output":         true,
	"no_color":       true,
	"current_server": true,
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !configKeys[key] {
				return fmt.Errorf("%w: %q", ErrInvalidConfigKey, key)
			}

			viper.Set(key, value)

			err := saveConfigStruct(loadConfig())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !configKeys[key] {
				return fmt.Errorf("%w: %q", ErrInvalidConfigKey, key)
			}

			viper.Set(key, "")

			err := saveConfigStruct(loadConfig())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all configuration",
		Long:  "Remove all servers and settings from the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = os.Stdout.WriteString("This removes all stored servers and tokens. Continue? (y/N): ")

				var response string

				_, _ = fmt.Scanln(&response)

				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			err := saveConfigStruct(&Config{Servers: make(map[string]*ServerConfig)})
			if err != nil {
				return err
			}

			_, _ = os.Stdout.WriteString("Configuration cleared\n")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
