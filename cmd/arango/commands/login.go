package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/arango/internal/client"
	"github.com/fivetwenty-io/arango/pkg/arango"
	"github.com/fivetwenty-io/arango/pkg/arangoclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		endpoint string
		database string
		username string
		password string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to an ArangoDB server",
		Long:  "Authenticate with an ArangoDB server and store the credentials for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			originalInput := endpoint
			if endpoint == "" {
				endpoint = viper.GetString("server")
				originalInput = endpoint
			}

			if endpoint == "" {
				config := loadConfig()
				if config.CurrentServer != "" {
					if _, exists := config.Servers[config.CurrentServer]; exists {
						endpoint = config.CurrentServer
						originalInput = config.CurrentServer
					}
				}
			}

			if endpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				_, _ = os.Stdout.WriteString("Server endpoint (or short name): ")
				endpoint, _ = reader.ReadString('\n')
				endpoint = strings.TrimSpace(endpoint)
				originalInput = endpoint
			}

			if endpoint == "" {
				return ErrEndpointRequired
			}

			resolvedEndpoint, err := ResolveServerEndpoint(endpoint)
			if err != nil {
				return err
			}

			skipTLS := viper.GetBool("skip-ssl-validation")

			config := &arango.Config{
				Endpoint:      resolvedEndpoint,
				Database:      database,
				SkipTLSVerify: skipTLS,
			}

			if token != "" {
				config.Token = token
			} else {
				if username == "" {
					reader := bufio.NewReader(os.Stdin)
					_, _ = os.Stdout.WriteString("Username: ")
					username, _ = reader.ReadString('\n')
					username = strings.TrimSpace(username)
				}

				if password == "" {
					_, _ = os.Stdout.WriteString("Password: ")

					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}

					password = string(bytePassword)

					_, _ = os.Stdout.WriteString("\n")
				}

				config.Username = username
				config.Password = password
			}

			arangoClient, err := arangoclient.New(cmd.Context(), config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Verify the credentials against the server
			version, err := arangoClient.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}

			// Issue a JWT now so subsequent commands can reuse it
			storedToken := token
			if storedToken == "" {
				if concrete, ok := arangoClient.(*client.Client); ok {
					if tokenManager := concrete.GetTokenManager(); tokenManager != nil {
						issued, err := tokenManager.GetToken(cmd.Context())
						if err != nil {
							return fmt.Errorf("failed to obtain token: %w", err)
						}

						storedToken = issued
					}
				}
			}

			return persistLogin(loginRecord{
				originalInput: originalInput,
				endpoint:      config.Endpoint,
				database:      database,
				username:      username,
				token:         storedToken,
				skipTLS:       skipTLS,
				serverVersion: version.Version,
			})
		},
	}

	cmd.Flags().StringVarP(&endpoint, "server", "s", "", "server endpoint URL or short name")
	cmd.Flags().StringVarP(&database, "database", "d", "", "default database for this server")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted if not provided)")
	cmd.Flags().StringVarP(&token, "token", "t", "", "pre-issued JWT (skips username/password)")

	return cmd
}

type loginRecord struct {
	originalInput string
	endpoint      string
	database      string
	username      string
	token         string
	skipTLS       bool
	serverVersion string
}

func persistLogin(record loginRecord) error {
	config := loadConfig()

	if config.Servers == nil {
		config.Servers = make(map[string]*ServerConfig)
	}

	// Preserve a short name the user already uses for this server
	configKey := record.originalInput
	if _, exists := config.Servers[configKey]; !exists {
		configKey = extractDomainFromEndpoint(record.endpoint)
	}

	serverConfig, exists := config.Servers[configKey]
	if !exists {
		serverConfig = &ServerConfig{}
		config.Servers[configKey] = serverConfig
	}

	serverConfig.Endpoint = record.endpoint
	serverConfig.Username = record.username
	serverConfig.Token = record.token
	serverConfig.SkipTLSVerify = record.skipTLS

	if record.database != "" {
		serverConfig.Database = record.database
	}

	config.CurrentServer = configKey

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Logged in to %s (ArangoDB %s)\n", record.endpoint, record.serverVersion)

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout from an ArangoDB server",
		Long:  "Remove stored credentials for a server (the current one by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			serverKey := serverFlag
			if serverKey == "" {
				serverKey = config.CurrentServer
			}

			if serverKey == "" {
				return ErrNotLoggedIn
			}

			serverConfig, exists := config.Servers[serverKey]
			if !exists {
				return fmt.Errorf("%w: '%s'", ErrServerNotFound, serverKey)
			}

			serverConfig.Token = ""
			serverConfig.TokenExpiresAt = nil
			serverConfig.Username = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Logged out from %s\n", serverConfig.Endpoint)

			return nil
		},
	}

	cmd.Flags().StringVarP(&serverFlag, "server", "s", "", "server short name to log out from")

	return cmd
}
