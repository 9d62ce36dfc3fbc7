package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// Common string constants used throughout the commands package.
const (
	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// JSON formatting.
	defaultJSONIndent = 2

	// Common values.
	Yes          = "yes"
	No           = "no"
	NotAvailable = "N/A"
)

// Common static errors used throughout the commands package.
var (
	ErrEndpointRequired         = errors.New("server endpoint is required")
	ErrServerNotFound           = errors.New("server not found")
	ErrNoServersConfigured      = errors.New("no servers configured")
	ErrCurrentServerNotFound    = errors.New("current server not found")
	ErrServerNameRequired       = errors.New("server name or endpoint is required")
	ErrDatabaseNameRequired     = errors.New("database name is required")
	ErrDatabaseNotFound         = errors.New("database not found")
	ErrCollectionNameRequired   = errors.New("collection name is required")
	ErrDocumentHandleRequired   = errors.New("document handle is required (collection/key)")
	ErrDocumentBodyRequired     = errors.New("document body is required (--data or --file)")
	ErrQueryRequired            = errors.New("query string is required")
	ErrJobIDRequired            = errors.New("job ID is required")
	ErrInvalidBindVarFormat     = errors.New("invalid bind variable format, expected name=value")
	ErrInvalidProfileLevel      = errors.New("profile level must be 1 or 2")
	ErrInvalidConfigKey         = errors.New("unknown configuration key")
	ErrNotLoggedIn              = errors.New("not logged in, use 'arango login' first")
	ErrInvalidEdgeDefinition    = errors.New("invalid edge definition, expected edge:from1,from2:to1,to2")
	ErrInvalidDocumentJSON      = errors.New("document body is not valid JSON")
	ErrUnsupportedDeleteTarget  = errors.New("delete target must be a job ID, 'all', or 'expired'")
	ErrIndexFieldsRequired      = errors.New("at least one field is required (--fields)")
	ErrGraphNameRequired        = errors.New("graph name is required")
	ErrIndexHandleRequired      = errors.New("index handle is required (collection/id)")
)

// StandardJSONRenderer writes the value to stdout as indented JSON.
func StandardJSONRenderer(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes the value to stdout as YAML.
func StandardYAMLRenderer(value interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return encoder.Close()
}

// renderStructured writes the value as JSON or YAML and reports whether the
// requested format was one of the two. Table rendering stays with the caller.
func renderStructured(value interface{}) (bool, error) {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return true, StandardJSONRenderer(value)
	case OutputFormatYAML:
		return true, StandardYAMLRenderer(value)
	default:
		return false, nil
	}
}

// boolWord renders a boolean the way the tables expect.
func boolWord(value bool) string {
	if value {
		return Yes
	}

	return No
}

// hclogAdapter bridges an hclog.Logger to the arango.Logger interface.
type hclogAdapter struct {
	logger hclog.Logger
}

// NewCLILogger builds the structured logger handed to the client when
// --verbose is set.
func NewCLILogger() arango.Logger {
	return &hclogAdapter{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   "arango",
			Level:  hclog.Debug,
			Output: os.Stderr,
			Color:  colorOption(),
		}),
	}
}

func colorOption() hclog.ColorOption {
	if viper.GetBool("no_color") {
		return hclog.ColorOff
	}

	return hclog.AutoColor
}

func (l *hclogAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, flattenFields(fields)...)
}

func (l *hclogAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, flattenFields(fields)...)
}

func (l *hclogAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, flattenFields(fields)...)
}

func (l *hclogAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, flattenFields(fields)...)
}

func flattenFields(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}

	return args
}

// ParseBindVars turns repeated --bind name=value flags into a bind variable
// map. Values that parse as JSON are passed through typed; everything else is
// sent as a string.
func ParseBindVars(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	bindVars := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		name, rawValue, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBindVarFormat, pair)
		}

		var value interface{}

		err := json.Unmarshal([]byte(rawValue), &value)
		if err != nil {
			value = rawValue
		}

		bindVars[name] = value
	}

	return bindVars, nil
}
