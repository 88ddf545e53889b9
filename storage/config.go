package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ProductionURL = "https://api.exchange.coinbase.com"
	SandboxURL    = "https://api-public.sandbox.exchange.coinbase.com"
)

// Environment holds the credentials for one venue environment. The telegram
// and google sheet settings are optional: leaving them empty disables the
// corresponding side channel.
type Environment struct {
	APIKey     string `yaml:"api_key"`
	SecretKey  string `yaml:"secret_key"`
	Passphrase string `yaml:"passphrase"`

	TelegramBotAPIToken string `yaml:"telegram_bot_api_token"`
	TelegramChatID      int64  `yaml:"telegram_chat_id"`

	GoogleSheetID     string `yaml:"google_sheet_id"`
	GoogleSheetSecret string `yaml:"google_sheet_client_secret"`
}

// Config is the settings file: one section per environment.
type Config struct {
	Production Environment `yaml:"production"`
	Sandbox    Environment `yaml:"sandbox"`
}

// LoadConfig reads and parses the settings file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &config, nil
}

// Credentials exposes the settings of the selected environment. Secrets set
// as environment variables override the settings file.
type Credentials struct {
	environment Environment
	name        string
	apiURL      string
}

func NewCredentials(config *Config, sandbox bool) *Credentials {
	credentials := Credentials{environment: config.Production, name: "production", apiURL: ProductionURL}
	if sandbox {
		credentials = Credentials{environment: config.Sandbox, name: "sandbox", apiURL: SandboxURL}
	}

	overrideFromEnv(&credentials.environment.APIKey, "DCA_API_KEY")
	overrideFromEnv(&credentials.environment.SecretKey, "DCA_SECRET_KEY")
	overrideFromEnv(&credentials.environment.Passphrase, "DCA_PASSPHRASE")
	overrideFromEnv(&credentials.environment.TelegramBotAPIToken, "DCA_TELEGRAM_BOT_API_TOKEN")

	return &credentials
}

func overrideFromEnv(value *string, keyName string) {
	if key := os.Getenv(keyName); key != "" {
		*value = key
	}
}

// Validate fails fast on missing venue credentials, before any network call.
func (credentials *Credentials) Validate() error {
	missing := []string{}
	if credentials.environment.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if credentials.environment.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	if credentials.environment.Passphrase == "" {
		missing = append(missing, "passphrase")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s settings are missing %v", credentials.name, missing)
	}
	return nil
}

func (credentials *Credentials) EnvironmentName() string {
	return credentials.name
}

func (credentials *Credentials) GetAPIKey() string {
	return credentials.environment.APIKey
}

func (credentials *Credentials) GetAPISecret() string {
	return credentials.environment.SecretKey
}

func (credentials *Credentials) GetAPIPassphrase() string {
	return credentials.environment.Passphrase
}

func (credentials *Credentials) GetHTTPUrl() string {
	return credentials.apiURL
}

func (credentials *Credentials) GetTelegramBotAPIToken() string {
	return credentials.environment.TelegramBotAPIToken
}

func (credentials *Credentials) GetTelegramChatID() int64 {
	return credentials.environment.TelegramChatID
}

func (credentials *Credentials) GetGoogleSheetID() string {
	return credentials.environment.GoogleSheetID
}

func (credentials *Credentials) GetGoogleSheetSecret() string {
	return credentials.environment.GoogleSheetSecret
}

// SetGoogleSheetSecret lets the -secrets flag override the configured
// service account key file.
func (credentials *Credentials) SetGoogleSheetSecret(path string) {
	credentials.environment.GoogleSheetSecret = path
}
