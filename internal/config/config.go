package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"log_level"`
	File  string `mapstructure:"log_file"`
}

// Config is the top-level configuration struct.
type Config struct {
	AccessKeyID      string        `mapstructure:"access_key_id"`
	AccessKeySecret  string        `mapstructure:"access_key_secret"`
	Domain           string        `mapstructure:"domain"`
	FeishuWebhookURL string        `mapstructure:"feishu_webhook_url"`
	TTL              int           `mapstructure:"ttl"`
	IPServices       []string      `mapstructure:"ip_services"`
	StateFile        string        `mapstructure:"state_file"`
	Logging          LoggingConfig `mapstructure:"log"`
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig(cfgFile string) error {
	// Set defaults.
	viper.SetDefault("ttl", 600)
	viper.SetDefault("ip_services", []string{
		"https://api.ipify.org?format=json",
		"https://api64.ipify.org?format=json",
		"https://ifconfig.me/ip",
		"https://icanhazip.com",
	})
	viper.SetDefault("state_file", "ddns-state.json")
	viper.SetDefault("log.log_level", "INFO")
	viper.SetDefault("log.log_file", "ddns.log")

	// Specify the config file details.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config") // Looks for config.yaml or config.json
		viper.AddConfigPath(".")      // current directory
	}

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &config, nil
}

// Validate checks that every field required for a reconciliation run is
// present. It runs before any network call is made.
func (c *Config) Validate() error {
	var missing []string
	if c.AccessKeyID == "" {
		missing = append(missing, "access_key_id")
	}
	if c.AccessKeySecret == "" {
		missing = append(missing, "access_key_secret")
	}
	if c.Domain == "" {
		missing = append(missing, "domain")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config fields: %s", strings.Join(missing, ", "))
	}
	if _, _, err := c.SplitDomain(); err != nil {
		return err
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %d", c.TTL)
	}
	if len(c.IPServices) == 0 {
		return fmt.Errorf("ip_services must list at least one lookup service")
	}
	return nil
}

// SplitDomain splits the configured fully-qualified domain into the
// subdomain (RR) and the registered zone name the provider API expects,
// e.g. "ai.example.com" -> ("ai", "example.com").
func (c *Config) SplitDomain() (rr, domainName string, err error) {
	parts := strings.SplitN(c.Domain, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid domain %q: expected subdomain.zone form", c.Domain)
	}
	return parts[0], parts[1], nil
}
