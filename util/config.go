package util

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const Name = "tusk"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host          string `validate:"required"`
		SshPort       int    `yaml:"sshPort" validate:"min=1,max=65535"`
		HttpPort      int    `yaml:"httpPort" validate:"min=1,max=65535"`
		DataDir       string `yaml:"dataDir" validate:"required"`
		WithSsh       bool   `yaml:"withSsh"`
		Closed        bool   `yaml:"closed"`
		FeedLimit     int    `yaml:"feedLimit" validate:"min=1"`
		ActivityLimit int    `yaml:"activityLimit" validate:"min=1"`
		RateLimit     int    `yaml:"rateLimit" validate:"min=1"`
		RateBurst     int    `yaml:"rateBurst" validate:"min=1"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("TUSK_HOST")
	envDataDir := os.Getenv("TUSK_DATADIR")
	envWithSsh := os.Getenv("TUSK_WITH_SSH")
	envClosed := os.Getenv("TUSK_CLOSED")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envDataDir != "" {
		c.Conf.DataDir = envDataDir
	}

	overrideInt("TUSK_SSHPORT", &c.Conf.SshPort)
	overrideInt("TUSK_HTTPPORT", &c.Conf.HttpPort)
	overrideInt("TUSK_FEED_LIMIT", &c.Conf.FeedLimit)
	overrideInt("TUSK_ACTIVITY_LIMIT", &c.Conf.ActivityLimit)

	if envWithSsh == "true" {
		c.Conf.WithSsh = true
	}

	if envClosed == "true" {
		c.Conf.Closed = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks ranges and required values of the configuration.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c.Conf); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// overrideInt replaces *dst with the integer value of the env variable, if set.
// An unparsable value is logged and ignored.
func overrideInt(env string, dst *int) {
	raw := os.Getenv(env)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("ignoring invalid integer in environment", "var", env, "value", raw)
		return
	}
	*dst = v
}
