package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

const (
	ConfigFileName = "config.json"
	AppDirName     = "." + constants.AppName
)

// keySetters apply a string value to a config field
var keySetters = map[string]func(c *Config, value string) error{
	KeyDirection: func(c *Config, value string) error {
		c.Direction = types.Direction(strings.ToLower(strings.TrimSpace(value)))
		return nil
	},
	KeyMode: func(c *Config, value string) error {
		c.Mode = types.ConversionMode(strings.ToLower(strings.TrimSpace(value)))
		return nil
	},
	KeyOutputPrefix: func(c *Config, value string) error {
		c.OutputPrefix = value
		return nil
	},
	KeyLogLevel: func(c *Config, value string) error {
		c.LogLevel = value
		return nil
	},
	KeyLogFile: func(c *Config, value string) error {
		c.LogFile = value
		return nil
	},
	KeyVerbose: func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return utils.NewValidationError("verbose must be a boolean", err)
		}
		c.EnableVerbose = b
		return nil
	},
	KeyShowProgress: func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return utils.NewValidationError("show_progress must be a boolean", err)
		}
		c.ShowProgress = b
		return nil
	},
}

// ListConfigKeys returns all available configuration keys
func ListConfigKeys() []string {
	keys := make([]string, 0, len(keySetters))
	for k := range keySetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetValue returns the configured value for key as a string
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case KeyDirection:
		return string(c.Direction), nil
	case KeyMode:
		return string(c.Mode), nil
	case KeyOutputPrefix:
		return c.OutputPrefix, nil
	case KeyLogLevel:
		return c.LogLevel, nil
	case KeyLogFile:
		return c.LogFile, nil
	case KeyVerbose:
		return strconv.FormatBool(c.EnableVerbose), nil
	case KeyShowProgress:
		return strconv.FormatBool(c.ShowProgress), nil
	default:
		return "", utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
}

// SetValue parses value into the field named by key
func (c *Config) SetValue(key, value string) error {
	setter, ok := keySetters[key]
	if !ok {
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	return setter(c, value)
}

// GetConfigValue gets a specific configuration value by key from the effective configuration
func GetConfigValue(key string) (string, error) {
	cfg, err := LoadConfigWithEnvOverrides()
	if err != nil {
		return "", err
	}
	return cfg.GetValue(key)
}

// SetConfigValue sets a value in the user config file, creating the file when needed
func SetConfigValue(key, value string) error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return err
	}
	return SetConfigValueIn(configPath, key, value)
}

// SetConfigValueIn sets a value in the config file at configPath.
// Environment overrides are not persisted.
func SetConfigValueIn(configPath, key, value string) error {
	cfg := NewConfig()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return utils.WrapError(err, utils.ErrorTypeValidation, "failed to parse config file")
		}
	} else if !os.IsNotExist(err) {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to read config file")
	}

	if err := cfg.SetValue(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return saveConfigFile(configPath, cfg)
}

// saveConfigFile saves the configuration to disk
func saveConfigFile(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), constants.DefaultDirPermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeConversion, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, constants.DefaultFilePermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write config file")
	}

	return nil
}
