package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

// Default values and constants
const (
	DefaultDirection     = types.DirectionT2S
	DefaultMode          = types.ModeFull
	DefaultOutputPrefix  = constants.DefaultOutputPrefix
	DefaultLogLevel      = "info"
	DefaultEnableVerbose = false
	DefaultShowProgress  = true

	// EnvPrefix is prepended to upper-cased keys, e.g. EPUB_CONV_DIRECTION
	EnvPrefix = "EPUB_CONV"
)

// Config keys, shared by the config file, environment variables and `config get/set`
const (
	KeyDirection    = "direction"
	KeyMode         = "mode"
	KeyOutputPrefix = "output_prefix"
	KeyLogLevel     = "log_level"
	KeyLogFile      = "log_file"
	KeyVerbose      = "verbose"
	KeyShowProgress = "show_progress"
)

// Config holds application configuration
type Config struct {
	Direction     types.Direction      `mapstructure:"direction" json:"direction"`
	Mode          types.ConversionMode `mapstructure:"mode" json:"mode"`
	OutputPrefix  string               `mapstructure:"output_prefix" json:"output_prefix"`
	LogLevel      string               `mapstructure:"log_level" json:"log_level"`
	LogFile       string               `mapstructure:"log_file" json:"log_file"`
	EnableVerbose bool                 `mapstructure:"verbose" json:"verbose"`
	ShowProgress  bool                 `mapstructure:"show_progress" json:"show_progress"`
}

// NewConfig creates a configuration with defaults
func NewConfig() *Config {
	return &Config{
		Direction:     DefaultDirection,
		Mode:          DefaultMode,
		OutputPrefix:  DefaultOutputPrefix,
		LogLevel:      DefaultLogLevel,
		EnableVerbose: DefaultEnableVerbose,
		ShowProgress:  DefaultShowProgress,
	}
}

// newViper creates a viper instance with defaults and environment bindings
func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyDirection, string(DefaultDirection))
	v.SetDefault(KeyMode, string(DefaultMode))
	v.SetDefault(KeyOutputPrefix, DefaultOutputPrefix)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyVerbose, DefaultEnableVerbose)
	v.SetDefault(KeyShowProgress, DefaultShowProgress)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfigWithEnvOverrides loads defaults, the optional config file and environment overrides
func LoadConfigWithEnvOverrides() (*Config, error) {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads configuration from the given file (which may be absent)
// and applies environment overrides
func LoadConfigFrom(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to parse configuration")
	}

	return cfg, nil
}

// isNotFound reports whether a viper read error means the file does not exist
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()
	return validator.Validate(c)
}

// OutputPathFor returns the output path for an input file under this configuration
func (c *Config) OutputPathFor(inputPath string) string {
	return utils.DeriveOutputPath(inputPath, c.OutputPrefix)
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Direction: %s, Mode: %s, Prefix: %q, LogLevel: %s, Verbose: %v}",
		c.Direction, c.Mode, c.OutputPrefix, c.LogLevel, c.EnableVerbose)
}

// GetConfigDir returns the user configuration directory (~/.epub-converter)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "failed to get user home directory")
	}
	return filepath.Join(homeDir, AppDirName), nil
}

// GetConfigFilePath returns the full path to the configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}
