package config

import (
	"fmt"
	"strings"

	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

// ConfigValidator 配置验证器
type ConfigValidator struct{}

// NewConfigValidator 创建配置验证器
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate 验证配置
func (v *ConfigValidator) Validate(c *Config) error {
	var errors []string

	// 验证转换方向
	if err := v.validateDirection(c.Direction); err != nil {
		errors = append(errors, err.Error())
	}

	// 验证转换模式
	if err := v.validateMode(c.Mode); err != nil {
		errors = append(errors, err.Error())
	}

	// 验证输出前缀
	if err := utils.ValidatePrefix(c.OutputPrefix); err != nil {
		errors = append(errors, err.Error())
	}

	// 验证日志级别
	if err := v.validateLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errors, "; ")))
	}

	return nil
}

// validateDirection 验证转换方向
func (v *ConfigValidator) validateDirection(direction types.Direction) error {
	for _, valid := range types.Directions {
		if direction == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid direction: %s", direction)
}

// validateMode 验证转换模式
func (v *ConfigValidator) validateMode(mode types.ConversionMode) error {
	validModes := []types.ConversionMode{
		types.ModeFull,
		types.ModeMarkup,
	}

	for _, valid := range validModes {
		if mode == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid mode: %s", mode)
}

// validateLogLevel 验证日志级别
func (v *ConfigValidator) validateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}

	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log level: %s", level)
}
