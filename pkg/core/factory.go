package core

import (
	"fmt"
	"sort"

	"github.com/lshan99q/epub-converter/pkg/config"
	"github.com/lshan99q/epub-converter/pkg/interfaces"
	"github.com/lshan99q/epub-converter/pkg/logger"
	"github.com/lshan99q/epub-converter/pkg/providers"
	"github.com/lshan99q/epub-converter/pkg/types"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

// DefaultConverterFactory implements ConverterFactory
type DefaultConverterFactory struct {
	modes  map[types.ConversionMode]func(base interfaces.Converter) interfaces.Converter
	config *config.Config
	logger *logger.Logger
}

// NewConverterFactory creates a new converter factory
func NewConverterFactory(cfg *config.Config, log *logger.Logger) interfaces.ConverterFactory {
	factory := &DefaultConverterFactory{
		modes:  make(map[types.ConversionMode]func(base interfaces.Converter) interfaces.Converter),
		config: cfg,
		logger: log,
	}

	// Register default modes
	factory.registerDefaultModes()

	return factory
}

// CreateConverter creates the converter for the configured direction and mode
func (f *DefaultConverterFactory) CreateConverter() (interfaces.Converter, error) {
	wrap, exists := f.modes[f.config.Mode]
	if !exists {
		return nil, utils.NewUnsupportedError(fmt.Sprintf("unknown conversion mode: %s", f.config.Mode), nil)
	}

	f.logger.Debug("Loading OpenCC profile: %s", f.config.Direction)
	base, err := providers.NewOpenCCConverter(f.config.Direction)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to create script converter")
	}

	converter := wrap(base)
	f.logger.Debug("Selected converter '%s' for mode %s", converter.Name(), f.config.Mode)
	return converter, nil
}

// RegisterMode registers a wrapper applied to the base converter for a mode
func (f *DefaultConverterFactory) RegisterMode(mode types.ConversionMode, wrap func(base interfaces.Converter) interfaces.Converter) {
	f.modes[mode] = wrap
	f.logger.Debug("Registered mode: %s", mode)
}

// ListModes returns all registered modes
func (f *DefaultConverterFactory) ListModes() []string {
	names := make([]string, 0, len(f.modes))
	for mode := range f.modes {
		names = append(names, string(mode))
	}
	sort.Strings(names)
	return names
}

// registerDefaultModes registers the built-in modes
func (f *DefaultConverterFactory) registerDefaultModes() {
	// Whole document text goes through the converter
	f.RegisterMode(types.ModeFull, func(base interfaces.Converter) interfaces.Converter {
		return base
	})

	f.RegisterMode(types.ModeMarkup, providers.NewMarkupConverter)
}
