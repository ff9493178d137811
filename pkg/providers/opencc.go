package providers

import (
	"fmt"

	"github.com/longbridgeapp/opencc"

	"github.com/lshan99q/epub-converter/pkg/interfaces"
	"github.com/lshan99q/epub-converter/pkg/types"
)

// OpenCCConverter converts Chinese script with an OpenCC profile fixed at construction
type OpenCCConverter struct {
	name      string
	direction types.Direction
	cc        *opencc.OpenCC
}

// NewOpenCCConverter loads the dictionaries for direction and returns a converter
func NewOpenCCConverter(direction types.Direction) (interfaces.Converter, error) {
	cc, err := opencc.New(string(direction))
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenCC profile %q: %w", direction, err)
	}

	return &OpenCCConverter{
		name:      "opencc-" + string(direction),
		direction: direction,
		cc:        cc,
	}, nil
}

// Convert maps text through the OpenCC dictionaries
func (c *OpenCCConverter) Convert(text string) (string, error) {
	if text == "" {
		return text, nil
	}
	return c.cc.Convert(text)
}

// Direction returns the configured conversion profile
func (c *OpenCCConverter) Direction() types.Direction {
	return c.direction
}

// Name returns the name of the converter
func (c *OpenCCConverter) Name() string {
	return c.name
}
