package options

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLColor is an RGBA color written as "#rrggbb" or "#rrggbbaa".
type YAMLColor color.RGBA

func (c YAMLColor) Color() color.RGBA {
	return color.RGBA(c)
}

func (c YAMLColor) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses a hex color with optional leading '#'.
func ParseColor(s string) (YAMLColor, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return YAMLColor{}, fmt.Errorf("invalid color format: %s", s)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(h[start:start+2], 16, 8)
		return uint8(v), err
	}

	var c YAMLColor
	var err error
	if c.R, err = parse(0); err != nil {
		return YAMLColor{}, fmt.Errorf("invalid color %s: %w", s, err)
	}
	if c.G, err = parse(2); err != nil {
		return YAMLColor{}, fmt.Errorf("invalid color %s: %w", s, err)
	}
	if c.B, err = parse(4); err != nil {
		return YAMLColor{}, fmt.Errorf("invalid color %s: %w", s, err)
	}
	c.A = 255
	if len(h) == 8 {
		if c.A, err = parse(6); err != nil {
			return YAMLColor{}, fmt.Errorf("invalid color %s: %w", s, err)
		}
	}
	return c, nil
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	// an unquoted "#..." is a YAML comment and decodes as null
	if value.Tag == "!!null" {
		return nil
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c YAMLColor) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
