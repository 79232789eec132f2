package picture

import (
	"math"
	"strings"

	apperrors "github.com/leeforge/picture/errors"
)

// ResizeMode selects how a box with both width and height is filled.
type ResizeMode string

const (
	// ModeCrop fits a crop window into the box. ZoomLevel 0 keeps the whole
	// image, 100 crops exactly to the box aspect ratio.
	ModeCrop ResizeMode = "crop"
	// ModeFit scales the whole image to fit inside the box.
	ModeFit ResizeMode = "fit"
	// ModeProportional honors only the side matching the source orientation.
	ModeProportional ResizeMode = "proportional"
)

// ParseResizeMode parses a mode name; "" yields ModeCrop.
func ParseResizeMode(s string) (ResizeMode, error) {
	switch ResizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCrop:
		return ModeCrop, nil
	case ModeFit, "box":
		return ModeFit, nil
	case ModeProportional:
		return ModeProportional, nil
	default:
		return "", apperrors.NewInvalidConfiguration("mode", s, "must be one of crop, fit, proportional")
	}
}

// ResizeConfiguration describes a requested resize. Zero width or height
// means the dimension is not set.
type ResizeConfiguration struct {
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Mode      ResizeMode `json:"mode,omitempty"`
	ZoomLevel int        `json:"zoom,omitempty"`
}

// NewResizeConfiguration returns a validated configuration.
func NewResizeConfiguration(width, height int, mode ResizeMode, zoom int) (ResizeConfiguration, error) {
	cfg := ResizeConfiguration{Width: width, Height: height, Mode: mode, ZoomLevel: zoom}
	if err := cfg.Validate(); err != nil {
		return ResizeConfiguration{}, err
	}
	return cfg, nil
}

func (c ResizeConfiguration) WithWidth(width int) ResizeConfiguration {
	c.Width = width
	return c
}

func (c ResizeConfiguration) WithHeight(height int) ResizeConfiguration {
	c.Height = height
	return c
}

func (c ResizeConfiguration) WithMode(mode ResizeMode) ResizeConfiguration {
	c.Mode = mode
	return c
}

func (c ResizeConfiguration) WithZoomLevel(zoom int) ResizeConfiguration {
	c.ZoomLevel = zoom
	return c
}

// IsEmpty reports whether no resize is requested.
func (c ResizeConfiguration) IsEmpty() bool {
	return c.Width == 0 && c.Height == 0
}

// Validate checks sizes, zoom level and mode.
func (c ResizeConfiguration) Validate() error {
	if c.Width < 0 {
		return apperrors.NewInvalidConfiguration("width", c.Width, "must not be negative")
	}
	if c.Height < 0 {
		return apperrors.NewInvalidConfiguration("height", c.Height, "must not be negative")
	}
	if c.ZoomLevel < 0 || c.ZoomLevel > 100 {
		return apperrors.NewInvalidConfiguration("zoom", c.ZoomLevel, "must be between 0 and 100")
	}
	switch c.Mode {
	case "", ModeCrop, ModeFit, ModeProportional:
	default:
		return apperrors.NewInvalidConfiguration("mode", c.Mode, "must be one of crop, fit, proportional")
	}
	return nil
}

// Scale multiplies every set dimension by factor, rounded to at least 1px.
func (c ResizeConfiguration) Scale(factor float64) ResizeConfiguration {
	if c.Width > 0 {
		c.Width = roundPixels(float64(c.Width) * factor)
	}
	if c.Height > 0 {
		c.Height = roundPixels(float64(c.Height) * factor)
	}
	return c
}

// maxDimension bounds every scaled width and height.
const maxDimension = math.MaxInt32

func (c ResizeConfiguration) fitsScale(factor float64) bool {
	return float64(c.Width)*factor <= maxDimension && float64(c.Height)*factor <= maxDimension
}

func (c ResizeConfiguration) mode() ResizeMode {
	if c.Mode == "" {
		return ModeCrop
	}
	return c.Mode
}

func roundPixels(v float64) int {
	return max(1, int(math.Round(v)))
}
