// Package picture generates the resized variants and the responsive image
// attributes (srcset, sizes, src, width, height, media) of a <picture> element.
//
// The package never touches pixels. Variants are produced by an injected
// Resizer; ResizeCalculator supplies the target box and crop window every
// Resizer implementation is expected to honor.
package picture

import (
	"context"

	apperrors "github.com/leeforge/picture/errors"
)

// ImageDimensions is the pixel size of an image.
//
// Relative dimensions may be scaled beyond their nominal size; the calculator
// only caps upscaling for absolute dimensions.
type ImageDimensions struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Relative bool `json:"relative,omitempty"`
}

// NewImageDimensions validates and returns absolute dimensions.
func NewImageDimensions(width, height int) (ImageDimensions, error) {
	if width <= 0 {
		return ImageDimensions{}, apperrors.NewInvalidConfiguration("width", width, "must be positive")
	}
	if height <= 0 {
		return ImageDimensions{}, apperrors.NewInvalidConfiguration("height", height, "must be positive")
	}
	return ImageDimensions{Width: width, Height: height}, nil
}

// AsRelative returns a copy of d that may be upscaled.
func (d ImageDimensions) AsRelative() ImageDimensions {
	d.Relative = true
	return d
}

// Image is a source or resized image as seen by the generator.
type Image interface {
	Dimensions() ImageDimensions
	// URL is the public URL of the image.
	URL() string
	// Path is the absolute filesystem path, or "" for remote images.
	Path() string
}

// ResizeOptions is forwarded untouched to the Resizer.
type ResizeOptions struct {
	// TargetPath forces the output location of a single resize.
	TargetPath string `json:"target_path,omitempty"`
	// BypassCache skips cached variants and renders again.
	BypassCache bool `json:"bypass_cache,omitempty"`
	// Quality is the encoder quality (1-100), 0 for the resizer default.
	Quality int `json:"quality,omitempty"`
}

// Resizer produces one resized variant of an image.
type Resizer interface {
	Resize(ctx context.Context, img Image, cfg ResizeConfiguration, opts ResizeOptions) (Image, error)
}

// ResizerFunc adapts a function to the Resizer interface.
type ResizerFunc func(ctx context.Context, img Image, cfg ResizeConfiguration, opts ResizeOptions) (Image, error)

// Resize calls f.
func (f ResizerFunc) Resize(ctx context.Context, img Image, cfg ResizeConfiguration, opts ResizeOptions) (Image, error) {
	return f(ctx, img, cfg, opts)
}

// StaticImage is an Image with fixed attributes.
type StaticImage struct {
	Dims    ImageDimensions
	ImgURL  string
	ImgPath string
}

func (i StaticImage) Dimensions() ImageDimensions { return i.Dims }
func (i StaticImage) URL() string                 { return i.ImgURL }
func (i StaticImage) Path() string                { return i.ImgPath }

var _ Image = StaticImage{}
