package picture

import (
	"image"
	"math"

	apperrors "github.com/leeforge/picture/errors"
)

// ResizeCoordinates is the result of a resize calculation. The source is
// scaled to Size, then the CropSize window starting at CropStart is cut out.
type ResizeCoordinates struct {
	Size      ImageDimensions `json:"size"`
	CropStart image.Point     `json:"crop_start"`
	CropSize  ImageDimensions `json:"crop_size"`
}

// IsIdentity reports whether the coordinates leave an image of the given
// dimensions untouched.
func (c ResizeCoordinates) IsIdentity(d ImageDimensions) bool {
	return c.Size.Width == d.Width && c.Size.Height == d.Height &&
		c.CropStart == (image.Point{}) &&
		c.CropSize.Width == d.Width && c.CropSize.Height == d.Height
}

// ResizeCalculator computes target boxes and crop windows. It holds no state.
type ResizeCalculator struct{}

func NewResizeCalculator() *ResizeCalculator {
	return &ResizeCalculator{}
}

// window is a crop area in source pixels.
type window struct {
	x, y, width, height float64
}

// Compute returns the coordinates for resizing an image of the given
// dimensions according to cfg.
func (c *ResizeCalculator) Compute(cfg ResizeConfiguration, dims ImageDimensions) (ResizeCoordinates, error) {
	if err := cfg.Validate(); err != nil {
		return ResizeCoordinates{}, err
	}
	if dims.Width <= 0 || dims.Height <= 0 {
		return ResizeCoordinates{}, apperrors.NewInvalidConfiguration("dimensions",
			dims, "source dimensions must be positive")
	}

	srcW, srcH := float64(dims.Width), float64(dims.Height)
	full := window{width: srcW, height: srcH}

	if cfg.IsEmpty() {
		return build(full, 1, dims), nil
	}

	if cfg.Width > 0 && cfg.Height > 0 && cfg.mode() == ModeProportional {
		if dims.Width >= dims.Height {
			cfg.Height = 0
		} else {
			cfg.Width = 0
		}
	}

	switch {
	case cfg.Height == 0:
		return build(full, float64(cfg.Width)/srcW, dims), nil
	case cfg.Width == 0:
		return build(full, float64(cfg.Height)/srcH, dims), nil
	}

	boxW, boxH := float64(cfg.Width), float64(cfg.Height)

	if cfg.mode() == ModeFit {
		return build(full, math.Min(boxW/srcW, boxH/srcH), dims), nil
	}

	// Largest centered window with the box aspect ratio.
	exactW, exactH := srcW, srcH
	if srcW*boxH > srcH*boxW {
		exactW = srcH * boxW / boxH
	} else {
		exactH = srcW * boxH / boxW
	}

	zoom := float64(cfg.ZoomLevel) / 100
	win := window{
		width:  srcW + (exactW-srcW)*zoom,
		height: srcH + (exactH-srcH)*zoom,
	}
	win.x = (srcW - win.width) / 2
	win.y = (srcH - win.height) / 2

	return build(win, math.Min(boxW/win.width, boxH/win.height), dims), nil
}

// build scales the source and the crop window by scale, without upscaling
// absolute dimensions.
func build(win window, scale float64, dims ImageDimensions) ResizeCoordinates {
	if !dims.Relative && scale > 1 {
		scale = 1
	}

	return ResizeCoordinates{
		Size: ImageDimensions{
			Width:  roundPixels(float64(dims.Width) * scale),
			Height: roundPixels(float64(dims.Height) * scale),
		},
		CropStart: image.Point{
			X: int(math.Round(win.x * scale)),
			Y: int(math.Round(win.y * scale)),
		},
		CropSize: ImageDimensions{
			Width:  roundPixels(win.width * scale),
			Height: roundPixels(win.height * scale),
		},
	}
}
