package processor

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/picture"
)

// format is an output encoding chosen by file extension.
type format string

const (
	formatJPEG format = "jpeg"
	formatPNG  format = "png"
	formatGIF  format = "gif"
	formatBMP  format = "bmp"
	formatTIFF format = "tiff"
)

func formatFromExt(name string) (format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return formatJPEG, nil
	case ".png":
		return formatPNG, nil
	case ".gif":
		return formatGIF, nil
	case ".bmp":
		return formatBMP, nil
	case ".tif", ".tiff":
		return formatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", filepath.Ext(name))
	}
}

func encode(w io.Writer, img image.Image, f format, quality int) error {
	switch f {
	case formatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case formatPNG:
		return png.Encode(w, img)
	case formatGIF:
		return gif.Encode(w, img, nil)
	case formatBMP:
		return bmp.Encode(w, img)
	case formatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format %q", f)
	}
}

// decode reads any registered format. bmp and tiff register themselves with
// package image on import.
func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

// OpenImage describes the image file at path, reading only its header.
// url is what the picture markup should reference when path is not below
// the web root.
func OpenImage(path, url string) (picture.StaticImage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return picture.StaticImage{}, err
	}

	f, err := os.Open(abs)
	if os.IsNotExist(err) {
		return picture.StaticImage{}, apperrors.NewNotFound("image", path)
	}
	if err != nil {
		return picture.StaticImage{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return picture.StaticImage{}, apperrors.WrapWithType(err, apperrors.ErrorTypeInvalidConfiguration, "unreadable image "+path).
			WithCode(apperrors.CodeInvalidConfiguration)
	}

	dims, err := picture.NewImageDimensions(cfg.Width, cfg.Height)
	if err != nil {
		return picture.StaticImage{}, err
	}
	if url == "" {
		url = filepath.ToSlash(path)
	}
	return picture.StaticImage{Dims: dims, ImgURL: url, ImgPath: abs}, nil
}
