package config

import (
	"errors"
	"fmt"

	validatorV10 "github.com/go-playground/validator/v10"

	"github.com/leeforge/picture/cache"
	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/logging"
	"github.com/leeforge/picture/media/storage"
	"github.com/leeforge/picture/picture"
	"github.com/leeforge/picture/redis_client"
)

var validate = validatorV10.New()

// Settings is the application configuration.
type Settings struct {
	// RootDir is the web root that image paths are projected against.
	RootDir string `mapstructure:"root-dir" json:"rootDir" yaml:"root-dir" default:"public"`
	// Concurrency bounds the parallel resizes of one size item.
	Concurrency int `mapstructure:"concurrency" json:"concurrency" yaml:"concurrency" default:"1" validate:"min=1,max=64"`
	// Quality is the JPEG quality of rendered variants.
	Quality int `mapstructure:"quality" json:"quality" yaml:"quality" default:"85" validate:"min=1,max=100"`

	Logging logging.Config      `mapstructure:"logging" json:"logging" yaml:"logging"`
	Storage storage.Config      `mapstructure:"storage" json:"storage" yaml:"storage"`
	Cache   cache.Config        `mapstructure:"cache" json:"cache" yaml:"cache"`
	Redis   redis_client.Config `mapstructure:"redis" json:"redis" yaml:"redis"`

	// Pictures maps a configuration name to its sizes. Names are lower case
	// since the loader folds keys.
	Pictures map[string]PictureSpec `mapstructure:"pictures" json:"pictures" yaml:"pictures" validate:"dive"`
}

// PictureSpec is the file form of a picture.PictureConfiguration.
type PictureSpec struct {
	Size  SizeSpec   `mapstructure:"size" json:"size" yaml:"size"`
	Items []SizeSpec `mapstructure:"items" json:"items" yaml:"items" validate:"dive"`
}

// SizeSpec is the file form of a picture.SizeItem.
type SizeSpec struct {
	Width     int    `mapstructure:"width" json:"width,omitempty" yaml:"width" validate:"min=0"`
	Height    int    `mapstructure:"height" json:"height,omitempty" yaml:"height" validate:"min=0"`
	Mode      string `mapstructure:"mode" json:"mode,omitempty" yaml:"mode" validate:"omitempty,oneof=crop fit box proportional"`
	Zoom      int    `mapstructure:"zoom" json:"zoom,omitempty" yaml:"zoom" validate:"min=0,max=100"`
	Densities string `mapstructure:"densities" json:"densities,omitempty" yaml:"densities"`
	Sizes     string `mapstructure:"sizes" json:"sizes,omitempty" yaml:"sizes"`
	Media     string `mapstructure:"media" json:"media,omitempty" yaml:"media"`
}

// Load reads the settings with defaults applied and validates them.
func Load(opts Options) (*Settings, error) {
	cfg, err := NewConfig(opts)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := cfg.BindWithDefaults(&settings); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the struct tags and that every picture converts.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var fieldErrors validatorV10.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return apperrors.NewInvalidConfiguration(fe.Namespace(), fe.Value(), validationMessage(fe))
		}
		return apperrors.WrapWithType(err, apperrors.ErrorTypeInvalidConfiguration, "invalid settings")
	}

	if s.Cache.Type == "redis" || s.Cache.Type == "layered" {
		if s.Redis.Host == "" {
			return apperrors.NewInvalidConfiguration("Settings.Redis.Host", s.Redis.Host, "is required by the "+s.Cache.Type+" cache")
		}
	}

	for name, spec := range s.Pictures {
		if _, err := spec.ToConfiguration(); err != nil {
			return apperrors.WrapWithType(err, apperrors.ErrorTypeInvalidConfiguration, fmt.Sprintf("picture %q", name))
		}
	}
	return nil
}

// Picture returns the named picture configuration.
func (s *Settings) Picture(name string) (picture.PictureConfiguration, error) {
	spec, ok := s.Pictures[name]
	if !ok {
		return picture.PictureConfiguration{}, apperrors.NewNotFound("picture configuration", name)
	}
	return spec.ToConfiguration()
}

// ToConfiguration converts the spec. The resize configurations are
// validated, the density strings are checked when generating.
func (p PictureSpec) ToConfiguration() (picture.PictureConfiguration, error) {
	size, err := p.Size.ToSizeItem()
	if err != nil {
		return picture.PictureConfiguration{}, err
	}

	alternates := make([]picture.SizeItem, 0, len(p.Items))
	for _, spec := range p.Items {
		item, err := spec.ToSizeItem()
		if err != nil {
			return picture.PictureConfiguration{}, err
		}
		alternates = append(alternates, item)
	}
	return picture.NewPictureConfiguration(size, alternates...), nil
}

func (s SizeSpec) ToSizeItem() (picture.SizeItem, error) {
	mode, err := picture.ParseResizeMode(s.Mode)
	if err != nil {
		return picture.SizeItem{}, err
	}
	resize, err := picture.NewResizeConfiguration(s.Width, s.Height, mode, s.Zoom)
	if err != nil {
		return picture.SizeItem{}, err
	}
	return picture.NewSizeItem(resize,
		picture.WithDensities(s.Densities),
		picture.WithSizes(s.Sizes),
		picture.WithMedia(s.Media),
	), nil
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}
