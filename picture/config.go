package picture

// SizeItem is one size of a picture: the default <img> or one <source>.
type SizeItem struct {
	ResizeConfig ResizeConfiguration `json:"resize_config"`
	// Densities lists srcset descriptors, e.g. "1x, 2x" or "200w, 400w".
	Densities string `json:"densities,omitempty"`
	// Sizes is copied verbatim into the sizes attribute.
	Sizes string `json:"sizes,omitempty"`
	// Media is the media query of a <source>.
	Media string `json:"media,omitempty"`
}

// SizeItemOption configures a SizeItem.
type SizeItemOption func(*SizeItem)

func WithDensities(densities string) SizeItemOption {
	return func(s *SizeItem) { s.Densities = densities }
}

func WithSizes(sizes string) SizeItemOption {
	return func(s *SizeItem) { s.Sizes = sizes }
}

func WithMedia(media string) SizeItemOption {
	return func(s *SizeItem) { s.Media = media }
}

// NewSizeItem builds a SizeItem from a resize configuration and options.
func NewSizeItem(resize ResizeConfiguration, opts ...SizeItemOption) SizeItem {
	item := SizeItem{ResizeConfig: resize}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// Validate checks the resize configuration and the densities string.
func (s SizeItem) Validate() error {
	if err := s.ResizeConfig.Validate(); err != nil {
		return err
	}
	_, err := ParseDescriptors(s.Densities)
	return err
}

// PictureConfiguration is the default size plus the ordered alternates. The
// order of alternates is the order of the generated <source> elements.
type PictureConfiguration struct {
	size       SizeItem
	alternates []SizeItem
}

// NewPictureConfiguration copies alternates; later changes to the caller's
// slice do not affect the configuration.
func NewPictureConfiguration(size SizeItem, alternates ...SizeItem) PictureConfiguration {
	return PictureConfiguration{
		size:       size,
		alternates: append([]SizeItem(nil), alternates...),
	}
}

// Size returns the default size item.
func (c PictureConfiguration) Size() SizeItem {
	return c.size
}

// Alternates returns a copy of the alternate size items in order.
func (c PictureConfiguration) Alternates() []SizeItem {
	return append([]SizeItem(nil), c.alternates...)
}

// WithAlternates returns a copy of c with alternates appended.
func (c PictureConfiguration) WithAlternates(items ...SizeItem) PictureConfiguration {
	return NewPictureConfiguration(c.size, append(c.Alternates(), items...)...)
}
