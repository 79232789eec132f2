package picture

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SrcsetEntry is one image candidate of a srcset. An empty Descriptor is
// rendered as a bare URL.
type SrcsetEntry struct {
	Image      Image
	Descriptor string
}

// Source holds the generated attributes of the <img> or of one <source>.
type Source struct {
	Srcset []SrcsetEntry
	Src    Image
	Sizes  string
	Media  string
}

// Attributes is the projected attribute map of an <img> or <source>.
// Sizes and Media are absent when empty.
type Attributes struct {
	Srcset string `json:"srcset"`
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Sizes  string `json:"sizes,omitempty"`
	Media  string `json:"media,omitempty"`
}

// Map returns the attributes as a map holding only the present keys.
func (a Attributes) Map() map[string]any {
	m := map[string]any{
		"srcset": a.Srcset,
		"src":    a.Src,
		"width":  a.Width,
		"height": a.Height,
	}
	if a.Sizes != "" {
		m["sizes"] = a.Sizes
	}
	if a.Media != "" {
		m["media"] = a.Media
	}
	return m
}

// Picture is the generated <picture>: the attributes of the <img> and of
// every <source> in configuration order. It is not modified after creation.
type Picture struct {
	img     Source
	sources []Source
}

func NewPicture(img Source, sources []Source) *Picture {
	return &Picture{
		img:     img,
		sources: append([]Source(nil), sources...),
	}
}

// Img returns the <img> attributes with URLs relative to rootDir.
func (p *Picture) Img(rootDir string) Attributes {
	return project(p.img, rootDir)
}

// Sources returns the <source> attributes with URLs relative to rootDir.
func (p *Picture) Sources(rootDir string) []Attributes {
	attrs := make([]Attributes, 0, len(p.sources))
	for _, s := range p.sources {
		attrs = append(attrs, project(s, rootDir))
	}
	return attrs
}

// Projection is the JSON shape of a picture.
type Projection struct {
	Img     Attributes   `json:"img"`
	Sources []Attributes `json:"sources"`
}

// Project returns the <img> and <source> attributes in one value.
func (p *Picture) Project(rootDir string) Projection {
	return Projection{
		Img:     p.Img(rootDir),
		Sources: p.Sources(rootDir),
	}
}

func project(s Source, rootDir string) Attributes {
	candidates := make([]string, 0, len(s.Srcset))
	for _, entry := range s.Srcset {
		candidate := RelativeURL(entry.Image, rootDir)
		if entry.Descriptor != "" {
			candidate += " " + entry.Descriptor
		}
		candidates = append(candidates, candidate)
	}

	attrs := Attributes{
		Srcset: strings.Join(candidates, ", "),
		Sizes:  s.Sizes,
		Media:  s.Media,
	}
	if s.Src != nil {
		dims := s.Src.Dimensions()
		attrs.Src = RelativeURL(s.Src, rootDir)
		attrs.Width = dims.Width
		attrs.Height = dims.Height
	}
	return attrs
}

// RelativeURL returns the path of img relative to rootDir as an escaped URL
// path when the image lies below rootDir, and img.URL() otherwise.
func RelativeURL(img Image, rootDir string) string {
	path := img.Path()
	if rootDir == "" || path == "" || !filepath.IsAbs(path) {
		return img.URL()
	}

	rel, err := filepath.Rel(filepath.Clean(rootDir), filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return img.URL()
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
