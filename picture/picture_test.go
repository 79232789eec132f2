package picture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		name    string
		img     StaticImage
		rootDir string
		want    string
	}{
		{"below root", StaticImage{ImgURL: "https://example.com/a.jpg", ImgPath: "/var/www/assets/a.jpg"}, "/var/www", "assets/a.jpg"},
		{"root with trailing slash", StaticImage{ImgURL: "x", ImgPath: "/var/www/assets/a.jpg"}, "/var/www/", "assets/a.jpg"},
		{"escaped segments", StaticImage{ImgURL: "x", ImgPath: "/var/www/my images/ä b.jpg"}, "/var/www", "my%20images/%C3%A4%20b.jpg"},
		{"outside root", StaticImage{ImgURL: "image-99.jpg", ImgPath: "/dir/image-99.jpg"}, "/root/dir", "image-99.jpg"},
		{"sibling prefix", StaticImage{ImgURL: "cdn.jpg", ImgPath: "/var/www-other/a.jpg"}, "/var/www", "cdn.jpg"},
		{"remote image", StaticImage{ImgURL: "https://cdn.example.com/a.jpg"}, "/var/www", "https://cdn.example.com/a.jpg"},
		{"no root", StaticImage{ImgURL: "a.jpg", ImgPath: "/var/www/a.jpg"}, "", "a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeURL(tt.img, tt.rootDir))
		})
	}
}

func TestPictureProjection(t *testing.T) {
	small := StaticImage{Dims: ImageDimensions{Width: 100, Height: 50}, ImgURL: "https://cdn/s.jpg", ImgPath: "/srv/www/img/s.jpg"}
	large := StaticImage{Dims: ImageDimensions{Width: 200, Height: 100}, ImgURL: "https://cdn/l.jpg", ImgPath: "/srv/www/img/l.jpg"}

	sources := []Source{{
		Srcset: []SrcsetEntry{{Image: small, Descriptor: "100w"}, {Image: large, Descriptor: "200w"}},
		Src:    small,
		Sizes:  "50vw",
		Media:  "(min-width: 600px)",
	}}
	pic := NewPicture(Source{Srcset: []SrcsetEntry{{Image: small}}, Src: small}, sources)

	// The picture keeps its own copy.
	sources[0].Media = "changed"

	assert.Equal(t, Projection{
		Img: Attributes{Srcset: "img/s.jpg", Src: "img/s.jpg", Width: 100, Height: 50},
		Sources: []Attributes{{
			Srcset: "img/s.jpg 100w, img/l.jpg 200w",
			Src:    "img/s.jpg",
			Width:  100,
			Height: 50,
			Sizes:  "50vw",
			Media:  "(min-width: 600px)",
		}},
	}, pic.Project("/srv/www"))

	assert.Equal(t, "https://cdn/s.jpg 100w, https://cdn/l.jpg 200w", pic.Sources("/elsewhere")[0].Srcset)
}

func TestAttributesMapOmitsEmptyKeys(t *testing.T) {
	m := Attributes{Srcset: "a.jpg", Src: "a.jpg", Width: 1, Height: 2}.Map()
	assert.Equal(t, map[string]any{"srcset": "a.jpg", "src": "a.jpg", "width": 1, "height": 2}, m)

	m = Attributes{Srcset: "a.jpg", Src: "a.jpg", Sizes: "100vw", Media: "print"}.Map()
	assert.Equal(t, "100vw", m["sizes"])
	assert.Equal(t, "print", m["media"])
}

func TestPictureConfigurationIsCopied(t *testing.T) {
	alternates := []SizeItem{NewSizeItem(ResizeConfiguration{Width: 10}, WithMedia("a"))}
	cfg := NewPictureConfiguration(NewSizeItem(ResizeConfiguration{Width: 20}), alternates...)

	alternates[0].Media = "changed"
	got := cfg.Alternates()
	got[0].Media = "also changed"

	assert.Equal(t, "a", cfg.Alternates()[0].Media)

	extended := cfg.WithAlternates(NewSizeItem(ResizeConfiguration{Width: 5}, WithMedia("b")))
	assert.Len(t, cfg.Alternates(), 1)
	assert.Len(t, extended.Alternates(), 2)
}
