package server

import (
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/http/responder"
	"github.com/leeforge/picture/json"
	"github.com/leeforge/picture/metrics"
	"github.com/leeforge/picture/picture"
)

type pictureMap map[string]picture.PictureConfiguration

func (m pictureMap) Picture(name string) (picture.PictureConfiguration, error) {
	cfg, ok := m[name]
	if !ok {
		return picture.PictureConfiguration{}, apperrors.NewNotFound("picture configuration", name)
	}
	return cfg, nil
}

// scaledResizer pretends to render next to the source, honoring only the
// requested width.
func scaledResizer(calc *picture.ResizeCalculator) picture.Resizer {
	return picture.ResizerFunc(func(ctx context.Context, img picture.Image, cfg picture.ResizeConfiguration, opts picture.ResizeOptions) (picture.Image, error) {
		coords, err := calc.Compute(cfg, img.Dimensions())
		if err != nil {
			return nil, err
		}
		dir := filepath.Dir(img.Path())
		name := "v" + strconv.Itoa(coords.CropSize.Width) + ".png"
		return picture.StaticImage{
			Dims:    coords.CropSize,
			ImgURL:  "/x/" + name,
			ImgPath: filepath.Join(dir, name),
		}, nil
	})
}

type fixture struct {
	root      string
	collector *metrics.Collector
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "img"), 0o755))

	f, err := os.Create(filepath.Join(root, "img", "a.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 400, 200))))
	require.NoError(t, f.Close())

	pictures := pictureMap{
		"hero": picture.NewPictureConfiguration(
			picture.NewSizeItem(picture.ResizeConfiguration{Width: 100}, picture.WithDensities("1x, 2x")),
		),
	}

	collector := metrics.NewCollector()
	srv, err := New(Options{
		RootDir:   root,
		Pictures:  pictures,
		Generator: picture.NewGenerator(scaledResizer(picture.NewResizeCalculator())),
		Metrics:   collector,
	})
	require.NoError(t, err)

	return &fixture{root: root, collector: collector, handler: srv.Router()}
}

func (f *fixture) get(t *testing.T, target string) (*httptest.ResponseRecorder, responder.Response) {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

	var resp responder.Response
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func TestGetPicture(t *testing.T) {
	f := newFixture(t)

	rr, resp := f.get(t, "/pictures/hero?src=img/a.png")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Equal(t, rr.Header().Get("X-Request-Id"), resp.Meta.RequestID)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var projection picture.Projection
	require.NoError(t, json.Unmarshal(raw, &projection))

	assert.Equal(t, picture.Attributes{
		Srcset: "img/v100.png 1x, img/v200.png 2x",
		Src:    "img/v100.png",
		Width:  100,
		Height: 50,
	}, projection.Img)
	assert.Empty(t, projection.Sources)

	m, ok := f.collector.GetMetric("picture_generate_total", map[string]string{"picture": "hero", "result": "ok"})
	require.True(t, ok)
	assert.Equal(t, float64(1), m.Value)
}

func TestGetPictureNameIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)

	rr, _ := f.get(t, "/pictures/HERO?src=img/a.png")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetPictureErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown picture", "/pictures/banner?src=img/a.png", http.StatusNotFound, apperrors.CodeNotFound},
		{"missing src", "/pictures/hero", http.StatusBadRequest, apperrors.CodeInvalidConfiguration},
		{"missing file", "/pictures/hero?src=img/none.png", http.StatusNotFound, apperrors.CodeNotFound},
		{"src cannot leave root", "/pictures/hero?src=../../etc/passwd", http.StatusNotFound, apperrors.CodeNotFound},
		{"bad quality", "/pictures/hero?src=img/a.png&quality=0", http.StatusBadRequest, apperrors.CodeInvalidConfiguration},
		{"bad bypass", "/pictures/hero?src=img/a.png&bypass=maybe", http.StatusBadRequest, apperrors.CodeInvalidConfiguration},
		{"unknown route", "/nope", http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := f.get(t, tt.target)
			assert.Equal(t, tt.status, rr.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestResizeOptions(t *testing.T) {
	opts, err := resizeOptions("70", "true")
	require.NoError(t, err)
	assert.Equal(t, picture.ResizeOptions{Quality: 70, BypassCache: true}, opts)

	opts, err = resizeOptions("", "")
	require.NoError(t, err)
	assert.Equal(t, picture.ResizeOptions{}, opts)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rr, resp := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, resp.Data)

	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics?format=prometheus", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",status="200"} 1`)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{RootDir: t.TempDir()})
	assert.Error(t, err)
}
