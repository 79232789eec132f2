package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/leeforge/picture/cache"
	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/logging"
	"github.com/leeforge/picture/media/storage"
	"github.com/leeforge/picture/metrics"
	"github.com/leeforge/picture/picture"
)

// DefaultQuality is the JPEG quality used when neither the resizer nor the
// call sets one.
const DefaultQuality = 85

// NativeResizer implements picture.Resizer using pure Go libraries.
// Variants are written through a storage provider under a name derived from
// the source file and the computed coordinates, so a variant is rendered
// once and found again by later calls.
type NativeResizer struct {
	provider    storage.Provider
	calculator  *picture.ResizeCalculator
	cache       cache.Adapter
	cachePrefix string
	cacheTTL    time.Duration
	logger      logging.Logger
	metrics     *metrics.Collector
	quality     int
	group       singleflight.Group
}

type Option func(*NativeResizer)

func WithCalculator(c *picture.ResizeCalculator) Option {
	return func(r *NativeResizer) { r.calculator = c }
}

// WithCache remembers rendered variants in adapter under prefixed keys.
func WithCache(adapter cache.Adapter, prefix string, ttl time.Duration) Option {
	return func(r *NativeResizer) {
		r.cache = adapter
		r.cachePrefix = prefix
		r.cacheTTL = ttl
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *NativeResizer) { r.logger = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(r *NativeResizer) { r.metrics = c }
}

func WithQuality(q int) Option {
	return func(r *NativeResizer) { r.quality = q }
}

func NewNativeResizer(provider storage.Provider, opts ...Option) *NativeResizer {
	r := &NativeResizer{
		provider:   provider,
		calculator: picture.NewResizeCalculator(),
		cache:      cache.NopAdapter{},
		logger:     logging.NewNop(),
		quality:    DefaultQuality,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resize renders img for cfg. When the computed coordinates leave the
// image untouched, img itself is returned.
func (r *NativeResizer) Resize(ctx context.Context, img picture.Image, cfg picture.ResizeConfiguration, opts picture.ResizeOptions) (picture.Image, error) {
	coords, err := r.calculator.Compute(cfg, img.Dimensions())
	if err != nil {
		return nil, err
	}
	if coords.IsIdentity(img.Dimensions()) {
		return img, nil
	}

	quality := r.quality
	if opts.Quality > 0 {
		quality = opts.Quality
	}

	name := opts.TargetPath
	if name == "" {
		name, err = variantName(img, coords, quality)
		if err != nil {
			return nil, apperrors.NewResizeFailure(err, coords.CropSize.Width, coords.CropSize.Height)
		}
	}

	logger := logging.WithContext(r.logger, ctx).With(
		zap.String("source", img.URL()),
		zap.String("variant", name),
	)

	if !opts.BypassCache {
		if variant, ok := r.lookup(ctx, logger, name, coords); ok {
			return variant, nil
		}
	}

	// Callers of the same variant share one render, which outlives the
	// caller that started it.
	ch := r.group.DoChan(name, func() (any, error) {
		return r.render(context.WithoutCancel(ctx), logger, img, name, coords, quality)
	})
	select {
	case <-ctx.Done():
		return nil, apperrors.NewResizeFailure(ctx.Err(), coords.CropSize.Width, coords.CropSize.Height)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(picture.StaticImage), nil
	}
}

// lookup finds a variant rendered earlier, first in the cache and then in
// storage.
func (r *NativeResizer) lookup(ctx context.Context, logger logging.Logger, name string, coords picture.ResizeCoordinates) (picture.StaticImage, bool) {
	key := cache.Key(r.cachePrefix, "variant", name)

	entry, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", zap.Error(err))
	}
	r.recordCacheHit(hit)
	if hit {
		logger.Debug("variant served from cache")
		return entryImage(entry), true
	}

	obj, exists, err := r.provider.Stat(ctx, name)
	if err != nil {
		logger.Warn("storage lookup failed", zap.Error(err))
		return picture.StaticImage{}, false
	}
	if !exists {
		return picture.StaticImage{}, false
	}

	logger.Debug("variant served from storage")
	variant := objectImage(obj, coords.CropSize)
	r.remember(ctx, logger, name, variant)
	return variant, true
}

func (r *NativeResizer) render(ctx context.Context, logger logging.Logger, img picture.Image, name string, coords picture.ResizeCoordinates, quality int) (variant picture.StaticImage, err error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordResize(r.provider.Name(), time.Since(start), err)
		}
	}()

	fail := func(err error) (picture.StaticImage, error) {
		logger.Error("resize failed", zap.Error(err))
		return picture.StaticImage{}, apperrors.NewResizeFailure(err, coords.CropSize.Width, coords.CropSize.Height)
	}

	if img.Path() == "" {
		return fail(fmt.Errorf("source %s has no local path", img.URL()))
	}
	f, err := formatFromExt(name)
	if err != nil {
		return fail(err)
	}

	file, err := os.Open(img.Path())
	if err != nil {
		return fail(err)
	}
	src, err := decode(file)
	file.Close()
	if err != nil {
		return fail(fmt.Errorf("decode %s: %w", img.Path(), err))
	}

	// Resize using Lanczos3 resampling for high quality
	scaled := resize.Resize(uint(coords.Size.Width), uint(coords.Size.Height), src, resize.Lanczos3)
	out := crop(scaled, coords)

	var buf bytes.Buffer
	if err := encode(&buf, out, f, quality); err != nil {
		return fail(err)
	}

	obj, err := r.provider.Put(ctx, name, &buf)
	if err != nil {
		return fail(err)
	}

	variant = objectImage(obj, coords.CropSize)
	logger.Debug("variant rendered",
		zap.Int("width", coords.CropSize.Width),
		zap.Int("height", coords.CropSize.Height),
		zap.Int64("bytes", obj.Size),
		zap.Duration("duration", time.Since(start)),
	)
	r.remember(ctx, logger, name, variant)
	return variant, nil
}

func (r *NativeResizer) remember(ctx context.Context, logger logging.Logger, name string, variant picture.StaticImage) {
	entry := cache.Entry{
		Name:   name,
		URL:    variant.ImgURL,
		Path:   variant.ImgPath,
		Width:  variant.Dims.Width,
		Height: variant.Dims.Height,
	}
	if err := r.cache.Set(ctx, cache.Key(r.cachePrefix, "variant", name), entry, r.cacheTTL); err != nil {
		logger.Warn("cache store failed", zap.Error(err))
	}
}

func (r *NativeResizer) recordCacheHit(hit bool) {
	if r.metrics != nil {
		r.metrics.RecordCacheHit(hit)
	}
}

// crop cuts the crop window out of the resized image.
func crop(scaled image.Image, coords picture.ResizeCoordinates) image.Image {
	if coords.CropStart == (image.Point{}) &&
		coords.CropSize.Width == coords.Size.Width && coords.CropSize.Height == coords.Size.Height {
		return scaled
	}

	bounds := scaled.Bounds()
	window := image.Rect(0, 0, coords.CropSize.Width, coords.CropSize.Height)
	out := image.NewNRGBA(window)
	draw.Draw(out, window, scaled, bounds.Min.Add(coords.CropStart), draw.Src)
	return out
}

// variantName is <dir>/<base>-<id><ext> where id is a name based UUID of the
// source identity and the coordinates, and dir its first character.
func variantName(img picture.Image, coords picture.ResizeCoordinates, quality int) (string, error) {
	source := img.Path()
	if source == "" {
		source = img.URL()
	}

	var modTime int64
	if img.Path() != "" {
		info, err := os.Stat(img.Path())
		if err != nil {
			return "", err
		}
		modTime = info.ModTime().UnixNano()
	}

	key := fmt.Sprintf("%s|%d|%dx%d|%d,%d|%dx%d|q%d",
		source, modTime,
		coords.Size.Width, coords.Size.Height,
		coords.CropStart.X, coords.CropStart.Y,
		coords.CropSize.Width, coords.CropSize.Height,
		quality,
	)
	id := strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(), "-", "")[:10]

	base := filepath.Base(source)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)
	return path.Join(id[:1], fmt.Sprintf("%s-%s%s", base, id, strings.ToLower(ext))), nil
}

func objectImage(obj storage.Object, dims picture.ImageDimensions) picture.StaticImage {
	return picture.StaticImage{Dims: dims, ImgURL: obj.URL, ImgPath: obj.Path}
}

func entryImage(e cache.Entry) picture.StaticImage {
	return picture.StaticImage{
		Dims:    picture.ImageDimensions{Width: e.Width, Height: e.Height},
		ImgURL:  e.URL,
		ImgPath: e.Path,
	}
}

var _ picture.Resizer = (*NativeResizer)(nil)
