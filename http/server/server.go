package server

import (
	"context"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/http/responder"
	"github.com/leeforge/picture/logging"
	"github.com/leeforge/picture/media/processor"
	"github.com/leeforge/picture/metrics"
	"github.com/leeforge/picture/picture"
)

const shutdownTimeout = 10 * time.Second

// Generator builds a picture for one source image.
type Generator interface {
	Generate(ctx context.Context, img picture.Image, cfg picture.PictureConfiguration, opts picture.ResizeOptions) (*picture.Picture, error)
}

// Pictures looks up named picture configurations. *config.Settings
// implements it.
type Pictures interface {
	Picture(name string) (picture.PictureConfiguration, error)
}

type Options struct {
	// RootDir is the web root. Sources are resolved below it and the
	// returned URLs are relative to it.
	RootDir   string
	Pictures  Pictures
	Generator Generator
	Metrics   *metrics.Collector
	Logger    logging.Logger
}

// Server serves generated picture markup over HTTP.
type Server struct {
	rootDir   string
	pictures  Pictures
	generator Generator
	metrics   *metrics.Collector
	logger    logging.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Pictures == nil || opts.Generator == nil {
		return nil, apperrors.NewInternal("server needs pictures and a generator")
	}
	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		rootDir:   root,
		pictures:  opts.Pictures,
		generator: opts.Generator,
		metrics:   opts.Metrics,
		logger:    logger.Named("http"),
	}, nil
}

// Router returns the HTTP routes:
//
//	GET /healthz
//	GET /metrics
//	GET /pictures/{name}?src=<path below root>[&quality=n][&bypass=true]
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.HTTPMiddleware(s.logger))
	r.Use(logging.RecoveryMiddleware)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.NotFound(responder.NotFound)
	r.MethodNotAllowed(responder.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		responder.OK(w, r, map[string]string{"status": "ok"})
	})
	r.Get("/pictures/{name}", s.handlePicture)
	return r
}

func (s *Server) handlePicture(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := strings.ToLower(chi.URLParam(r, "name"))
	ctx := logging.SetPicture(r.Context(), name)

	pic, err := s.generate(ctx, name, r)
	if s.metrics != nil {
		s.metrics.RecordGenerate(name, time.Since(start), err)
	}
	if err != nil {
		logging.FromContext(ctx).With(zap.String("picture", name)).Warn("picture request failed", zap.Error(err))
		responder.WriteError(w, r, err)
		return
	}

	responder.OK(w, r, pic.Project(s.rootDir), responder.WithTook(time.Since(start).Milliseconds()))
}

func (s *Server) generate(ctx context.Context, name string, r *http.Request) (*picture.Picture, error) {
	cfg, err := s.pictures.Picture(name)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	opts, err := resizeOptions(query.Get("quality"), query.Get("bypass"))
	if err != nil {
		return nil, err
	}

	src := query.Get("src")
	if src == "" {
		return nil, apperrors.NewInvalidConfiguration("src", src, "is required")
	}
	img, err := s.openSource(src)
	if err != nil {
		return nil, err
	}

	return s.generator.Generate(ctx, img, cfg, opts)
}

// openSource resolves src below the root. Cleaning against "/" keeps ".."
// segments from leaving it.
func (s *Server) openSource(src string) (picture.StaticImage, error) {
	cleaned := path.Clean("/" + src)
	abs := filepath.Join(s.rootDir, filepath.FromSlash(cleaned))
	return processor.OpenImage(abs, cleaned)
}

func resizeOptions(quality, bypass string) (picture.ResizeOptions, error) {
	var opts picture.ResizeOptions
	if quality != "" {
		q, err := strconv.Atoi(quality)
		if err != nil || q < 1 || q > 100 {
			return opts, apperrors.NewInvalidConfiguration("quality", quality, "must be an integer between 1 and 100")
		}
		opts.Quality = q
	}
	if bypass != "" {
		b, err := strconv.ParseBool(bypass)
		if err != nil {
			return opts, apperrors.NewInvalidConfiguration("bypass", bypass, "must be a boolean")
		}
		opts.BypassCache = b
	}
	return opts, nil
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr), zap.String("root", s.rootDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
