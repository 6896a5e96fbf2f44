package server

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/formwork/internal/api/http"
	"github.com/GriffinCanCode/formwork/internal/api/middleware"
	"github.com/GriffinCanCode/formwork/internal/domain/formdoc"
	"github.com/GriffinCanCode/formwork/internal/domain/submission"
	"github.com/GriffinCanCode/formwork/internal/fields"
	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
	"github.com/GriffinCanCode/formwork/internal/i18n"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/config"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/tracing"
	"golang.org/x/text/language"
)

// StoreHandler is the binding name of the built-in submission store handler.
const StoreHandler = "store"

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	factory    *form.Factory
	library    *formdoc.Library
	store      *submission.Store
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	breakers   map[string]*resilience.Breaker
}

// Option configures a Server.
type Option func(*options)

type options struct {
	bindings formdoc.Bindings
	logger   *logging.Logger
}

// WithBindings adds application handlers and next callbacks that form
// documents can name.
func WithBindings(b formdoc.Bindings) Option {
	return func(o *options) {
		o.bindings.Handlers = merge(o.bindings.Handlers, b.Handlers)
		o.bindings.Next = merge(o.bindings.Next, b.Next)
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func merge[V any](dst, src map[string]V) map[string]V {
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

// NewServer creates a new server instance and seeds the form library.
func NewServer(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger.Info("Initializing formwork server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("forms_dir", cfg.Forms.Dir),
		zap.String("language", cfg.Forms.Language),
	)

	metrics := monitoring.NewMetrics(nil)
	tracer := tracing.New("formwork", logger.Logger)

	defaults, err := config.LoadDefaults(cfg.Forms.Defaults)
	if err != nil {
		tracer.Close()
		return nil, err
	}
	catalog := i18n.New(language.English)
	if err := defaults.ApplyMessages(catalog); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	tag := catalog.MatchString(cfg.Forms.Language)
	logger.Info("Translations loaded",
		zap.String("language", tag.String()),
		zap.Int("languages", len(catalog.Languages())),
	)

	factory := form.NewFactory(
		form.WithLogger(logger.Logger),
		form.WithObserver(metrics),
		form.WithTranslator(catalog.Translator(tag)),
	)
	if err := fields.Register(factory); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to register fields: %w", err)
	}
	if err := defaults.Apply(factory); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	store := submission.NewStore(submission.DefaultLimit, logger.Logger)
	settings := resilience.DefaultSettings()
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("Action handler breaker changed state",
			zap.String("handler", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	guarded, breakers := resilience.GuardAll(o.bindings.Handlers, settings)
	bindings := formdoc.Bindings{
		Handlers: merge(map[string]controller.Handler{StoreHandler: store.Handler()}, guarded),
		Next:     o.bindings.Next,
	}
	library := formdoc.NewLibrary(factory, bindings, logger.Logger)

	result, err := formdoc.NewSeeder(library, cfg.Forms.Dir, cfg.Forms.Pattern, logger.Logger).Seed(ctx)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to seed forms: %w", err)
	}
	metrics.SetFormsLoaded(library.Len())
	metrics.AddSeedFailures(result.Failed)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSForOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	api.NewHandlers(library, store, metrics, logger.Logger).Register(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully",
		zap.Int("forms", library.Len()),
		zap.Int("failed", result.Failed),
	)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           gzhttp.GzipHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		factory:  factory,
		library:  library,
		store:    store,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		breakers: breakers,
	}, nil
}

// Handler returns the compressed root handler.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Library returns the form library.
func (s *Server) Library() *formdoc.Library { return s.library }

// Factory returns the blueprint factory.
func (s *Server) Factory() *form.Factory { return s.factory }

// Breaker returns the breaker guarding the bound handler name.
func (s *Server) Breaker(name string) (*resilience.Breaker, bool) {
	b, ok := s.breakers[name]
	return b, ok
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		err = fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.tracer.Close()

	_ = s.logger.Sync()
	return err
}
