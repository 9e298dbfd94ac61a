package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/imrenagi/go-movie-api/api/movie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultAddr        = "127.0.0.1:3000"
	DefaultServiceName = "go-movie-api"
)

type Opts struct {
	// Addr is the address the http server listens on.
	Addr        string
	ServiceName string
	// OTLPEndpoint enables trace export over OTLP/gRPC when it is not empty.
	OTLPEndpoint string
}

func New(opts Opts) Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	s := Server{
		opts:  opts,
		store: movie.NewStore(),
	}
	return s
}

type Server struct {
	opts  Opts
	store *movie.Store

	movieController movie.Controller
}

// Run serves the movie API until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("starting server")

	prometheusExporter := NewPrometheusExporter(ctx)
	meterShutdownFn := InitMeterProvider(ctx, s.opts.ServiceName, prometheusExporter)

	traceShutdownFn := func(context.Context) error { return nil }
	if s.opts.OTLPEndpoint != "" {
		log.Info().Str("endpoint", s.opts.OTLPEndpoint).Msg("exporting traces over otlp")
		traceShutdownFn = InitTraceProvider(ctx, s.opts.ServiceName, NewOTLPTraceExporter(ctx, s.opts.OTLPEndpoint))
	}

	httpServer := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.newHTTPHandler(),
		// ReadTimeout is the maximum duration for reading the entire request, including the body.
		ReadTimeout: 10 * time.Second,
		// WriteTimeout is the maximum duration before timing out writes of the response.
		WriteTimeout: 10 * time.Second,
		// ReadHeaderTimeout is necessary here to prevent slowloris attacks.
		// https://www.cloudflare.com/learning/ddos/ddos-attack-tools/slowloris/
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting http server on %s", s.opts.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msgf("listen:%+s\n", err)
		}
	}()

	<-ctx.Done()

	gracefulShutdownPeriod := 30 * time.Second
	log.Warn().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownPeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown http server gracefully")
	}
	log.Warn().Msg("http server gracefully stopped")

	if err := s.movieController.Close(); err != nil {
		log.Error().Err(err).Msg("failed to unregister movie metrics")
	}

	if err := traceShutdownFn(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown trace provider")
	}
	if err := meterShutdownFn(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown meter provider")
	}
	return nil
}

func (s *Server) newHTTPHandler() http.Handler {
	mux := mux.NewRouter()
	mux.Use(
		otelhttp.NewMiddleware("movie-api"),
		LogInterceptor)
	mux.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.movieController = movie.NewController(s.store)
	mux.Handle("/movie", otelhttp.WithRouteTag("/movie", http.HandlerFunc(s.movieController.CreateMovie()))).Methods(http.MethodPost)
	mux.Handle("/movie/{movie_id}", otelhttp.WithRouteTag("/movie/{movie_id}", http.HandlerFunc(s.movieController.GetMovie()))).Methods(http.MethodGet)

	return mux
}
