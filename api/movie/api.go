package movie

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"

	defaultMaxBodySize = int64(1 << 20) //1MB

	instrumentationName = "github.com/imrenagi/go-movie-api/api/movie"
)

type Options struct {
	MaxBodySize   int64
	MeterProvider metric.MeterProvider
}

type Option func(*Options)

func WithMaxBodySize(size int64) Option {
	return func(o *Options) {
		o.MaxBodySize = size
	}
}

// WithMeterProvider replaces the global meter provider for the movie metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) {
		o.MeterProvider = mp
	}
}

type Storage interface {
	Find(id uuid.UUID) (Movie, bool)
	Save(m Movie)
	Len() int
}

type Controller struct {
	store       Storage
	maxBodySize int64

	createdCounter metric.Int64Counter
	lookupCounter  metric.Int64Counter
	storedGauge    metric.Registration
}

func NewController(s Storage, opts ...Option) Controller {
	o := Options{
		MaxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	meter := o.MeterProvider.Meter(instrumentationName)

	createdCounter, err := meter.Int64Counter("movies.created",
		metric.WithDescription("Number of movies created"))
	if err != nil {
		log.Warn().Err(err).Msg("unable to create movies.created counter")
	}
	lookupCounter, err := meter.Int64Counter("movies.lookups",
		metric.WithDescription("Number of movie lookups by id"))
	if err != nil {
		log.Warn().Err(err).Msg("unable to create movies.lookups counter")
	}

	var storedGauge metric.Registration
	stored, err := meter.Int64ObservableGauge("movies.stored",
		metric.WithDescription("Number of movies currently held in memory"))
	if err != nil {
		log.Warn().Err(err).Msg("unable to create movies.stored gauge")
	} else {
		storedGauge, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(stored, int64(s.Len()))
			return nil
		}, stored)
		if err != nil {
			log.Warn().Err(err).Msg("unable to register movies.stored callback")
		}
	}

	return Controller{
		store:          s,
		maxBodySize:    o.MaxBodySize,
		createdCounter: createdCounter,
		lookupCounter:  lookupCounter,
		storedGauge:    storedGauge,
	}
}

// Close stops reporting movies.stored for this controller's store.
func (c *Controller) Close() error {
	if c.storedGauge == nil {
		return nil
	}
	return c.storedGauge.Unregister()
}

func (c *Controller) GetMovie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		vars := mux.Vars(r)
		rawID := vars["movie_id"]

		id, err := uuid.Parse(rawID)
		if err != nil {
			logger.Debug().Err(err).Str("movie_id", rawID).Msg("invalid movie id")
			w.WriteHeader(http.StatusNotFound)
			return
		}

		m, ok := c.store.Find(id)
		c.countLookup(r.Context(), ok)
		if !ok {
			logger.Debug().Str("movie_id", rawID).Msg("movie not found")
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, m)
	}
}

func (c *Controller) CreateMovie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, c.maxBodySize)
		defer r.Body.Close()

		contentType := r.Header.Get(ContentTypeHeader)
		if !isJSONContentType(contentType) {
			logger.Debug().Str("content_type", contentType).Msg("Invalid Content-Type")
			writeError(w, http.StatusUnsupportedMediaType, errors.New("expected request with `Content-Type: application/json`"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Debug().Err(err).Msg("unable to read request body")
			writeError(w, decodeErrorStatus(err), err)
			return
		}

		p, err := parseCreateMoviePayload(body)
		if err != nil {
			logger.Debug().Err(err).Msg("unable to decode request body")
			writeError(w, decodeErrorStatus(err), err)
			return
		}

		m := NewMovie(p.Name, p.Year, p.WasGood)
		c.store.Save(m)
		if c.createdCounter != nil {
			c.createdCounter.Add(r.Context(), 1)
		}

		logger.Info().
			Str("movie_id", m.ID.String()).
			Str("name", m.Name).
			Uint16("year", m.Year).
			Msg("movie created")

		writeJSON(w, http.StatusCreated, m)
	}
}

func (c *Controller) countLookup(ctx context.Context, found bool) {
	if c.lookupCounter == nil {
		return
	}
	c.lookupCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
}

func isJSONContentType(v string) bool {
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return false
	}
	return mediaType == ContentTypeJSON ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// decodeErrorStatus maps a body decoding failure to a client error status.
// Well-formed JSON of the wrong shape is 422, anything unreadable is 400.
func decodeErrorStatus(err error) int {
	var fieldErr *fieldError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("unable to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(code)
	w.Write(b)
}

type cError struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, cError{Message: err.Error()})
}
