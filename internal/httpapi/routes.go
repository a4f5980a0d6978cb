package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/hub"
	"github.com/DoyleJ11/team-builder/internal/metrics"
	"github.com/DoyleJ11/team-builder/internal/ws"
)

type Deps struct {
	Hub *hub.Hub
	// NewState builds the starting roster for each new room.
	NewState func() engine.State
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	newState := d.NewState
	if newState == nil {
		newState = engine.NewEmptyState
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	r.Get("/ws", ws.Handler(d.Hub, log))

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(log))
		r.Post("/rooms", CreateRoom(d.Hub, newState, log))
		r.Route("/rooms/{code}", func(r chi.Router) {
			r.Get("/", GetRoom(d.Hub))
			r.Post("/commands", PostCommand(d.Hub))
			r.Get("/export.png", ExportPNG(d.Hub))
		})
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
