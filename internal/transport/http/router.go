package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"tableflow/internal/app/floor"
	"tableflow/internal/config"
	"tableflow/internal/kvstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *floor.Service, st kvstore.Store, cfg config.ServerConfig) *chi.Mux {
	floorHandlers := NewFloorHandlers(svc)
	adminHandlers := NewAdminHandlers(svc, st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(MetricsMiddleware)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/tables", floorHandlers.Tables())
		r.Get("/history", floorHandlers.History())
		r.Get("/forecast/breaks", floorHandlers.UpcomingBreaks())
		r.Get("/forecast/trials", floorHandlers.TrialRotations())
		r.Get("/export/timeline.xlsx", adminHandlers.TimelineXLSX())
		r.Get("/export/backup.txt", adminHandlers.BackupText())
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(CommandAuditMiddleware(4096))
			r.Post("/tables/{number}/open", floorHandlers.Open())
			r.Post("/tables/{number}/close", floorHandlers.Close())
			r.Post("/tables/{number}/cancel", floorHandlers.Cancel())
			r.Delete("/history/{session_id}", floorHandlers.DeleteSession())
			r.Post("/reset", floorHandlers.Reset())
		})
	})

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
		} else {
			log.Warn().Str("path", cfg.StaticDir).Msg("static directory not found; skipping catch-all static route")
		}
	}
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
