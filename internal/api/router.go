// Package api assembles the Echo server, middleware and Huma route
// registrations for eapulse.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eapulse/eapulse/internal/api/handlers"
	mw "github.com/eapulse/eapulse/internal/api/middleware"
	"github.com/eapulse/eapulse/internal/store"
)

// Deps holds everything the router needs wired in.
type Deps struct {
	Store  store.Store
	Engine handlers.Evaluator
	Scorer handlers.HealthComputer
	Log    *slog.Logger
}

// NewRouter builds the HTTP server: operational endpoints on plain Echo,
// the versioned API on Huma.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.RequestLog(d.Log))
	e.Use(mw.Recovery(d.Log))
	e.Use(mw.Metrics())

	hh := handlers.NewHealthHandler(d.Store)
	e.GET("/healthz", hh.Healthz)
	e.GET("/readyz", hh.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaAPI := humaecho.New(e, huma.DefaultConfig("eapulse API", "1.0.0"))

	handlers.RegisterReportRoutes(humaAPI, handlers.NewReportHandler(d.Store, d.Engine, d.Log))
	handlers.RegisterRuleRoutes(humaAPI, handlers.NewRuleHandler(d.Store))
	handlers.RegisterAlertRoutes(humaAPI, handlers.NewAlertHandler(d.Store))
	handlers.RegisterPairingRoutes(humaAPI, handlers.NewPairingHandler(d.Store, d.Scorer))
	handlers.RegisterPTORoutes(humaAPI, handlers.NewPTOHandler(d.Store))
	handlers.RegisterSystemStateRoutes(humaAPI, handlers.NewSystemStateHandler(d.Store))

	return e
}
