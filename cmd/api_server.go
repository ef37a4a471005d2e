package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Depado/ginprom"
	"github.com/aurowora/compress"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/config"
	"github.com/rm-hull/l8tefuel-api/internal/geocode"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
	"github.com/rm-hull/l8tefuel-api/internal/metrics"
	"github.com/rm-hull/l8tefuel-api/internal/routes"
	"github.com/rm-hull/l8tefuel-api/internal/validation"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

func ApiServer(cfg *config.Config, port int, debug bool) error {

	client, repo, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	if err := validation.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	metrics.Init()

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
		compress.Compress(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		}),
	)

	if debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err = healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{
		repo.Check(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize healthcheck: %v", err)
	}

	issuer := auth.NewTokenIssuer([]byte(cfg.JwtSecret), cfg.JwtExpires)
	geocoder := geocode.NewNominatimGeocoder(cfg.NominatimServer)
	routes.Register(r, repo, issuer, matcher.NewMatcher(client), geocoder)

	log.Printf("Serving frontend from %s", cfg.StaticDir)
	r.NoRoute(routes.Frontend(cfg.StaticDir))

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting HTTP API Server on port %d...", port)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP API Server failed to start on port %d: %v", port, err)
	}

	return nil
}
