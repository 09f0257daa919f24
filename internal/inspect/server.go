// Package inspect serves the advertisement and service record codecs over
// HTTP so payloads captured in the field can be decoded and test payloads
// built without a radio.
//
// Ownership boundary:
// - inspect owns request parsing and the JSON field views
// - validation and byte layout stay in internal/protocol
package inspect

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/beacon/internal/observability"
	"github.com/danmuck/beacon/internal/protocol/lanrecord"
	"github.com/danmuck/beacon/internal/transport"
)

const version = "0.1.0"

type Server struct {
	Name       string
	Addr       string
	Appeared   time.Time
	Codec      lanrecord.Codec
	Transports *transport.Registry

	router *gin.Engine
}

func New(name, addr string, corsOrigins []string, codec lanrecord.Codec, transports *transport.Registry) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if transports == nil {
		transports = transport.NewRegistry()
	}
	return &Server{
		Name:       name,
		Addr:       addr,
		Appeared:   time.Now(),
		Codec:      codec,
		Transports: transports,
		router:     r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	v1 := s.router.Group("/v1")
	v1.POST("/ble/decode", s.decodeAdvertisement)
	v1.POST("/ble/encode", s.encodeAdvertisement)
	v1.POST("/lan/decode", s.decodeRecord)
	v1.POST("/lan/encode", s.encodeRecord)
	v1.GET("/transports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transports": s.Transports.Statuses()})
	})
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.RegisterRoutes()
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr).Str("service", s.Name).Msg("inspector listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
