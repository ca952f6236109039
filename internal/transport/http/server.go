package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ymoraviadev-droid/t-chat/internal/config"
	"github.com/ymoraviadev-droid/t-chat/internal/core"
)

// HealthResponse is the reply to GET /health on the relay server.
type HealthResponse struct {
	Status        string  `json:"status"`
	ClientsOnline int     `json:"clientsOnline"`
	Uptime        float64 `json:"uptime"`
}

// NewRelayServer builds the push-transport HTTP server: the WebSocket
// endpoint plus a health check.
func NewRelayServer(reg *core.Registry, router *core.Router, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	engine := newEngine(logger)

	started := time.Now()
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, HealthResponse{
			Status:        "ok",
			ClientsOnline: reg.Count(),
			Uptime:        time.Since(started).Seconds(),
		})
	})
	// The WebSocket upgrade hijacks the connection, which gin's response
	// writer refuses after it has been touched. Serve /ws from a plain mux
	// and let gin handle the rest.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(reg, router, logger))
	mux.Handle("/", engine)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewPollServer builds the pull-transport HTTP server.
func NewPollServer(handlers *PollHandlers, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	engine := newEngine(logger)

	engine.POST("/join", handlers.Join)
	engine.POST("/send", handlers.Send)
	engine.GET("/messages", handlers.Messages)
	engine.GET("/clients", handlers.Clients)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func newEngine(logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	return engine
}

func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
