package status

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/takane/peerbridge/internal/config"
	"github.com/takane/peerbridge/internal/lifecycle"
	"github.com/takane/peerbridge/internal/router"
)

// SetupRouter builds the status/health API exposed next to the bridge.
func SetupRouter(cfg *config.Config, reg *router.Registry, state *lifecycle.State) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if state.IsShuttingDown() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/peers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"count": reg.Count(),
			"peers": reg.Snapshot(),
		})
	})
	api.GET("/state", func(c *gin.Context) {
		phase := "running"
		if state.IsShuttingDown() {
			phase = "shutting_down"
		}
		c.JSON(http.StatusOK, gin.H{
			"phase":  phase,
			"reason": string(state.Reason()),
		})
	})

	log.Info().Str("module", "status").Msg("router setup")
	return r
}
