package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// exitServer implements POST /internal/exit: triggers a graceful shutdown
// (final snapshot, then process exit) from cmd/gojudge's lifecycle.
func (h *Handler) exitServer(c *gin.Context) {
	zap.S().Info("shutdown requested via /internal/exit")
	Success(c, gin.H{"status": "shutting down"})
	go h.shutdown()
}
