package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/judge"
	"github.com/oj-engine/gojudge/internal/registry"
)

// NewRouter builds the judge's gin engine: jobs, users, contests, and
// the job-stream websocket. shutdown is invoked (from its own goroutine)
// when /internal/exit is called.
func NewRouter(cfg *config.Config, rs *registry.Registries, pipeline *judge.Pipeline, shutdown func()) *gin.Engine {
	h := NewHandler(cfg, rs, pipeline, shutdown)
	pipeline.OnUpdate = h.publishJobUpdate

	r := gin.Default()

	r.POST("/jobs", h.createJob)
	r.GET("/jobs", h.listJobs)
	r.GET("/jobs/:id", h.getJob)
	r.PUT("/jobs/:id", h.rerunJob)
	r.GET("/jobs/:id/stream", h.streamJob)

	r.POST("/users", h.createUser)
	r.GET("/users", h.listUsers)

	r.POST("/contests", h.createContest)
	r.GET("/contests", h.listContests)
	r.GET("/contests/:id", h.getContest)
	r.GET("/contests/:id/ranklist", h.getRanklist)

	r.POST("/internal/exit", h.exitServer)

	return r
}
