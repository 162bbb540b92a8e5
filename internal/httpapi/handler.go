// Package httpapi is the judge's external collaborator: a gin router
// mapping the domain errors of internal/core onto HTTP status codes and
// rendering the judge's JSON wire contract.
package httpapi

import (
	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/judge"
	"github.com/oj-engine/gojudge/internal/registry"
)

// Handler holds the dependencies every resource file's handlers need.
type Handler struct {
	cfg      *config.Config
	rs       *registry.Registries
	pipeline *judge.Pipeline
	shutdown func()
}

func NewHandler(cfg *config.Config, rs *registry.Registries, pipeline *judge.Pipeline, shutdown func()) *Handler {
	return &Handler{cfg: cfg, rs: rs, pipeline: pipeline, shutdown: shutdown}
}
