package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heliowatt/heliowatt/internal/domain/auth"
	"github.com/heliowatt/heliowatt/internal/domain/export"
	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/session"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	"github.com/heliowatt/heliowatt/internal/infra/config"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	cfg           *config.Config
	authSvc       auth.Service
	locationSvc   location.Service
	simulationSvc simulation.Service
	sessionSvc    session.Service
	exportSvc     export.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	cfg *config.Config,
	authSvc auth.Service,
	locationSvc location.Service,
	simulationSvc simulation.Service,
	sessionSvc session.Service,
	exportSvc export.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:           cfg,
		authSvc:       authSvc,
		locationSvc:   locationSvc,
		simulationSvc: simulationSvc,
		sessionSvc:    sessionSvc,
		exportSvc:     exportSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
