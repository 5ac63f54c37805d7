package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// HomeHandler dispatches visitors to their landing resource.
type HomeHandler struct {
	reports services.ReportService
}

// NewHomeHandler creates a new HomeHandler instance.
func NewHomeHandler(reports services.ReportService) *HomeHandler {
	return &HomeHandler{reports: reports}
}

// HomeResponse tells the client where the actor's landing resource is.
// Stats is only set for anonymous visitors.
type HomeResponse struct {
	Home  string              `json:"home"`
	Role  models.Role         `json:"role"`
	Stats *models.PublicStats `json:"stats,omitempty"`
}

// Home handles GET /api/v1/home.
func (h *HomeHandler) Home(c *gin.Context) {
	actor := middleware.GetActor(c)

	home, err := services.HomeFor(actor)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	resp := HomeResponse{Home: home, Role: actor.Role}
	if actor.IsAnonymous() {
		stats, err := h.reports.PublicStats(c.Request.Context())
		if err != nil {
			apierrors.FromService(c, err)
			return
		}
		resp.Role = models.RoleAnonymous
		resp.Stats = stats
	}

	c.JSON(http.StatusOK, resp)
}
