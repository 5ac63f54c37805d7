package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// ReferenceHandler serves the public reference listings.
type ReferenceHandler struct {
	service services.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler instance.
func NewReferenceHandler(service services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// CropTypes handles GET /api/v1/reference/crop-types.
func (h *ReferenceHandler) CropTypes(c *gin.Context) {
	crops, err := h.service.CropTypes(c.Request.Context())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(crops))
}

// Districts handles GET /api/v1/reference/districts.
func (h *ReferenceHandler) Districts(c *gin.Context) {
	districts, err := h.service.Districts(c.Request.Context())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(districts))
}

// Communes handles GET /api/v1/reference/communes.
func (h *ReferenceHandler) Communes(c *gin.Context) {
	communes, err := h.service.Communes(c.Request.Context())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(communes))
}
