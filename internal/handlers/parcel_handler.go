package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// ContentTypeGeoJSON is the media type of GeoJSON documents.
const ContentTypeGeoJSON = "application/geo+json"

// ParcelHandler handles parcel-related HTTP requests.
type ParcelHandler struct {
	service  services.ParcelService
	harvests services.HarvestService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService, harvests services.HarvestService) *ParcelHandler {
	return &ParcelHandler{
		service:  service,
		harvests: harvests,
	}
}

// ListParcelsRequest represents the query parameters for the producer parcel listing.
type ListParcelsRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=json geojson"`
}

// CreateParcelRequest is the body of POST /api/v1/manager/parcels.
// Latitude and Longitude must be given together or not at all.
// Field order is optimized for memory alignment.
type CreateParcelRequest struct {
	Area       *decimal.Decimal `json:"area" binding:"required"`
	DistrictID int64            `json:"districtId" binding:"required,gt=0"`
	Latitude   *float64         `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude  *float64         `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Name       string           `json:"name" binding:"required,max=100"`
	ProducerID int64            `json:"producerId" binding:"required,gt=0"`
}

// ProducerParcels handles GET /api/v1/producer/parcels.
// It lists the parcels the producer can record harvests on. With
// ?format=geojson the located parcels are returned as a FeatureCollection.
func (h *ParcelHandler) ProducerParcels(c *gin.Context) {
	var req ListParcelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	actor := middleware.GetActor(c)

	if req.Format == "geojson" {
		fc, err := h.service.ProducerGeoJSON(c.Request.Context(), actor)
		if err != nil {
			apierrors.FromService(c, err)
			return
		}
		// FeatureCollection marshals itself as GeoJSON
		body, err := fc.MarshalJSON()
		if err != nil {
			apierrors.InternalServerError(c, "Failed to encode parcel geometry", err)
			return
		}
		c.Data(http.StatusOK, ContentTypeGeoJSON, body)
		return
	}

	parcels, err := h.harvests.AvailableParcels(c.Request.Context(), actor)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(parcels))
}

// Create handles POST /api/v1/manager/parcels.
// It registers a parcel for an existing producer.
func (h *ParcelHandler) Create(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid parcel")
		return
	}

	if log != nil {
		log.Info("Processing parcel registration", map[string]interface{}{
			"producer_id": req.ProducerID,
			"name":        req.Name,
		})
	}

	parcel, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), services.CreateParcelInput{
		ProducerID: req.ProducerID,
		DistrictID: req.DistrictID,
		Name:       req.Name,
		Area:       *req.Area,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, parcel)
}
