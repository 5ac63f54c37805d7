package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ProducerHandler serves the producer area: dashboard and harvests.
type ProducerHandler struct {
	reports  services.ReportService
	harvests services.HarvestService
}

// NewProducerHandler creates a new ProducerHandler instance.
func NewProducerHandler(reports services.ReportService, harvests services.HarvestService) *ProducerHandler {
	return &ProducerHandler{
		reports:  reports,
		harvests: harvests,
	}
}

// RecordHarvestRequest is the body of POST /api/v1/producer/harvests.
// Quantity is in kilograms and accepts a JSON number or a decimal string.
type RecordHarvestRequest struct {
	Quantity    *decimal.Decimal `json:"quantity" binding:"required"`
	HarvestDate string           `json:"harvestDate" binding:"required,datetime=2006-01-02"`
	ParcelID    int64            `json:"parcelId" binding:"required,gt=0"`
	CropTypeID  int64            `json:"cropTypeId" binding:"required,gt=0"`
}

// Dashboard handles GET /api/v1/producer/dashboard.
func (h *ProducerHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reports.ProducerDashboard(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Harvests handles GET /api/v1/producer/harvests.
func (h *ProducerHandler) Harvests(c *gin.Context) {
	rows, err := h.harvests.ListOwn(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(rows))
}

// RecordHarvest handles POST /api/v1/producer/harvests.
func (h *ProducerHandler) RecordHarvest(c *gin.Context) {
	var req RecordHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid harvest")
		return
	}

	// The binding already checked the layout.
	date, _ := time.Parse(DateLayout, req.HarvestDate)

	rec, err := h.harvests.RecordHarvest(c.Request.Context(), middleware.GetActor(c), services.RecordHarvestInput{
		ParcelID:    req.ParcelID,
		CropTypeID:  req.CropTypeID,
		Quantity:    *req.Quantity,
		HarvestDate: date,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}
