package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/export"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// ManagerHandler serves the manager area: dashboard, warehouses, stock and
// harvest listings.
type ManagerHandler struct {
	reports   services.ReportService
	inventory services.InventoryService
	harvests  services.HarvestService
	now       func() time.Time
}

// NewManagerHandler creates a new ManagerHandler instance.
func NewManagerHandler(
	reports services.ReportService,
	inventory services.InventoryService,
	harvests services.HarvestService,
) *ManagerHandler {
	return &ManagerHandler{
		reports:   reports,
		inventory: inventory,
		harvests:  harvests,
		now:       time.Now,
	}
}

// HarvestQuery holds the optional harvest listing filters.
type HarvestQuery struct {
	CropType string `form:"crop_type" binding:"omitempty,max=20"`
	District *int64 `form:"district" binding:"omitempty,gt=0"`
}

// Filter converts the query into a repository filter. Crop names are
// matched upper-case.
func (q HarvestQuery) Filter() models.HarvestFilter {
	var filter models.HarvestFilter
	if crop := strings.ToUpper(strings.TrimSpace(q.CropType)); crop != "" {
		filter.CropTypeName = &crop
	}
	filter.DistrictID = q.District
	return filter
}

// CreateWarehouseRequest is the body of POST /api/v1/manager/warehouses.
type CreateWarehouseRequest struct {
	Capacity       *decimal.Decimal `json:"capacity" binding:"required"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold" binding:"required"`
	DistrictID     int64            `json:"districtId" binding:"required,gt=0"`
	ManagerID      *int64           `json:"managerId" binding:"omitempty,gt=0"`
	Name           string           `json:"name" binding:"required,max=100"`
}

// UpsertStockRequest is the body of PUT /api/v1/manager/warehouses/:id/stock.
// Quantity replaces the stored value.
type UpsertStockRequest struct {
	Quantity   *decimal.Decimal `json:"quantity" binding:"required"`
	CropTypeID int64            `json:"cropTypeId" binding:"required,gt=0"`
}

// Dashboard handles GET /api/v1/manager/dashboard.
func (h *ManagerHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reports.ManagerDashboard(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Warehouses handles GET /api/v1/manager/warehouses.
func (h *ManagerHandler) Warehouses(c *gin.Context) {
	statuses, err := h.inventory.ListWarehouses(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(statuses))
}

// Warehouse handles GET /api/v1/manager/warehouses/:id.
func (h *ManagerHandler) Warehouse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := h.inventory.WarehouseStatus(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CreateWarehouse handles POST /api/v1/manager/warehouses.
func (h *ManagerHandler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid warehouse")
		return
	}

	warehouse, err := h.inventory.CreateWarehouse(c.Request.Context(), middleware.GetActor(c), services.CreateWarehouseInput{
		Name:           req.Name,
		DistrictID:     req.DistrictID,
		Capacity:       *req.Capacity,
		AlertThreshold: *req.AlertThreshold,
		ManagerID:      req.ManagerID,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusCreated, warehouse)
}

// UpsertStock handles PUT /api/v1/manager/warehouses/:id/stock.
func (h *ManagerHandler) UpsertStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid stock entry")
		return
	}

	entry, err := h.inventory.UpsertStock(c.Request.Context(), middleware.GetActor(c), id, req.CropTypeID, *req.Quantity)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Harvests handles GET /api/v1/manager/harvests.
func (h *ManagerHandler) Harvests(c *gin.Context) {
	var query HarvestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	rows, err := h.harvests.ListAll(c.Request.Context(), middleware.GetActor(c), query.Filter())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(rows))
}

// ExportHarvests handles GET /api/v1/manager/harvests/export.
// Accepts the same filters as Harvests and streams an xlsx attachment.
func (h *ManagerHandler) ExportHarvests(c *gin.Context) {
	var query HarvestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	buf, err := h.harvests.Export(c.Request.Context(), middleware.GetActor(c), query.Filter())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.HarvestFilename(h.now())))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
