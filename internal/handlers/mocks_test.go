package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	producerActor = services.Actor{UserID: 10, Username: "jkouassi", Role: models.RoleProducer}
	managerActor  = services.Actor{UserID: 20, Username: "gestionnaire1", Role: models.RoleManager}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// newTestRouter builds a router with the request-scoped middleware and a
// fixed actor in place of token authentication.
func newTestRouter(actor services.Actor) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.New("test")))
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Next()
	})
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, _ := json.Marshal(b)
			reader = bytes.NewBuffer(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

// MockReportService is a mock implementation of ReportService for testing
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ProducerDashboard(ctx context.Context, actor services.Actor) (*models.ProducerDashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProducerDashboard), args.Error(1)
}

func (m *MockReportService) ManagerDashboard(ctx context.Context, actor services.Actor) (*models.ManagerDashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ManagerDashboard), args.Error(1)
}

func (m *MockReportService) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicStats), args.Error(1)
}

// MockReferenceService is a mock implementation of ReferenceService for testing
type MockReferenceService struct {
	mock.Mock
}

func (m *MockReferenceService) CropTypes(ctx context.Context) ([]models.CropType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CropType), args.Error(1)
}

func (m *MockReferenceService) Communes(ctx context.Context) ([]models.Commune, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commune), args.Error(1)
}

func (m *MockReferenceService) Districts(ctx context.Context) ([]models.District, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.District), args.Error(1)
}

func (m *MockReferenceService) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockHarvestService is a mock implementation of HarvestService for testing
type MockHarvestService struct {
	mock.Mock
}

func (m *MockHarvestService) AvailableParcels(ctx context.Context, actor services.Actor) ([]models.Parcel, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Parcel), args.Error(1)
}

func (m *MockHarvestService) RecordHarvest(ctx context.Context, actor services.Actor, input services.RecordHarvestInput) (*models.HarvestRecord, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HarvestRecord), args.Error(1)
}

func (m *MockHarvestService) ListOwn(ctx context.Context, actor services.Actor) ([]models.HarvestRow, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HarvestRow), args.Error(1)
}

func (m *MockHarvestService) ListAll(ctx context.Context, actor services.Actor, filter models.HarvestFilter) ([]models.HarvestRow, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HarvestRow), args.Error(1)
}

func (m *MockHarvestService) Export(ctx context.Context, actor services.Actor, filter models.HarvestFilter) (*bytes.Buffer, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bytes.Buffer), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService for testing
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) ListWarehouses(ctx context.Context, actor services.Actor) ([]models.WarehouseStatus, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WarehouseStatus), args.Error(1)
}

func (m *MockInventoryService) WarehouseStatus(ctx context.Context, actor services.Actor, warehouseID int64) (*models.WarehouseStatus, error) {
	args := m.Called(ctx, actor, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarehouseStatus), args.Error(1)
}

func (m *MockInventoryService) CreateWarehouse(ctx context.Context, actor services.Actor, input services.CreateWarehouseInput) (*models.Warehouse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockInventoryService) UpsertStock(ctx context.Context, actor services.Actor, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error) {
	args := m.Called(ctx, actor, warehouseID, cropTypeID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockEntry), args.Error(1)
}

// MockParcelService is a mock implementation of ParcelService for testing
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) Create(ctx context.Context, actor services.Actor, input services.CreateParcelInput) (*models.Parcel, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelService) ProducerGeoJSON(ctx context.Context, actor services.Actor) (*geojson.FeatureCollection, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geojson.FeatureCollection), args.Error(1)
}
