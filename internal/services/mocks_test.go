package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

var (
	producerActor = Actor{UserID: 10, Username: "jkouassi", Role: models.RoleProducer}
	managerActor  = Actor{UserID: 20, Username: "gestionnaire1", Role: models.RoleManager}
	adminActor    = Actor{UserID: 30, Username: "admin", Role: models.RoleAdmin}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// MockProducerRepository is a mock implementation of ProducerRepository for testing
type MockProducerRepository struct {
	mock.Mock
}

func (m *MockProducerRepository) GetByUserID(ctx context.Context, userID int64) (*models.Producer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Producer), args.Error(1)
}

func (m *MockProducerRepository) Get(ctx context.Context, id int64) (*models.Producer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Producer), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockParcelRepository is a mock implementation of ParcelRepository for testing
type MockParcelRepository struct {
	mock.Mock
}

func (m *MockParcelRepository) ListByProducer(ctx context.Context, producerID int64) ([]models.Parcel, error) {
	args := m.Called(ctx, producerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Parcel), args.Error(1)
}

func (m *MockParcelRepository) FindForProducer(ctx context.Context, parcelID, producerID int64) (*models.Parcel, error) {
	args := m.Called(ctx, parcelID, producerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelRepository) Create(ctx context.Context, parcel models.Parcel) (*models.Parcel, error) {
	args := m.Called(ctx, parcel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

// MockHarvestRepository is a mock implementation of HarvestRepository for testing
type MockHarvestRepository struct {
	mock.Mock
}

func (m *MockHarvestRepository) CreateForProducer(ctx context.Context, producerID int64, rec models.HarvestRecord) (*models.HarvestRecord, error) {
	args := m.Called(ctx, producerID, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HarvestRecord), args.Error(1)
}

func (m *MockHarvestRepository) ListByProducer(ctx context.Context, producerID int64, limit int) ([]models.HarvestRow, error) {
	args := m.Called(ctx, producerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HarvestRow), args.Error(1)
}

func (m *MockHarvestRepository) List(ctx context.Context, filter models.HarvestFilter, limit int) ([]models.HarvestRow, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HarvestRow), args.Error(1)
}

// MockReferenceRepository is a mock implementation of ReferenceRepository for testing
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) CropTypes(ctx context.Context) ([]models.CropType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CropType), args.Error(1)
}

func (m *MockReferenceRepository) CropType(ctx context.Context, id int64) (*models.CropType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CropType), args.Error(1)
}

func (m *MockReferenceRepository) Communes(ctx context.Context) ([]models.Commune, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commune), args.Error(1)
}

func (m *MockReferenceRepository) Districts(ctx context.Context) ([]models.District, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.District), args.Error(1)
}

func (m *MockReferenceRepository) District(ctx context.Context, id int64) (*models.District, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.District), args.Error(1)
}

// MockWarehouseRepository is a mock implementation of WarehouseRepository for testing
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) List(ctx context.Context) ([]models.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Get(ctx context.Context, id int64) (*models.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Create(ctx context.Context, w models.Warehouse) (*models.Warehouse, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) StockEntries(ctx context.Context, warehouseID int64) ([]models.StockEntry, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockEntry), args.Error(1)
}

func (m *MockWarehouseRepository) AllStockEntries(ctx context.Context) (map[int64][]models.StockEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.StockEntry), args.Error(1)
}

func (m *MockWarehouseRepository) UpsertStock(ctx context.Context, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error) {
	args := m.Called(ctx, warehouseID, cropTypeID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockEntry), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository for testing
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) ProducerTotals(ctx context.Context, producerID int64) (repository.ProducerTotals, error) {
	args := m.Called(ctx, producerID)
	return args.Get(0).(repository.ProducerTotals), args.Error(1)
}

func (m *MockReportRepository) ProducerCropTotals(ctx context.Context, producerID int64) ([]models.CropTotal, error) {
	args := m.Called(ctx, producerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CropTotal), args.Error(1)
}

func (m *MockReportRepository) CooperativeTotals(ctx context.Context) (repository.CooperativeTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.CooperativeTotals), args.Error(1)
}

func (m *MockReportRepository) StockByCrop(ctx context.Context) ([]models.CropTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CropTotal), args.Error(1)
}

func (m *MockReportRepository) TopZones(ctx context.Context, limit int) ([]models.ZoneTotal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ZoneTotal), args.Error(1)
}

// MockCacheStore is a mock implementation of cache.Store for testing
type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheStore) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCacheStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheStore) Close() error {
	return m.Called().Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer for testing
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID int64, username, role string) (string, time.Time, error) {
	args := m.Called(userID, username, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
