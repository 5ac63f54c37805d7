package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHarvestRepository_CreateForProducerEnforcesOwnership(t *testing.T) {
	db := setupTestDB(t)
	f := loadFixture(t, db)
	parcels := createParcels(t, db, f)
	repo := NewHarvestRepository(db)
	ctx := context.Background()

	rec := models.HarvestRecord{
		ParcelID:    parcels[0].ID,
		CropTypeID:  f.cropIDs["MAIS"],
		Quantity:    dec("750.5"),
		HarvestDate: day("2024-07-15"),
	}

	created, err := repo.CreateForProducer(ctx, f.producerIDs[0], rec)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	assert.False(t, created.RecordedAt.IsZero())

	rejected, err := repo.CreateForProducer(ctx, f.producerIDs[1], rec)
	require.NoError(t, err)
	assert.Nil(t, rejected, "a parcel outside the producer's set inserts nothing")

	rows, err := repo.List(ctx, models.HarvestFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHarvestRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	f := loadFixture(t, db)
	parcels := createParcels(t, db, f)
	repo := NewHarvestRepository(db)
	ctx := context.Background()

	seed := []struct {
		parcel int
		crop   string
		date   string
	}{
		{0, "SOJA", "2024-06-01"},
		{0, "MAIS", "2024-06-02"},
		{1, "SOJA", "2024-06-03"},
		{1, "ANANAS", "2024-06-04"},
	}
	for _, s := range seed {
		_, err := repo.CreateForProducer(ctx, f.producerIDs[s.parcel], models.HarvestRecord{
			ParcelID:    parcels[s.parcel].ID,
			CropTypeID:  f.cropIDs[s.crop],
			Quantity:    dec("100"),
			HarvestDate: day(s.date),
		})
		require.NoError(t, err)
	}

	soja := "SOJA"
	district := f.districtIDs[1]

	all, err := repo.List(ctx, models.HarvestFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "ANANAS", all[0].CropName, "newest harvest date first")

	byCrop, err := repo.List(ctx, models.HarvestFilter{CropTypeName: &soja}, 0)
	require.NoError(t, err)
	assert.Len(t, byCrop, 2)

	byDistrict, err := repo.List(ctx, models.HarvestFilter{DistrictID: &district}, 0)
	require.NoError(t, err)
	assert.Len(t, byDistrict, 2)

	both, err := repo.List(ctx, models.HarvestFilter{CropTypeName: &soja, DistrictID: &district}, 0)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "SOJA", both[0].CropName)
	assert.Equal(t, "Cadjehoun", both[0].DistrictName)
	assert.Equal(t, "Cotonou", both[0].CommuneName)

	limited, err := repo.ListByProducer(ctx, f.producerIDs[0], 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "MAIS", limited[0].CropName)
}

func TestHarvestFilterClause(t *testing.T) {
	where, args := harvestFilterClause(models.HarvestFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	crop := "SOJA"
	district := int64(3)
	where, args = harvestFilterClause(models.HarvestFilter{CropTypeName: &crop, DistrictID: &district})
	assert.Equal(t, " WHERE ct.name = $1 AND pa.district_id = $2", where)
	assert.Equal(t, []any{"SOJA", int64(3)}, args)

	where, args = harvestFilterClause(models.HarvestFilter{DistrictID: &district})
	assert.Equal(t, " WHERE pa.district_id = $1", where)
	assert.Equal(t, []any{int64(3)}, args)
}
