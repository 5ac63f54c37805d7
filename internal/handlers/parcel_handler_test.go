package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// setupParcelTestRouter creates a test router with middleware and parcel handlers.
func setupParcelTestRouter(actor services.Actor, parcels *MockParcelService, harvests *MockHarvestService) *gin.Engine {
	handler := NewParcelHandler(parcels, harvests)
	router := newTestRouter(actor)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/producer/parcels", handler.ProducerParcels)
		v1.POST("/manager/parcels", handler.Create)
	}

	return router
}

func floatPtr(v float64) *float64 { return &v }

func TestParcelHandler_ProducerParcels(t *testing.T) {
	t.Run("lists parcels as JSON", func(t *testing.T) {
		harvests := new(MockHarvestService)
		harvests.On("AvailableParcels", mock.Anything, producerActor).Return([]models.Parcel{
			{ID: 1, ProducerID: 3, Name: "Parcelle Nord", Area: dec("2.5")},
			{ID: 2, ProducerID: 3, Name: "Parcelle Sud", Area: dec("1.25")},
		}, nil)

		router := setupParcelTestRouter(producerActor, new(MockParcelService), harvests)
		w := doJSON(router, http.MethodGet, "/api/v1/producer/parcels", nil)

		assertStatus(t, w, http.StatusOK)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		var resp ListResponse[models.Parcel]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Parcelle Sud", resp.Items[1].Name)
	})

	t.Run("geojson format returns a feature collection", func(t *testing.T) {
		fc := geojson.NewFeatureCollection()
		feature := geojson.NewFeature(orb.Point{2.3912, 6.3703})
		feature.Properties["name"] = "Parcelle Nord"
		fc.Append(feature)

		parcels := new(MockParcelService)
		parcels.On("ProducerGeoJSON", mock.Anything, producerActor).Return(fc, nil)
		harvests := new(MockHarvestService)

		router := setupParcelTestRouter(producerActor, parcels, harvests)
		w := doJSON(router, http.MethodGet, "/api/v1/producer/parcels?format=geojson", nil)

		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, ContentTypeGeoJSON, w.Header().Get("Content-Type"))

		decoded, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, decoded.Features, 1)
		assert.Equal(t, orb.Point{2.3912, 6.3703}, decoded.Features[0].Geometry)
		assert.Equal(t, "Parcelle Nord", decoded.Features[0].Properties.MustString("name"))
		harvests.AssertNotCalled(t, "AvailableParcels", mock.Anything, mock.Anything)
	})

	t.Run("unknown format", func(t *testing.T) {
		router := setupParcelTestRouter(producerActor, new(MockParcelService), new(MockHarvestService))
		w := doJSON(router, http.MethodGet, "/api/v1/producer/parcels?format=kml", nil)

		assertStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, apierrors.ErrValidation, decodeError(t, w).Error.Code)
	})

	t.Run("missing producer profile is 403", func(t *testing.T) {
		harvests := new(MockHarvestService)
		harvests.On("AvailableParcels", mock.Anything, producerActor).
			Return(nil, fmt.Errorf("%w: not registered as a producer", services.ErrForbidden))

		router := setupParcelTestRouter(producerActor, new(MockParcelService), harvests)
		w := doJSON(router, http.MethodGet, "/api/v1/producer/parcels", nil)

		assertStatus(t, w, http.StatusForbidden)
	})
}

func TestParcelHandler_Create(t *testing.T) {
	t.Run("creates parcel", func(t *testing.T) {
		parcels := new(MockParcelService)
		parcels.On("Create", mock.Anything, managerActor, mock.MatchedBy(func(in services.CreateParcelInput) bool {
			return in.ProducerID == 3 &&
				in.Name == "Parcelle Est" &&
				in.Area.Equal(dec("0.75")) &&
				in.DistrictID == 4 &&
				in.Latitude != nil && *in.Latitude == 6.37 &&
				in.Longitude != nil && *in.Longitude == 2.39
		})).Return(&models.Parcel{ID: 11, ProducerID: 3, Name: "Parcelle Est", Area: dec("0.75")}, nil)

		router := setupParcelTestRouter(managerActor, parcels, new(MockHarvestService))
		w := doJSON(router, http.MethodPost, "/api/v1/manager/parcels", CreateParcelRequest{
			ProducerID: 3,
			DistrictID: 4,
			Name:       "Parcelle Est",
			Area:       decPtr("0.75"),
			Latitude:   floatPtr(6.37),
			Longitude:  floatPtr(2.39),
		})

		assertStatus(t, w, http.StatusCreated)
		var resp models.Parcel
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(11), resp.ID)
		parcels.AssertExpectations(t)
	})

	t.Run("latitude out of range fails binding", func(t *testing.T) {
		parcels := new(MockParcelService)
		router := setupParcelTestRouter(managerActor, parcels, new(MockHarvestService))

		w := doJSON(router, http.MethodPost, "/api/v1/manager/parcels",
			`{"producerId":3,"districtId":4,"name":"Parcelle Est","area":"1","latitude":95,"longitude":2.39}`)

		assertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, decodeError(t, w).Error.Details, "Latitude")
		parcels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing district fails binding", func(t *testing.T) {
		parcels := new(MockParcelService)
		router := setupParcelTestRouter(managerActor, parcels, new(MockHarvestService))

		w := doJSON(router, http.MethodPost, "/api/v1/manager/parcels",
			`{"producerId":3,"name":"Sans zone","area":"1"}`)

		assertStatus(t, w, http.StatusBadRequest)
		resp := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "DistrictID")
		parcels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	serviceCases := []struct {
		name   string
		err    error
		status int
	}{
		{"area below minimum", fmt.Errorf("%w: area must be >= 0.01", services.ErrValidation), http.StatusBadRequest},
		{"unknown producer", fmt.Errorf("%w: producer 3", services.ErrNotFound), http.StatusNotFound},
		{"duplicate name", fmt.Errorf("%w: parcel name already used", services.ErrConflict), http.StatusConflict},
		{"producer actor", fmt.Errorf("%w: role \"producer\" lacks manage_parcels", services.ErrForbidden), http.StatusForbidden},
	}
	for _, tt := range serviceCases {
		t.Run(tt.name, func(t *testing.T) {
			parcels := new(MockParcelService)
			parcels.On("Create", mock.Anything, managerActor, mock.Anything).Return(nil, tt.err)

			router := setupParcelTestRouter(managerActor, parcels, new(MockHarvestService))
			w := doJSON(router, http.MethodPost, "/api/v1/manager/parcels",
				`{"producerId":3,"districtId":4,"name":"Parcelle Est","area":"0.001"}`)

			assertStatus(t, w, tt.status)
		})
	}
}
