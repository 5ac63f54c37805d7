package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/agricoop/api/internal/errors"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token and home", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "jkouassi", "secret").Return(&services.LoginResult{
			Token:     "signed.token.value",
			ExpiresAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			User:      models.User{ID: 10, Username: "jkouassi", Role: models.RoleProducer},
			Home:      services.HomeProducer,
		}, nil)

		router := newTestRouter(services.Anonymous)
		router.POST("/api/v1/auth/login", NewAuthHandler(svc).Login)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "jkouassi", Password: "secret"})

		assertStatus(t, w, http.StatusOK)
		var resp services.LoginResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed.token.value", resp.Token)
		assert.Equal(t, services.HomeProducer, resp.Home)
		assert.Equal(t, models.RoleProducer, resp.User.Role)
		assert.NotContains(t, w.Body.String(), "passwordHash")
		svc.AssertExpectations(t)
	})

	t.Run("missing password fails binding", func(t *testing.T) {
		svc := new(MockAuthService)
		router := newTestRouter(services.Anonymous)
		router.POST("/api/v1/auth/login", NewAuthHandler(svc).Login)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", `{"username":"jkouassi"}`)

		assertStatus(t, w, http.StatusBadRequest)
		resp := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "Password")
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(services.Anonymous)
		router.POST("/api/v1/auth/login", NewAuthHandler(new(MockAuthService)).Login)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", `{"username":`)

		assertStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, w).Error.Code)
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "jkouassi", "wrong").
			Return(nil, fmt.Errorf("%w: invalid credentials", services.ErrUnauthenticated))

		router := newTestRouter(services.Anonymous)
		router.POST("/api/v1/auth/login", NewAuthHandler(svc).Login)

		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "jkouassi", Password: "wrong"})

		assertStatus(t, w, http.StatusUnauthorized)
		assert.Equal(t, apierrors.ErrUnauthorized, decodeError(t, w).Error.Code)
	})
}

func TestHomeHandler_Home(t *testing.T) {
	t.Run("anonymous gets public stats", func(t *testing.T) {
		reports := new(MockReportService)
		reports.On("PublicStats", mock.Anything).Return(&models.PublicStats{
			ActiveProducers:  6,
			Communes:         3,
			TotalHarvestedKg: dec("15230.5"),
		}, nil)

		router := newTestRouter(services.Anonymous)
		router.GET("/api/v1/home", NewHomeHandler(reports).Home)

		w := doJSON(router, http.MethodGet, "/api/v1/home", nil)

		assertStatus(t, w, http.StatusOK)
		var resp HomeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, services.HomePublic, resp.Home)
		assert.Equal(t, models.RoleAnonymous, resp.Role)
		require.NotNil(t, resp.Stats)
		assert.Equal(t, 6, resp.Stats.ActiveProducers)
		assert.True(t, dec("15230.5").Equal(resp.Stats.TotalHarvestedKg))
	})

	tests := []struct {
		name  string
		actor services.Actor
		home  string
	}{
		{"producer", producerActor, services.HomeProducer},
		{"manager", managerActor, services.HomeManager},
		{"admin", services.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}, services.HomeManager},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is sent to dashboard", func(t *testing.T) {
			reports := new(MockReportService)
			router := newTestRouter(tt.actor)
			router.GET("/api/v1/home", NewHomeHandler(reports).Home)

			w := doJSON(router, http.MethodGet, "/api/v1/home", nil)

			assertStatus(t, w, http.StatusOK)
			var resp HomeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.home, resp.Home)
			assert.Nil(t, resp.Stats)
			reports.AssertNotCalled(t, "PublicStats", mock.Anything)
		})
	}

	t.Run("unknown role is 403", func(t *testing.T) {
		router := newTestRouter(services.Actor{UserID: 5, Username: "visitor", Role: models.Role("auditor")})
		router.GET("/api/v1/home", NewHomeHandler(new(MockReportService)).Home)

		w := doJSON(router, http.MethodGet, "/api/v1/home", nil)

		assertStatus(t, w, http.StatusForbidden)
		resp := decodeError(t, w)
		assert.Equal(t, apierrors.ErrForbidden, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestReferenceHandler(t *testing.T) {
	t.Run("crop types", func(t *testing.T) {
		svc := new(MockReferenceService)
		svc.On("CropTypes", mock.Anything).Return([]models.CropType{
			{ID: 1, Name: models.CropMaize, Label: "Maïs"},
			{ID: 2, Name: models.CropSoy, Label: "Soja"},
		}, nil)

		router := newTestRouter(services.Anonymous)
		router.GET("/api/v1/reference/crop-types", NewReferenceHandler(svc).CropTypes)

		w := doJSON(router, http.MethodGet, "/api/v1/reference/crop-types", nil)

		assertStatus(t, w, http.StatusOK)
		var resp ListResponse[models.CropType]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "Maïs", resp.Items[0].Label)
	})

	t.Run("empty districts are an empty list", func(t *testing.T) {
		svc := new(MockReferenceService)
		svc.On("Districts", mock.Anything).Return(nil, nil)

		router := newTestRouter(services.Anonymous)
		router.GET("/api/v1/reference/districts", NewReferenceHandler(svc).Districts)

		w := doJSON(router, http.MethodGet, "/api/v1/reference/districts", nil)

		assertStatus(t, w, http.StatusOK)
		assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
	})

	t.Run("communes failure is 500", func(t *testing.T) {
		svc := new(MockReferenceService)
		svc.On("Communes", mock.Anything).Return(nil, fmt.Errorf("failed to list communes: connection reset"))

		router := newTestRouter(services.Anonymous)
		router.GET("/api/v1/reference/communes", NewReferenceHandler(svc).Communes)

		w := doJSON(router, http.MethodGet, "/api/v1/reference/communes", nil)

		assertStatus(t, w, http.StatusInternalServerError)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}
