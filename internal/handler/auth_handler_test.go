package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/internal/service"
	"github.com/colegio-app/colegio-api/pkg/config"
)

type stubAuthUsers struct {
	user models.User
}

func (s *stubAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == s.user.Email {
		u := s.user
		return &u, nil
	}
	return nil, nil
}

func (s *stubAuthUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if id == s.user.ID {
		u := s.user
		return &u, nil
	}
	return nil, nil
}

func (s *stubAuthUsers) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func newLoginRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := service.HashPassword("correcthorse")
	require.NoError(t, err)
	users := &stubAuthUsers{user: models.User{
		ID: "padre-1", Email: "padre@colegio.test", PasswordHash: hash,
		Role: models.RoleParent, Nombre: "María", Apellido: "Pérez", Active: true,
	}}
	authSvc := service.NewAuthService(users, config.JWTConfig{
		Secret: "test-secret", Expiration: time.Hour, Issuer: "colegio-api",
	}, nil, nil)

	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(authSvc).Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	r := newLoginRouter(t)

	w := postJSON(t, r, "/auth/login", gin.H{"email": "padre@colegio.test", "password": "correcthorse"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
			User        struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.Equal(t, int64(3600), body.Data.ExpiresIn)
	assert.Equal(t, "padre@colegio.test", body.Data.User.Email)
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	r := newLoginRouter(t)

	w := postJSON(t, r, "/auth/login", gin.H{"email": "padre@colegio.test", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
}

func TestLoginEndpointMalformedPayload(t *testing.T) {
	r := newLoginRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
