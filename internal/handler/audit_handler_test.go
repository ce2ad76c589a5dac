package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/middleware"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/service"
)

type stubAuditService struct {
	entries []service.AuditLogResponse
	total   int64
}

func (s stubAuditService) List(_ context.Context, _ service.ListAuditQuery) ([]service.AuditLogResponse, int64, error) {
	return s.entries, s.total, nil
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": access.RoleAdmin.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func TestListAuditLogsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewAuditHandler(stubAuditService{
		entries: []service.AuditLogResponse{{Action: "CREATE_REQUEST", Entity: "REQUEST"}},
		total:   45,
	}).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?page=2&limit=20", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			AuditLogs []service.AuditLogResponse `json:"audit_logs"`
			Total     int64                      `json:"total"`
			Page      int                        `json:"page"`
			Limit     int                        `json:"limit"`
			Pages     int64                      `json:"pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data.AuditLogs, 1)
	assert.EqualValues(t, 45, body.Data.Total)
	assert.Equal(t, 2, body.Data.Page)
	assert.Equal(t, 20, body.Data.Limit)
	assert.EqualValues(t, 3, body.Data.Pages)
}

func TestListAuditLogsForbiddenForNonAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewAuditHandler(stubAuditService{}).RegisterRoutes(api)

	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": access.RoleManager.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
