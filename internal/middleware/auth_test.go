package middleware

import (
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
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func protectedRouter(allowed ...access.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireRole(allowed...), func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID.String(), "role": identity.Role.String()})
	})
	return router
}

func TestRequireRole(t *testing.T) {
	userID := uuid.NewString()
	validClaims := jwt.MapClaims{
		"sub":        userID,
		"role":       access.RoleManager.String(),
		"department": "IT",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name       string
		allowed    []access.Role
		authorize  func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "missing token",
			allowed:    []access.Role{access.RoleManager},
			authorize:  func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "malformed bearer header",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "garbage token",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-jwt")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "valid token via header",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "valid token via cookie",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, validClaims)})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "role outside allowed set",
			allowed: []access.Role{access.RoleAdmin},
			authorize: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "unknown role claim",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				claims := jwt.MapClaims{"sub": userID, "role": "SUPERUSER", "exp": time.Now().Add(time.Hour).Unix()}
				r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "expired token",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				claims := jwt.MapClaims{"sub": userID, "role": access.RoleManager.String(), "exp": time.Now().Add(-time.Hour).Unix()}
				r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "non-uuid subject",
			allowed: []access.Role{access.RoleManager},
			authorize: func(r *http.Request) {
				claims := jwt.MapClaims{"sub": "42", "role": access.RoleManager.String(), "exp": time.Now().Add(time.Hour).Unix()}
				r.Header.Set("Authorization", "Bearer "+signToken(t, claims))
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := protectedRouter(tc.allowed...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.authorize(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRequireAnyRoleAdmitsEmployee(t *testing.T) {
	router := protectedRouter(access.RoleEmployee, access.RoleManager, access.RoleGeneralManager, access.RoleAdmin)
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": access.RoleEmployee.String(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
