package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withClaims(role identity.Role, userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		setClaims(c, &auth.Claims{
			UserID:      userID,
			Role:        string(role),
			Permissions: role.Permissions(),
		})
		c.Next()
	}
}

func serve(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name     string
		role     identity.Role
		perm     string
		expected int
	}{
		{"admin writes plans", identity.RoleAdmin, identity.PermPlanWrite, http.StatusOK},
		{"dev records usage", identity.RoleDev, identity.PermUsageRecord, http.StatusOK},
		{"dev cannot write plans", identity.RoleDev, identity.PermPlanWrite, http.StatusForbidden},
		{"user cannot record usage", identity.RoleUser, identity.PermUsageRecord, http.StatusForbidden},
		{"user reads plans", identity.RoleUser, identity.PermPlanRead, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/test", withClaims(tt.role, uuid.NewString()), RequirePermission(tt.perm), okHandler)

			rec := serve(router, "/test")
			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRequirePermission_NoClaims(t *testing.T) {
	router := gin.New()
	router.GET("/test", RequirePermission(identity.PermPlanRead), okHandler)

	assert.Equal(t, http.StatusForbidden, serve(router, "/test").Code)
}

func TestRequireAnyPermission(t *testing.T) {
	router := gin.New()
	router.GET("/test",
		withClaims(identity.RoleUser, uuid.NewString()),
		RequireAnyPermission(identity.PermUsageReadAll, identity.PermUsageRead),
		okHandler,
	)

	assert.Equal(t, http.StatusOK, serve(router, "/test").Code)
}

func TestRequireSelfOrPermission(t *testing.T) {
	self := uuid.NewString()
	other := uuid.NewString()

	tests := []struct {
		name     string
		role     identity.Role
		target   string
		expected int
	}{
		{"user reads own usage", identity.RoleUser, self, http.StatusOK},
		{"user cannot read another user", identity.RoleUser, other, http.StatusForbidden},
		{"dev reads anyone", identity.RoleDev, other, http.StatusOK},
		{"admin reads anyone", identity.RoleAdmin, other, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/users/:id/usage",
				withClaims(tt.role, self),
				RequireSelfOrPermission("id", identity.PermUsageReadAll),
				okHandler,
			)

			assert.Equal(t, tt.expected, serve(router, "/users/"+tt.target+"/usage").Code)
		})
	}
}

func TestPermissionDeniedIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	router := gin.New()
	router.GET("/test",
		withClaims(identity.RoleUser, uuid.NewString()),
		RequireAnyPermissionWithConfig(PermissionConfig{Logger: zap.New(core)}, identity.PermPlanWrite),
		okHandler,
	)

	assert.Equal(t, http.StatusForbidden, serve(router, "/test").Code)
	entries := logs.FilterMessage("Permission denied").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "user", entries[0].ContextMap()["role"])
	}
}

func TestHasPermissionHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, HasPermission(c, identity.PermPlanRead))
	assert.False(t, HasAnyPermission(c, identity.PermPlanRead))

	setClaims(c, &auth.Claims{UserID: uuid.NewString(), Permissions: identity.RoleDev.Permissions()})
	assert.True(t, HasPermission(c, identity.PermUsageRecord))
	assert.False(t, HasPermission(c, identity.PermPlanWrite))
	assert.True(t, HasAnyPermission(c, identity.PermPlanWrite, identity.PermPlanRead))
}
