package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meterly/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usageBody struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	UnitsUsed int64  `json:"units_used" binding:"required,gt=0"`
	Note      string `json:"note" binding:"omitempty,max=5"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/usage", func(c *gin.Context) {
		var body usageBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	rec := postJSON(newValidationRouter(), "/usage", `{"user_id":"nope","units_used":0,"note":"too long"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errInfo := decodeError(t, rec)
	assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
	assert.NotEmpty(t, errInfo.RequestID)

	messages := map[string]string{}
	for _, d := range errInfo.Details {
		messages[d.Field] = d.Message
	}
	require.Len(t, messages, 3)
	assert.Equal(t, "Invalid UUID format", messages["user_id"])
	assert.Equal(t, "This field is required", messages["units_used"])
	assert.Equal(t, "Must be at most 5 characters", messages["note"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	rec := postJSON(newValidationRouter(), "/usage", `{"user_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errInfo := decodeError(t, rec)
	assert.Equal(t, dto.ErrCodeBadRequest, errInfo.Code)
	assert.Empty(t, errInfo.Details)
}

func TestHandleValidationError_Valid(t *testing.T) {
	rec := postJSON(newValidationRouter(), "/usage", `{"user_id":"6f1c2b8e-3f0a-4b8e-9c51-0d2f7a9e1b34","units_used":3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
