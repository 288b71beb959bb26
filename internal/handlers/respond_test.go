package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
	"github.com/Adnan-Sarkar/course-review-backend/internal/config"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
)

func testHandler(env string) *Handler {
	cfg := config.Config{Env: env}
	return New(cfg, nil, nil, nil, nil, nil, nil)
}

func performFail(t *testing.T, h *Handler, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.fail(c, err)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestFailMapsDomainErrorStatus(t *testing.T) {
	w := performFail(t, testHandler("dev"), apperr.NotFound("no best course found"))
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeError(t, w)
	require.False(t, env.Success)
	require.Equal(t, "no best course found", env.ErrorMessage)
}

func TestFailMapsDuplicateKeyToConflict(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	w := performFail(t, testHandler("dev"), dup)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Duplicate entry", decodeError(t, w).Message)
}

func TestFailMapsNoDocumentsToNotFound(t *testing.T) {
	w := performFail(t, testHandler("dev"), mongo.ErrNoDocuments)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFailDefaultsToInternalError(t *testing.T) {
	w := performFail(t, testHandler("dev"), errors.New("connection reset"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "connection reset", decodeError(t, w).ErrorMessage)
}

func TestFailHidesStackInProd(t *testing.T) {
	w := performFail(t, testHandler("prod"), apperr.BadRequest("boom"))
	require.Empty(t, decodeError(t, w).Stack)

	w = performFail(t, testHandler("dev"), apperr.BadRequest("boom"))
	require.NotEmpty(t, decodeError(t, w).Stack)
}

func TestValidationEnvelopeListsAllViolations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler("dev")
	r := gin.New()
	r.POST("/course", func(c *gin.Context) {
		var in services.CreateCourseInput
		if err := bindJSON(c, &in); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	body := strings.NewReader(`{"price": 20, "startDate": "2024-01-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/course", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeError(t, w)
	require.Equal(t, "Validation Error", env.Message)

	raw, err := json.Marshal(env.ErrorDetails)
	require.NoError(t, err)
	var violations []fieldViolation
	require.NoError(t, json.Unmarshal(raw, &violations))
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	// 所有缺失字段都应上报，而非只报第一条
	require.Contains(t, fields, "Title")
	require.Contains(t, fields, "EndDate")
	require.Contains(t, fields, "Language")
	require.Contains(t, fields, "Provider")
}

func TestNoRouteEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler("dev")
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "API Not Found", decodeError(t, w).Message)
}

func TestEmptyBodyIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler("dev")
	r := gin.New()
	r.POST("/categories", func(c *gin.Context) {
		var in services.CreateCategoryInput
		if err := bindJSON(c, &in); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/categories", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Malformed request body", decodeError(t, w).Message)
}
