package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRequestIDRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	seen := new(string)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		*seen = c.GetString(ContextRequestID)
		c.Status(http.StatusOK)
	})
	return r, seen
}

func TestRequestIDPropagatesSuppliedHeader(t *testing.T) {
	r, seen := newRequestIDRouter()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "upstream-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "upstream-42", *seen)
	require.Equal(t, "upstream-42", w.Header().Get(requestIDHeader))
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	r, seen := newRequestIDRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotEmpty(t, *seen)
	_, err := uuid.Parse(*seen)
	require.NoError(t, err)
	require.Equal(t, *seen, w.Header().Get(requestIDHeader))
}
