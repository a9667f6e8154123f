package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observedRouter(seen *string) *gin.Engine {
	router := gin.New()
	router.Use(ObservabilityMiddleware())
	router.GET("/observed/:name", func(c *gin.Context) {
		*seen = c.GetString(RequestIDKey)
		_ = c.Error(errors.New("sheet not found"))
		c.Status(http.StatusNotFound)
	})
	return router
}

func TestObservabilityMiddleware_AssignsRequestID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	observedRouter(&seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/observed/Checklist", http.NoBody))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestObservabilityMiddleware_KeepsCallerRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"valid uuid", "3f2c1a8e-5b6d-4c7e-9f10-123456789abc", true},
		{"arbitrary text", "x\r\ninjected", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			req := httptest.NewRequest(http.MethodGet, "/observed/Checklist", http.NoBody)
			req.Header.Set(RequestIDHeader, tt.incoming)

			w := httptest.NewRecorder()
			observedRouter(&seen).ServeHTTP(w, req)

			if tt.keep {
				assert.Equal(t, tt.incoming, w.Header().Get(RequestIDHeader))
			} else {
				assert.NotEqual(t, tt.incoming, w.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestObservabilityMiddleware_RecordsRouteTemplate(t *testing.T) {
	var seen string
	router := observedRouter(&seen)
	counter := metrics.HTTPRequestTotal.WithLabelValues(http.MethodGet, "/observed/:name", "404")
	before := testutil.ToFloat64(counter)

	for _, name := range []string{"Checklist", "Scratch"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/observed/"+name, http.NoBody))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
