package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailWith_MapsErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid input echoes", apperrors.InvalidInputError("table_name", "is required"), http.StatusBadRequest, `{"error":"table_name: is required: invalid input"}`},
		{"wrapped input error echoes", fmt.Errorf("reset: %w", apperrors.InvalidInputError("create_statement", "is required")), http.StatusBadRequest, `{"error":"reset: create_statement: is required: invalid input"}`},
		{"schema echoes", apperrors.SchemaError("foo", errors.New("syntax error")), http.StatusUnprocessableEntity, `{"error":"reset table \"foo\": schema error: syntax error"}`},
		{"source unavailable hides cause", apperrors.SourceUnavailableError("gsheets", errors.New("dial tcp: timeout")), http.StatusServiceUnavailable, `{"error":"Spreadsheet source unavailable"}`},
		{"unclassified uses fallback", errors.New("pq: connection reset"), http.StatusInternalServerError, `{"error":"Something broke"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded []*gin.Error
			router := gin.New()
			router.GET("/x", func(c *gin.Context) {
				failWith(c, tt.err, "Something broke")
				recorded = c.Errors
			})

			w := get(router, "/x")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			require.Len(t, recorded, 1)
			assert.ErrorIs(t, recorded[0].Err, tt.err)
		})
	}
}

func TestFail_NilErrorRecordsNothing(t *testing.T) {
	var recorded []*gin.Error
	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		fail(c, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: []ValidationError{{Field: "table_name", Message: "table_name is required"}}}, nil)
		recorded = c.Errors
	})

	w := get(router, "/x")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","details":[{"field":"table_name","message":"table_name is required"}]}`, w.Body.String())
	assert.Empty(t, recorded)
}
