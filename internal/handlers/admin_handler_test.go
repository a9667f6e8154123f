package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/botivate/sheetsync/internal/models"
	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResetService struct {
	mock.Mock
}

func (m *mockResetService) Reset(ctx context.Context, tableName, createStatement string) (string, error) {
	args := m.Called(ctx, tableName, createStatement)
	return args.String(0), args.Error(1)
}

type mockEditTrigger struct {
	mock.Mock
}

func (m *mockEditTrigger) OnEdit(ctx context.Context) {
	m.Called(ctx)
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func adminRouter(service *mockResetService) *gin.Engine {
	router := gin.New()
	router.POST("/reset", NewAdminHandler(service).ResetTable)
	return router
}

func TestAdminHandler_ResetTable(t *testing.T) {
	service := new(mockResetService)
	service.On("Reset", mock.Anything, "foo", "CREATE TABLE foo (id int)").
		Return("Table foo reset successfully", nil).Once()

	w := postJSON(adminRouter(service), "/reset", `{"table_name":"foo","create_statement":"CREATE TABLE foo (id int)"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ResetTableResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Table foo reset successfully", resp.Message)
	service.AssertExpectations(t)
}

func TestAdminHandler_ResetTable_ValidationFailure(t *testing.T) {
	service := new(mockResetService)

	w := postJSON(adminRouter(service), "/reset", `{"table_name":"foo"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"create_statement"`)
	service.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminHandler_ResetTable_MalformedBody(t *testing.T) {
	w := postJSON(adminRouter(new(mockResetService)), "/reset", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_ResetTable_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid input", apperrors.InvalidInputError("table_name", "must not be empty"), http.StatusBadRequest, "table_name"},
		{"schema error", apperrors.SchemaError("foo", errors.New(`type "nosuchtype" does not exist`)), http.StatusUnprocessableEntity, "nosuchtype"},
		{"connection error", errors.New("connection reset by peer"), http.StatusInternalServerError, "Failed to reset table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockResetService)
			service.On("Reset", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err).Once()

			w := postJSON(adminRouter(service), "/reset", `{"table_name":"foo","create_statement":"CREATE TABLE foo (id nosuchtype)"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestEditHandler_ReceiveEdit(t *testing.T) {
	trigger := new(mockEditTrigger)
	trigger.On("OnEdit", mock.Anything).Return().Once()

	router := gin.New()
	router.POST("/edits", NewEditHandler(trigger).ReceiveEdit)

	w := postJSON(router, "/edits", `{"range":"A1","value":"ignored"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	trigger.AssertExpectations(t)
}
