package handlers

import (
	"net/http"

	"github.com/botivate/sheetsync/internal/models"
	"github.com/botivate/sheetsync/internal/services"
	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes destination maintenance operations to operators
type AdminHandler struct {
	resetService services.TableResetServiceInterface
}

func NewAdminHandler(resetService services.TableResetServiceInterface) *AdminHandler {
	return &AdminHandler{resetService: resetService}
}

// ResetTable drops and recreates one destination table
func (h *AdminHandler) ResetTable(c *gin.Context) {
	var req models.ResetTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := ParseValidationErrors(err); len(details) > 0 {
			fail(c, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: details}, err)
			return
		}
		fail(c, http.StatusBadRequest, errorBody{Error: "Invalid request body"}, err)
		return
	}

	message, err := h.resetService.Reset(c.Request.Context(), req.TableName, req.CreateStatement)
	if err != nil {
		// schema failures keep the reset response shape so callers read one body type
		if apperrors.Is(err, apperrors.ErrSchema) {
			fail(c, http.StatusUnprocessableEntity, models.ResetTableResponse{Error: err.Error()}, err)
			return
		}
		failWith(c, err, "Failed to reset table")
		return
	}

	c.JSON(http.StatusOK, models.ResetTableResponse{
		Success: true,
		Message: message,
	})
}
