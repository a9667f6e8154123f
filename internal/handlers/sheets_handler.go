package handlers

import (
	"net/http"

	"github.com/botivate/sheetsync/internal/services"
	"github.com/gin-gonic/gin"
)

// SheetsHandler publishes the current sync document
type SheetsHandler struct {
	service services.ExtractServiceInterface
}

func NewSheetsHandler(service services.ExtractServiceInterface) *SheetsHandler {
	return &SheetsHandler{service: service}
}

// GetSheets recomputes the document from the live workbook on every request
func (h *SheetsHandler) GetSheets(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	doc, err := h.service.Extract(c.Request.Context())
	if err != nil {
		failWith(c, err, "Failed to extract sheets")
		return
	}

	body, err := doc.MarshalJSON()
	if err != nil {
		fail(c, http.StatusInternalServerError, errorBody{Error: "Failed to encode sheets"}, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
