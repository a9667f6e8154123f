package handlers

import (
	"net/http"

	"github.com/botivate/sheetsync/internal/services"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// EditHandler is the HTTP adapter for spreadsheet edit events
type EditHandler struct {
	trigger services.EditTriggerInterface
}

func NewEditHandler(trigger services.EditTriggerInterface) *EditHandler {
	return &EditHandler{trigger: trigger}
}

// ReceiveEdit ignores the event payload; any edit is reported the same way
func (h *EditHandler) ReceiveEdit(c *gin.Context) {
	metrics.EditsReceived.WithLabelValues("http").Inc()

	h.trigger.OnEdit(c.Request.Context())

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
