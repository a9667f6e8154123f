package handlers

import (
	"net/http"

	apperrors "github.com/botivate/sheetsync/pkg/errors"
	"github.com/gin-gonic/gin"
)

// errorBody is the JSON shape of every handler error reply
type errorBody struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// errorKind maps an application sentinel onto the reply it produces. An empty
// message echoes the error text, which is only done for caller mistakes.
type errorKind struct {
	target  error
	status  int
	message string
}

var errorKinds = []errorKind{
	{apperrors.ErrInvalidInput, http.StatusBadRequest, ""},
	{apperrors.ErrSchema, http.StatusUnprocessableEntity, ""},
	{apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable, "Spreadsheet source unavailable"},
}

// fail records err for the request log and aborts with the given body
func fail(c *gin.Context, status int, body any, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
	c.AbortWithStatusJSON(status, body)
}

// failWith replies according to the kind of err. Unclassified errors become a
// 500 carrying fallback so driver and upstream text stays in the log only.
func failWith(c *gin.Context, err error, fallback string) {
	for _, kind := range errorKinds {
		if !apperrors.Is(err, kind.target) {
			continue
		}
		message := kind.message
		if message == "" {
			message = err.Error()
		}
		fail(c, kind.status, errorBody{Error: message}, err)
		return
	}

	fail(c, http.StatusInternalServerError, errorBody{Error: fallback}, err)
}
