package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oj-engine/gojudge/internal/core"
)

// errorBody is the wire shape of a failed request.
type errorBody struct {
	Reason  core.Reason `json:"reason"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
}

// Success writes the domain object itself as the 200 body: there is no
// envelope around a successful response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Fail maps err onto an HTTP status by its Reason and renders the error
// body. Unrecognized errors are treated as ErrInternal.
func Fail(c *gin.Context, err error) {
	e, ok := core.AsError(err)
	if !ok {
		e = core.Internal("%v", err)
	}

	status := http.StatusInternalServerError
	switch e.Reason {
	case core.ReasonInvalidArgument, core.ReasonRateLimit:
		status = http.StatusBadRequest
	case core.ReasonNotFound:
		status = http.StatusNotFound
	case core.ReasonExternal, core.ReasonInternal:
		status = http.StatusInternalServerError
	}

	zap.S().Warnf("request failed: %s", e.Error())
	c.JSON(status, errorBody{Reason: e.Reason, Code: e.Code, Message: e.Message})
}
