package errorreport

import (
	"net/http"

	"propdesk/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	reporter *Reporter
}

func NewController(reporter *Reporter) *Controller {
	return &Controller{reporter: reporter}
}

// GetReport returns a stored error report by id
func (ctrl *Controller) GetReport(c *gin.Context) {
	rep, err := ctrl.reporter.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Error report retrieved successfully", rep, nil)
}
