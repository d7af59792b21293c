package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/apperr"
)

// respondError translates any error into the {errors: [..]} body with the
// status carried on the error. Unknown errors flatten to a generic 500.
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	c.JSON(e.Status, gin.H{"errors": e.Messages})
}
