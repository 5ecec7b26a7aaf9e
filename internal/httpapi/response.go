package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondOK writes payload as the 200 response body.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondError writes the {detail} envelope spec §6 requires for /generate
// failures, at the given status.
func RespondError(c *gin.Context, status int, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"detail": msg})
}
