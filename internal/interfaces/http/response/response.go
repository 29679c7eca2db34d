package response

import (
	"errors"

	domainerrors "appstore.backend/internal/domain/errors"
	"github.com/gin-gonic/gin"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Domain errors are mapped to their HTTP
// status and client code; anything unrecognised becomes a 500.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}

	var verr *domainerrors.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}

	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// AbortWithError writes the error response and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
