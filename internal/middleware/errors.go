package middleware

import (
	"net/http"

	"github.com/accountsvc/account-service/internal/models"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int                 `json:"status"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details []models.FieldError `json:"details,omitempty"`
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  code,
		Error:   http.StatusText(code),
		Message: message,
	})
}

// RespondWithValidationError reports every rejected field with the given
// status, 400 for create and 409 for update.
func RespondWithValidationError(c *gin.Context, code int, verr *models.ValidationError) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  code,
		Error:   http.StatusText(code),
		Message: "Invalid request data",
		Details: verr.Fields,
	})
}

// Recovery turns a panic into a JSON 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		RespondWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	RespondWithError(c, http.StatusNotFound, "The requested resource was not found")
}

// MethodNotAllowed answers known routes called with an unsupported method.
func MethodNotAllowed(c *gin.Context) {
	RespondWithError(c, http.StatusMethodNotAllowed, "Method not allowed for this resource")
}
