package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/pkg/auth"
	"github.com/wareflow/backend/pkg/constants"
	"github.com/wareflow/backend/pkg/errors"
)

// GetUserFromContext extracts the authenticated session from gin.Context
func GetUserFromContext(c *gin.Context) *auth.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	user := userInterface.(auth.UserSession)
	return &user
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	errorCode := errors.GetErrorCode(err)
	message := err.Error()

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, message)
	}

	c.JSON(code, gin.H{
		constants.ResponseError: message,
		constants.FieldMessage:  message,
		"code":                  errorCode,
		"data":                  nil,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends
// a validation error response.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// RespondDocument wraps a transition outcome in the standard envelope
func RespondDocument(c *gin.Context, doc interface{}, extra gin.H) {
	response := gin.H{"document": doc}
	for k, v := range extra {
		response[k] = v
	}
	c.JSON(http.StatusOK, response)
}
