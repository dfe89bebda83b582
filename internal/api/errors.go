package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an API error surfaced to the client
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Validation failures rejected before reaching the store or the upstream
var (
	errUnknownAction    = NewError(http.StatusBadRequest, "Unknown action")
	errIdentityRequired = NewError(http.StatusBadRequest, "In-game Name and Hashtag are required.")
	errEmptySectionName = NewError(http.StatusBadRequest, "Section name cannot be empty.")
	errProtectedSection = NewError(http.StatusBadRequest, "Cannot delete the Default section.")
	errUnparsableRank   = NewError(http.StatusInternalServerError, "Could not parse rank data.")
)

// playerNotFoundError maps an upstream error status onto the caller-facing
// "player may not exist" message
func playerNotFoundError(status int) *Error {
	return NewError(http.StatusNotFound, fmt.Sprintf("API Error (Status: %d). Player may not exist.", status))
}

// storeError wraps a persistence or fetch failure; fatal to the request only
func storeError(err error) *Error {
	return NewError(http.StatusInternalServerError, err.Error())
}

// respondError writes the JSON error envelope
func respondError(c *gin.Context, err *Error) {
	c.JSON(err.Code, gin.H{"error": err.Message})
}

// respondActionError is respondError for mutating actions, whose envelope
// also carries the success flag
func respondActionError(c *gin.Context, err *Error) {
	c.JSON(err.Code, gin.H{"success": false, "error": err.Message})
}
