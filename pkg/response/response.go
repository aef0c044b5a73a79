package response

import (
	"errors"
	"net/http"

	"wallet-console/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestID is the gin context key holding the request id.
const CtxRequestID = "request_id"

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// ErrorResponse is the error body. Clients read "message".
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// OK sends data as a flat 200 body; the account contract has no envelope.
func OK(c *gin.Context, data interface{}) {
	c.Header(HeaderRequestID, RequestID(c))
	c.JSON(http.StatusOK, data)
}

// Created sends data as a flat 201 body.
func Created(c *gin.Context, data interface{}) {
	c.Header(HeaderRequestID, RequestID(c))
	c.JSON(http.StatusCreated, data)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	requestID := RequestID(c)
	c.Header(HeaderRequestID, requestID)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: apperror.CodeInternal,
		Message:   "Internal server error",
		RequestID: requestID,
	})
}

// RequestID returns the id stored on c, generating and storing one when
// missing.
func RequestID(c *gin.Context) string {
	if id, exists := c.Get(CtxRequestID); exists {
		if s, ok := id.(string); ok && s != "" {
			return s
		}
	}
	id := uuid.New().String()
	c.Set(CtxRequestID, id)
	return id
}
