package domain

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ErrorCode string

const (
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrRevokedToken = errors.New("revoked token")
)

// ErrorBody is the wire shape of every deny or failure response.
type ErrorBody struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Status string    `json:"status"`
	Error  ErrorBody `json:"error"`
}

func NewErrorResponse(code ErrorCode, message string, details map[string]interface{}) ErrorResponse {
	return ErrorResponse{
		Status: "error",
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Reject writes the structured rejection shape and short-circuits the request.
func Reject(c *fiber.Ctx, status int, code ErrorCode, message string, details map[string]interface{}) error {
	return c.Status(status).JSON(NewErrorResponse(code, message, details))
}
