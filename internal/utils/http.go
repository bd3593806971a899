package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the envelope every trips endpoint answers with. Success
// responses carry Message and Data, failures carry Error.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// defaultErrorMessages fills the body when a handler has nothing more
// specific to say.
var defaultErrorMessages = map[int]string{
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Resource not found",
	http.StatusInternalServerError: "Internal server error",
}

// SuccessResponse sends a success envelope with data
func SuccessResponse(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// FailureResponse sends an error envelope for the given status code,
// falling back to a canned message when errorMessage is empty.
func FailureResponse(c echo.Context, statusCode int, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = defaultErrorMessages[statusCode]
	}
	return c.JSON(statusCode, Response{
		Success: false,
		Error:   errorMessage,
	})
}
