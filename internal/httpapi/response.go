package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

// apiResponse is the JSON envelope the client expects on every route.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Success    bool   `json:"success"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(apiResponse{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status < fiber.StatusBadRequest,
	})
}
