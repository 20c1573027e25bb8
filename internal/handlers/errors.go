package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

const (
	msgInternal   = "Internal server error"
	msgNotFound   = "Resource not found"
	msgInvalid    = "Invalid input data"
	msgBadRequest = "Bad request"
)

func invalidInput(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msgInvalid, Detail: detail})
}

func notFound(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: msgNotFound, Detail: detail})
}

// respondError writes the error body for a failed pipeline call. Internal
// failures are logged and their detail is not exposed.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		log.Warn("resource not found", zap.String("path", c.Path()), zap.Error(err))
		return notFound(c, err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrExtraction),
		errors.Is(err, services.ErrMissingField):
		log.Warn("invalid input", zap.String("path", c.Path()), zap.Error(err))
		return invalidInput(c, err.Error())
	}

	fields := []zap.Field{zap.String("path", c.Path()), zap.Error(err)}
	var jsonErr *services.ModelJSONError
	if errors.As(err, &jsonErr) {
		fields = append(fields, zap.String("raw_response", jsonErr.Raw))
	}
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		fields = append(fields, zap.Int("status_code", svcErr.StatusCode), zap.String("body", svcErr.Body))
	}
	log.Error("request failed", fields...)

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternal})
}

// ErrorHandler is the fiber fallback for errors returned from handlers and
// middleware.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			return notFound(c, fmt.Sprintf("%s %s", c.Method(), c.Path()))
		case code >= fiber.StatusInternalServerError:
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(code).JSON(models.ErrorResponse{Error: msgInternal})
		default:
			return c.Status(code).JSON(models.ErrorResponse{Error: msgBadRequest, Detail: err.Error()})
		}
	}
}
