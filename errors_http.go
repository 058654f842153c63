package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-task-auth/imaging"
	"github.com/goliatone/go-task-auth/middleware/jwtware"
)

// ErrorStatus maps an error to the HTTP status it is reported with
func ErrorStatus(err error) int {
	var verrs validation.Errors
	var ferr *fiber.Error

	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &verrs),
		errors.Is(err, ErrInvalidUpdates),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnableToParseData),
		imaging.IsUploadError(err):
		return fiber.StatusBadRequest
	case IsAuthenticationError(err):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ferr):
		return ferr.Code
	}
	return fiber.StatusInternalServerError
}

// WriteError sends err with the status from ErrorStatus. Not found and
// internal failures carry no body; internal failures are logged.
func WriteError(c *fiber.Ctx, logger Logger, err error) error {
	status := ErrorStatus(err)

	switch status {
	case fiber.StatusNotFound:
		return c.SendStatus(status)
	case fiber.StatusUnauthorized:
		return c.Status(status).JSON(fiber.Map{"error": jwtware.DefaultRejectionMessage})
	case fiber.StatusInternalServerError:
		LogError(logger, "request failed", err)
		return c.SendStatus(status)
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(status).JSON(fiber.Map{"error": verrs})
	}

	return c.Status(status).JSON(fiber.Map{"error": errorMessage(err)})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Unable to login"
	case errors.Is(err, ErrInvalidUpdates):
		return "Invalid updates!"
	case errors.Is(err, ErrDuplicateEmail):
		return "Email is already registered"
	}
	return err.Error()
}
