package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/livetest-app/livetest/internal/capture"
	"github.com/livetest-app/livetest/internal/utils"
)

// CaptureGuide returns the alignment rectangle for a preview viewport so a
// UI can draw the sheet overlay without duplicating the geometry.
func CaptureGuide() fiber.Handler {
	return func(c *fiber.Ctx) error {
		width, err := strconv.ParseFloat(c.Query("width"), 64)
		if err != nil || width <= 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "width must be a positive number")
		}
		height, err := strconv.ParseFloat(c.Query("height"), 64)
		if err != nil || height <= 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "height must be a positive number")
		}

		return utils.SendSuccess(c, "guide computed", capture.Guide(width, height))
	}
}
