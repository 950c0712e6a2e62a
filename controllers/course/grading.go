package controllers

import (
	"lms/middleware"
	"lms/services/grading"
	"log"

	"github.com/gofiber/fiber/v2"
)

var (
	recorder  *grading.Recorder
	rebuilder *grading.Rebuilder
)

// InitGrading wires the grading services used by the handlers in this package
func InitGrading(r *grading.Recorder, b *grading.Rebuilder) {
	recorder = r
	rebuilder = b
}

func principal(c *fiber.Ctx) (grading.Principal, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return grading.Principal{}, false
	}
	role, _ := c.Locals("role").(string)
	return grading.Principal{UserID: userID, Role: role}, true
}

// gradingError maps a grading service error onto the response envelope
func gradingError(c *fiber.Ctx, err error, action string) error {
	switch grading.KindOf(err) {
	case grading.KindValidation:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case grading.KindNotFound:
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case grading.KindUnauthorized, grading.KindNotEnrolled:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	case grading.KindAlreadySubmitted, grading.KindNotPublished, grading.KindOutOfWindow:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	log.Printf("[GRADING] %s failed: %v", action, err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to "+action+"!", nil)
}
