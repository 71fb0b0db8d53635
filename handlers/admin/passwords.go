package admin

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/response"
)

// MintPasswordRequest represents a course password creation request
type MintPasswordRequest struct {
	CourseID  uint       `json:"course_id" validate:"required"`
	Password  string     `json:"password"`   // optional, generated when empty
	ExpiresAt *time.Time `json:"expires_at"` // optional, nil means no expiry
}

// MintPassword creates a one-time course password for distribution outside
// the portal. Leaving password empty generates a random one.
func (h *AdminHandler) MintPassword(c *fiber.Ctx) error {
	var req MintPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return response.BadRequest(c, "expires_at must be in the future")
	}

	password, err := h.passwordService.Mint(c.Context(), req.CourseID, req.Password, req.ExpiresAt)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound, services.ErrCourseInactive:
			return response.NotFound(c, "Course not found")
		default:
			return response.InternalServerError(c, "Failed to create password")
		}
	}

	return response.Created(c, password)
}

// ListPasswords returns all passwords minted for a course, used and unused
func (h *AdminHandler) ListPasswords(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32)
	if err != nil || courseID == 0 {
		return response.BadRequest(c, "course_id query parameter is required")
	}

	passwords, err := h.passwordService.ListForCourse(c.Context(), uint(courseID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch passwords")
	}

	return response.Success(c, passwords)
}

// RevokePassword deletes an unused course password. Used passwords are kept
// as a redemption record and cannot be revoked.
func (h *AdminHandler) RevokePassword(c *fiber.Ctx) error {
	passwordID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid password ID")
	}

	if err := h.passwordService.Revoke(c.Context(), uint(passwordID)); err != nil {
		switch err {
		case services.ErrPasswordNotFound:
			return response.NotFound(c, "Password not found")
		case services.ErrPasswordAlreadyUsed:
			return response.Conflict(c, "Password has already been redeemed")
		default:
			return response.InternalServerError(c, "Failed to revoke password")
		}
	}

	return response.SuccessWithMessage(c, "Password revoked", nil)
}
