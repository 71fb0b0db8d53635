package subscription

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/middleware"
	"github.com/vidcourse/api/utils/response"
	"gorm.io/gorm"
)

// MaxReceiptUploadSize caps receipt uploads at 10 MB
const MaxReceiptUploadSize = 10 * 1024 * 1024

// SubscriptionHandler handles the student side of subscriptions
type SubscriptionHandler struct {
	db                  *gorm.DB
	subscriptionService *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(db *gorm.DB, subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		db:                  db,
		subscriptionService: subscriptionService,
	}
}

// ListMySubscriptions returns the current user's subscriptions
func (h *SubscriptionHandler) ListMySubscriptions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	subscriptions, err := h.subscriptionService.ListForUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch subscriptions")
	}

	return response.Success(c, subscriptions)
}

func isAllowedReceiptType(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".pdf":
		return true
	}
	return false
}

// RequestByReceipt starts or refreshes a pending subscription by uploading a
// payment receipt. An admin reviews it and approves or rejects. Re-uploading
// replaces the previous receipt on the same pending subscription.
func (h *SubscriptionHandler) RequestByReceipt(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return response.BadRequest(c, "Receipt file is required")
	}
	if fileHeader.Size > MaxReceiptUploadSize {
		return response.BadRequest(c, "Receipt file exceeds the maximum allowed size")
	}
	if !isAllowedReceiptType(fileHeader.Filename) {
		return response.BadRequest(c, "Receipt must be an image or a PDF")
	}

	subscription, err := h.subscriptionService.RequestByReceipt(c.Context(), userID, uint(courseID), fileHeader)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound, services.ErrCourseInactive:
			return response.NotFound(c, "Course not found")
		case services.ErrAlreadySubscribed:
			return response.Conflict(c, "You already have an active subscription to this course")
		case services.ErrStorageDisabled:
			return response.InternalServerError(c, "Receipt uploads are not configured")
		default:
			return response.InternalServerError(c, "Failed to submit subscription request")
		}
	}

	return response.Created(c, subscription)
}

// RedeemPasswordRequest represents a course password redemption request
type RedeemPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// RequestByPassword redeems a one-time course password. A valid password
// activates the subscription immediately, no admin involved.
func (h *SubscriptionHandler) RequestByPassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req RedeemPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	subscription, err := h.subscriptionService.RequestByPassword(c.Context(), userID, uint(courseID), req.Password)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound, services.ErrCourseInactive:
			return response.NotFound(c, "Course not found")
		case services.ErrAlreadySubscribed:
			return response.Conflict(c, "You already have an active subscription to this course")
		case services.ErrInvalidOrExpiredPassword:
			return response.BadRequest(c, "Invalid or expired password")
		default:
			return response.InternalServerError(c, "Failed to redeem password")
		}
	}

	return response.Created(c, subscription)
}
