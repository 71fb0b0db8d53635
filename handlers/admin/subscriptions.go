package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/response"
	"github.com/vidcourse/api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles admin management requests
type AdminHandler struct {
	db                  *gorm.DB
	validator           *validation.Validator
	subscriptionService *services.SubscriptionService
	passwordService     *services.PasswordService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, subscriptionService *services.SubscriptionService, passwordService *services.PasswordService) *AdminHandler {
	return &AdminHandler{
		db:                  db,
		validator:           validation.NewValidator(),
		subscriptionService: subscriptionService,
		passwordService:     passwordService,
	}
}

// ListSubscriptions returns all subscriptions with optional filtering by
// status, course, or user. Pending ones are the review queue.
func (h *AdminHandler) ListSubscriptions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.Subscription{}).
		Preload("User").Preload("Course")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count subscriptions")
	}

	var subscriptions []model.Subscription
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&subscriptions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subscriptions")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, subscriptions, pagination)
}

// CreateSubscriptionRequest represents a manual subscription grant
type CreateSubscriptionRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	CourseID uint `json:"course_id" validate:"required"`
	Months   int  `json:"months"` // 0 means the course's default duration
}

// CreateSubscription grants a subscription directly, for payments arranged
// outside the portal (e.g. over WhatsApp).
func (h *AdminHandler) CreateSubscription(c *fiber.Ctx) error {
	var req CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.First(&user, req.UserID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	subscription, err := h.subscriptionService.Create(c.Context(), req.UserID, req.CourseID, req.Months)
	if err != nil {
		switch err {
		case services.ErrCourseNotFound, services.ErrCourseInactive:
			return response.NotFound(c, "Course not found")
		case services.ErrAlreadySubscribed:
			return response.Conflict(c, "User already has an active subscription to this course")
		default:
			return response.InternalServerError(c, "Failed to create subscription")
		}
	}

	return response.Created(c, subscription)
}

// ApproveSubscription activates a pending subscription after receipt review
func (h *AdminHandler) ApproveSubscription(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	subscription, svcErr := h.subscriptionService.Approve(c.Context(), uint(subscriptionID))
	if svcErr != nil {
		if svcErr == services.ErrSubscriptionNotFound {
			return response.NotFound(c, "Subscription not found")
		}
		return response.InternalServerError(c, "Failed to approve subscription")
	}

	return response.Success(c, subscription)
}

// RejectSubscription removes a pending subscription and its receipt
func (h *AdminHandler) RejectSubscription(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	if err := h.subscriptionService.Reject(c.Context(), uint(subscriptionID)); err != nil {
		if err == services.ErrSubscriptionNotFound {
			return response.NotFound(c, "Subscription not found")
		}
		return response.InternalServerError(c, "Failed to reject subscription")
	}

	return response.SuccessWithMessage(c, "Subscription rejected", nil)
}

// RenewSubscriptionRequest represents a subscription renewal
type RenewSubscriptionRequest struct {
	Months int `json:"months"` // 0 means the course's default duration
}

// RenewSubscription extends a subscription. Renewals start from whichever is
// later: now, or the current end date.
func (h *AdminHandler) RenewSubscription(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	var req RenewSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		req.Months = 0
	}

	subscription, svcErr := h.subscriptionService.Renew(c.Context(), uint(subscriptionID), req.Months)
	if svcErr != nil {
		if svcErr == services.ErrSubscriptionNotFound {
			return response.NotFound(c, "Subscription not found")
		}
		return response.InternalServerError(c, "Failed to renew subscription")
	}

	return response.Success(c, subscription)
}

// GetReceiptURL returns a short-lived presigned URL for viewing the payment
// receipt attached to a pending subscription.
func (h *AdminHandler) GetReceiptURL(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subscription ID")
	}

	var subscription model.Subscription
	if err := h.db.First(&subscription, uint(subscriptionID)).Error; err != nil {
		return response.NotFound(c, "Subscription not found")
	}

	if subscription.PaymentProofKey == "" {
		return response.NotFound(c, "No receipt attached to this subscription")
	}

	url, err := h.subscriptionService.ReceiptViewURL(&subscription)
	if err != nil {
		if err == services.ErrStorageDisabled {
			return response.InternalServerError(c, "Receipt storage is not configured")
		}
		return response.InternalServerError(c, "Failed to generate receipt URL")
	}

	return response.Success(c, fiber.Map{
		"url": url,
	})
}
