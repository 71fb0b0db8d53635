package notification

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/middleware"
	"github.com/vidcourse/api/utils/response"
	"gorm.io/gorm"
)

// NotificationHandler handles user notification requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationService: services.NewNotificationService(db),
	}
}

// ListNotifications returns the current user's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationService.ListForUser(c.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, notifications, pagination)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	count, err := h.notificationService.UnreadCount(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, fiber.Map{
		"unread_count": count,
	})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkRead(c.Context(), userID, uint(notificationID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to update notification")
	}

	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllRead marks every notification for the current user as read
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.notificationService.MarkAllRead(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to update notifications")
	}

	return response.SuccessWithMessage(c, "All notifications marked as read", nil)
}
