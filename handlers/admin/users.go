package admin

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/response"
)

// ListUsers returns all users with optional filtering. approved=false lists
// the signup review queue.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.User{})
	if approved := c.Query("approved"); approved != "" {
		query = query.Where("approved = ?", approved == "true")
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("email ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	var users []model.User
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, users, pagination)
}

// GetUser returns a single user with their subscriptions
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.Preload("Subscriptions").Preload("Subscriptions.Course").
		First(&user, uint(userID)).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, user)
}

// ApproveUser marks a user's profile as approved, letting them reach
// subscribed content.
func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, uint(userID)).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if user.Approved {
		return response.Success(c, user)
	}

	if err := h.db.Model(&user).Update("approved", true).Error; err != nil {
		return response.InternalServerError(c, "Failed to approve user")
	}

	go func() {
		services.NewNotificationService(h.db).Notify(context.Background(), user.ID,
			model.NotificationTypeSuccess, model.NotificationCategoryAccount,
			"Account approved",
			"Your account has been approved. You can now access your subscribed courses.",
			model.NotificationMetadata{})
	}()

	return response.Success(c, user)
}

// RevokeUserApproval withdraws profile approval, cutting off content access
// without touching the user's subscriptions.
func (h *AdminHandler) RevokeUserApproval(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, uint(userID)).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if user.IsAdmin() {
		return response.BadRequest(c, "Cannot revoke approval for an admin account")
	}

	if err := h.db.Model(&user).Update("approved", false).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, user)
}
