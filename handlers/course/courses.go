package course

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/middleware"
	"github.com/vidcourse/api/utils/response"
	"github.com/vidcourse/api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course catalog requests
type CourseHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	videoService *services.VideoService
	accessGate   *services.AccessGate
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, videoService *services.VideoService) *CourseHandler {
	return &CourseHandler{
		db:           db,
		validator:    validation.NewValidator(),
		videoService: videoService,
		accessGate:   services.NewAccessGate(db),
	}
}

// ListCourses returns the course catalog. Students only see active courses;
// admins see everything and can filter by is_active.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	user, _ := middleware.GetUser(c)
	query := h.db.Model(&model.Course{})

	if user == nil || !user.IsAdmin() {
		query = query.Where("is_active = ?", true)
	} else if isActive := c.Query("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.Course
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, courses, pagination)
}

// GetCourse returns a single course by ID
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	user, _ := middleware.GetUser(c)
	if !course.IsActive && (user == nil || !user.IsAdmin()) {
		return response.NotFound(c, "Course not found")
	}

	return response.Success(c, course)
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Title          string  `json:"title" validate:"required,min=2"`
	Description    string  `json:"description"`
	Price          float64 `json:"price" validate:"gte=0"`
	DurationMonths int     `json:"duration_months" validate:"gte=1"`
}

// CreateCourse creates a new course (admin only)
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if req.DurationMonths < 1 {
		req.DurationMonths = 1
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourseRequest represents a course update request
type UpdateCourseRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	DurationMonths *int     `json:"duration_months"`
	IsActive       *bool    `json:"is_active"`
}

// UpdateCourse updates a course (admin only)
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationMonths != nil && *req.DurationMonths >= 1 {
		updates["duration_months"] = *req.DurationMonths
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse soft-deletes a course (admin only). Existing subscriptions
// stay on the books; the access gate stops serving the course once it is
// gone from the catalog.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
