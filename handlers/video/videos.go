package video

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

// MaxVideoUploadSize caps direct video uploads at 2 GB
const MaxVideoUploadSize = 2 * 1024 * 1024 * 1024

// VideoHandler handles admin video library requests
type VideoHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	videoService *services.VideoService
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(db *gorm.DB, videoService *services.VideoService) *VideoHandler {
	return &VideoHandler{
		db:           db,
		validator:    validation.NewValidator(),
		videoService: videoService,
	}
}

// ListVideos returns the video library with optional status filtering
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.Video{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count videos")
	}

	var videos []model.Video
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&videos).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch videos")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, videos, pagination)
}

// GetVideo returns a single video by ID
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	var video model.Video
	if err := h.db.First(&video, uint(videoID)).Error; err != nil {
		return response.NotFound(c, "Video not found")
	}

	return response.Success(c, video)
}

// UploadVideo accepts a multipart video upload. The new video starts in
// status=processing and has to be marked ready before students can see it.
func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Video file is required")
	}
	if fileHeader.Size > MaxVideoUploadSize {
		return response.BadRequest(c, "Video file exceeds the maximum allowed size")
	}

	title := c.FormValue("title")
	if title == "" {
		return response.BadRequest(c, "Title is required")
	}

	video, err := h.videoService.Upload(c.Context(), services.UploadVideoRequest{
		Title:       title,
		Description: c.FormValue("description"),
		UserID:      userID,
		FileHeader:  fileHeader,
	})
	if err != nil {
		if err == services.ErrStorageDisabled {
			return response.InternalServerError(c, "Video storage is not configured")
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, video)
}

// CreateExternalVideoRequest represents an external video creation request
type CreateExternalVideoRequest struct {
	Title       string `json:"title" validate:"required,min=2"`
	Description string `json:"description"`
	ExternalURL string `json:"external_url" validate:"required,url"`
}

// CreateExternalVideo registers a video hosted elsewhere. External videos
// skip processing and are ready immediately.
func (h *VideoHandler) CreateExternalVideo(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateExternalVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Title = validation.SanitizeString(req.Title)
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	video, err := h.videoService.CreateExternal(c.Context(), req.Title, req.Description, req.ExternalURL, userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to create video")
	}

	return response.Created(c, video)
}

// MarkReadyRequest represents a mark-ready request
type MarkReadyRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// MarkReady flips a video to status=ready
func (h *VideoHandler) MarkReady(c *fiber.Ctx) error {
	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	var req MarkReadyRequest
	if err := c.BodyParser(&req); err != nil {
		// Body is optional here
		req.DurationSeconds = 0
	}

	video, svcErr := h.videoService.MarkReady(c.Context(), uint(videoID), req.DurationSeconds)
	if svcErr != nil {
		if svcErr == services.ErrVideoNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to update video")
	}

	return response.Success(c, video)
}

// DisableVideo hides a video from students without deleting it
func (h *VideoHandler) DisableVideo(c *fiber.Ctx) error {
	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	video, svcErr := h.videoService.Disable(c.Context(), uint(videoID))
	if svcErr != nil {
		if svcErr == services.ErrVideoNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to disable video")
	}

	return response.Success(c, video)
}

// DeleteVideo removes a video and its stored file
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	if err := h.videoService.Delete(c.Context(), uint(videoID)); err != nil {
		if err == services.ErrVideoNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to delete video")
	}

	return response.SuccessWithMessage(c, "Video deleted successfully", nil)
}
