package course

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/services/storage"
	"github.com/vidcourse/api/utils/middleware"
	"github.com/vidcourse/api/utils/response"
	"gorm.io/gorm"
)

// PlaylistEntry is one row of a course playlist as returned to clients
type PlaylistEntry struct {
	Position        int               `json:"position"`
	VideoID         uint              `json:"video_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Type            model.VideoType   `json:"type"`
	Status          model.VideoStatus `json:"status,omitempty"`
	DurationSeconds int               `json:"duration_seconds"`
}

// GetPlaylist returns the ordered playlist for a course. Students need an
// active subscription and only see ready videos; admins see everything
// including processing and disabled entries.
func (h *CourseHandler) GetPlaylist(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	studentView := !user.IsAdmin()
	if studentView {
		allowed, err := h.accessGate.CanViewCourse(c.Context(), user, course.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check course access")
		}
		if !allowed {
			return response.Forbidden(c, "An active subscription is required to view this course")
		}
	}

	entries, err := h.videoService.CoursePlaylist(c.Context(), course.ID, studentView)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch playlist")
	}

	playlist := make([]PlaylistEntry, 0, len(entries))
	for _, entry := range entries {
		item := PlaylistEntry{
			Position:        entry.Position,
			VideoID:         entry.VideoID,
			Title:           entry.Video.Title,
			Description:     entry.Video.Description,
			Type:            entry.Video.VideoType,
			DurationSeconds: entry.Video.DurationSeconds,
		}
		if !studentView {
			item.Status = entry.Video.Status
		}
		playlist = append(playlist, item)
	}

	return response.Success(c, fiber.Map{
		"course_id": course.ID,
		"title":     course.Title,
		"videos":    playlist,
	})
}

// PlayVideo resolves a playable URL for a video in a course. For uploaded
// files this is a time-limited presigned URL; external videos return their
// URL as-is. The link is safe to hand to the player directly.
func (h *CourseHandler) PlayVideo(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}
	videoID, err := strconv.ParseUint(c.Params("video_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if !user.IsAdmin() {
		allowed, err := h.accessGate.CanViewCourse(c.Context(), user, uint(courseID))
		if err != nil {
			return response.InternalServerError(c, "Failed to check course access")
		}
		if !allowed {
			return response.Forbidden(c, "An active subscription is required to view this course")
		}
	}

	// The video has to actually be attached to this course.
	var entry model.CourseVideo
	if err := h.db.Preload("Video").
		Where("course_id = ? AND video_id = ?", uint(courseID), uint(videoID)).
		First(&entry).Error; err != nil {
		return response.NotFound(c, "Video not found in this course")
	}

	url, err := h.videoService.PlaybackURL(c.Context(), &entry.Video)
	if err != nil {
		switch err {
		case services.ErrVideoNotPlayable:
			return response.NotFound(c, "Video is not available")
		case services.ErrStorageDisabled:
			return response.InternalServerError(c, "Video storage is not configured")
		default:
			return response.InternalServerError(c, "Failed to resolve video URL")
		}
	}

	return response.Success(c, fiber.Map{
		"video_id":   entry.VideoID,
		"url":        url,
		"expires_in": int(storage.VideoURLExpiry.Seconds()),
	})
}

// AttachVideoRequest represents an attach-video-to-course request
type AttachVideoRequest struct {
	VideoID  uint `json:"video_id" validate:"required"`
	Position int  `json:"position"`
}

// AttachVideo adds a video to a course playlist (admin only)
func (h *CourseHandler) AttachVideo(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req AttachVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.VideoID == 0 {
		return response.BadRequest(c, "video_id is required")
	}

	var course model.Course
	if err := h.db.First(&course, uint(courseID)).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	var video model.Video
	if err := h.db.First(&video, req.VideoID).Error; err != nil {
		return response.NotFound(c, "Video not found")
	}

	var existing model.CourseVideo
	if err := h.db.Where("course_id = ? AND video_id = ?", course.ID, video.ID).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "Video is already in this course")
	}

	position := req.Position
	if position <= 0 {
		// Append at the end by default.
		var maxPosition int
		h.db.Model(&model.CourseVideo{}).
			Where("course_id = ?", course.ID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)
		position = maxPosition + 1
	}

	entry := model.CourseVideo{
		CourseID: course.ID,
		VideoID:  video.ID,
		Position: position,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		return response.InternalServerError(c, "Failed to add video to course")
	}

	return response.Created(c, entry)
}

// DetachVideo removes a video from a course playlist (admin only). The
// video itself is untouched and can stay attached to other courses.
func (h *CourseHandler) DetachVideo(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}
	videoID, err := strconv.ParseUint(c.Params("video_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	result := h.db.Where("course_id = ? AND video_id = ?", uint(courseID), uint(videoID)).
		Delete(&model.CourseVideo{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to remove video from course")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Video not found in this course")
	}

	return response.SuccessWithMessage(c, "Video removed from course", nil)
}

// ReorderPlaylistRequest represents a playlist reorder request
type ReorderPlaylistRequest struct {
	VideoIDs []uint `json:"video_ids" validate:"required,min=1"`
}

// ReorderPlaylist rewrites playlist positions from the given video order
// (admin only). Every video currently in the playlist must appear exactly
// once.
func (h *CourseHandler) ReorderPlaylist(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req ReorderPlaylistRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.VideoIDs) == 0 {
		return response.BadRequest(c, "video_ids is required")
	}

	var entries []model.CourseVideo
	if err := h.db.Where("course_id = ?", uint(courseID)).Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch playlist")
	}

	if len(entries) != len(req.VideoIDs) {
		return response.BadRequest(c, "video_ids must list every video in the playlist exactly once")
	}
	attached := make(map[uint]bool, len(entries))
	for _, entry := range entries {
		attached[entry.VideoID] = true
	}
	seen := make(map[uint]bool, len(req.VideoIDs))
	for _, id := range req.VideoIDs {
		if !attached[id] || seen[id] {
			return response.BadRequest(c, "video_ids must list every video in the playlist exactly once")
		}
		seen[id] = true
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.VideoIDs {
			if err := tx.Model(&model.CourseVideo{}).
				Where("course_id = ? AND video_id = ?", uint(courseID), id).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to reorder playlist")
	}

	return response.SuccessWithMessage(c, "Playlist reordered", nil)
}
