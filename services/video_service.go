package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services/storage"
	"github.com/vidcourse/api/utils/cache"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoNotPlayable = errors.New("video is not ready for playback")
)

// VideoService handles video asset management and playback URL resolution
type VideoService struct {
	db            *gorm.DB
	storageClient *storage.Client
	urlCache      *cache.RedisCache
	enableStorage bool
}

// NewVideoService creates a new video service. urlCache may be nil; presigned
// URLs are then generated on every request.
func NewVideoService(db *gorm.DB, urlCache *cache.RedisCache) *VideoService {
	service := &VideoService{
		db:       db,
		urlCache: urlCache,
	}

	storageClient, err := storage.NewClientFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to initialize storage client: %v. Video uploads will be disabled.", err)
	} else {
		service.storageClient = storageClient
		service.enableStorage = true
	}

	return service
}

// ValidateVideoFileType checks whether the uploaded file looks like a video
func ValidateVideoFileType(filename string) (bool, string) {
	allowedExtensions := map[string]bool{
		".mp4":  true,
		".webm": true,
		".mov":  true,
		".mkv":  true,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return false, fmt.Sprintf("File type %s is not supported", ext)
	}
	return true, ""
}

// UploadVideoRequest represents a request to upload a video file
type UploadVideoRequest struct {
	Title       string
	Description string
	UserID      uint
	FileHeader  *multipart.FileHeader
}

// Upload stores the file in object storage and creates the video row in
// status=processing. A later MarkReady call makes it visible to students.
func (s *VideoService) Upload(ctx context.Context, req UploadVideoRequest) (*model.Video, error) {
	if !s.enableStorage {
		return nil, ErrStorageDisabled
	}

	if valid, errMsg := ValidateVideoFileType(req.FileHeader.Filename); !valid {
		return nil, errors.New(errMsg)
	}

	key := storage.VideoKey(req.FileHeader.Filename)
	if err := s.storageClient.UploadMultipart(ctx, key, req.FileHeader); err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	video := model.Video{
		Title:            req.Title,
		Description:      req.Description,
		VideoType:        model.VideoTypeFile,
		FileKey:          key,
		Status:           model.VideoStatusProcessing,
		FileSize:         req.FileHeader.Size,
		UploadedByUserID: req.UserID,
	}

	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		// Roll back the orphaned upload
		if delErr := s.storageClient.DeleteFile(ctx, key); delErr != nil {
			log.Printf("Warning: failed to delete orphaned video object %s: %v", key, delErr)
		}
		return nil, err
	}

	return &video, nil
}

// CreateExternal creates a video that points at an external URL. No
// reachability or content-type validation is performed.
func (s *VideoService) CreateExternal(ctx context.Context, title, description, externalURL string, userID uint) (*model.Video, error) {
	video := model.Video{
		Title:            title,
		Description:      description,
		VideoType:        model.VideoTypeURL,
		ExternalURL:      externalURL,
		Status:           model.VideoStatusReady,
		UploadedByUserID: userID,
	}

	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// MarkReady flips a processing video to ready, optionally recording its
// duration. Stands in for the upstream post-upload processing callback; no
// transcoding is performed.
func (s *VideoService) MarkReady(ctx context.Context, videoID uint, durationSeconds int) (*model.Video, error) {
	var video model.Video
	if err := s.db.WithContext(ctx).First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{"status": model.VideoStatusReady}
	if durationSeconds > 0 {
		updates["duration_seconds"] = durationSeconds
	}

	if err := s.db.WithContext(ctx).Model(&video).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// Disable hides a video from students without deleting it
func (s *VideoService) Disable(ctx context.Context, videoID uint) (*model.Video, error) {
	var video model.Video
	if err := s.db.WithContext(ctx).First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&video).Update("status", model.VideoStatusDisabled).Error; err != nil {
		return nil, err
	}
	s.invalidatePlaybackURL(ctx, video.ID)
	return &video, nil
}

// Delete removes a video row and, for uploaded files, its storage object
func (s *VideoService) Delete(ctx context.Context, videoID uint) error {
	var video model.Video
	if err := s.db.WithContext(ctx).First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&video).Error; err != nil {
		return err
	}

	if video.VideoType == model.VideoTypeFile && video.FileKey != "" && s.enableStorage {
		if delErr := s.storageClient.DeleteFile(ctx, video.FileKey); delErr != nil {
			log.Printf("Warning: failed to delete video object %s: %v", video.FileKey, delErr)
		}
	}
	s.invalidatePlaybackURL(ctx, video.ID)
	return nil
}

// PlaybackURL resolves a video into something a player can consume: a
// 1-hour presigned URL for uploaded files, or the stored external URL
// unchanged. Presigned URLs are cached for slightly less than their
// lifetime so a cached link always has usable time left.
func (s *VideoService) PlaybackURL(ctx context.Context, video *model.Video) (string, error) {
	if !video.IsPlayable() {
		return "", ErrVideoNotPlayable
	}

	if video.VideoType == model.VideoTypeURL {
		return video.ExternalURL, nil
	}

	if !s.enableStorage {
		return "", ErrStorageDisabled
	}

	cacheKey := fmt.Sprintf("video_url:%d", video.ID)
	if s.urlCache != nil {
		if url, err := s.urlCache.Get(ctx, cacheKey); err == nil && url != "" {
			return url, nil
		}
	}

	url, err := s.storageClient.GetPresignedURL(video.FileKey, storage.VideoURLExpiry)
	if err != nil {
		return "", err
	}

	if s.urlCache != nil {
		if cacheErr := s.urlCache.Set(ctx, cacheKey, url, storage.VideoURLExpiry-5*time.Minute); cacheErr != nil {
			log.Printf("Warning: failed to cache playback URL for video %d: %v", video.ID, cacheErr)
		}
	}

	return url, nil
}

func (s *VideoService) invalidatePlaybackURL(ctx context.Context, videoID uint) {
	if s.urlCache == nil {
		return
	}
	s.urlCache.Delete(ctx, fmt.Sprintf("video_url:%d", videoID))
}

// CoursePlaylist returns the ordered playlist for a course. When
// studentView is set, only ready videos are included; processing and
// disabled videos are never shown to students.
func (s *VideoService) CoursePlaylist(ctx context.Context, courseID uint, studentView bool) ([]model.CourseVideo, error) {
	query := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC")

	if studentView {
		query = query.Preload("Video", "status = ?", model.VideoStatusReady)
	} else {
		query = query.Preload("Video")
	}

	var entries []model.CourseVideo
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	if studentView {
		// Preload drops non-matching videos but keeps the join row; filter
		// those out so students never see a placeholder entry
		entries = FilterPlayable(entries)
	}

	return entries, nil
}

// FilterPlayable returns only the playlist entries whose video a student may
// see. Pure helper shared by CoursePlaylist and its tests.
func FilterPlayable(entries []model.CourseVideo) []model.CourseVideo {
	filtered := make([]model.CourseVideo, 0, len(entries))
	for _, e := range entries {
		if e.Video.IsPlayable() {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
