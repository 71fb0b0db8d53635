package services

import (
	"testing"

	"github.com/vidcourse/api/model"
)

func TestValidateVideoFileType(t *testing.T) {
	valid := []string{"lecture.mp4", "intro.webm", "demo.MOV", "session.mkv"}
	for _, filename := range valid {
		if ok, errMsg := ValidateVideoFileType(filename); !ok {
			t.Errorf("expected %s to be accepted, got: %s", filename, errMsg)
		}
	}

	invalid := []string{"notes.pdf", "thumbnail.png", "lecture.avi", "video", "archive.mp4.zip"}
	for _, filename := range invalid {
		if ok, _ := ValidateVideoFileType(filename); ok {
			t.Errorf("expected %s to be rejected", filename)
		}
	}
}

func TestFilterPlayableDropsHiddenVideos(t *testing.T) {
	entries := []model.CourseVideo{
		{VideoID: 1, Position: 1, Video: model.Video{ID: 1, Status: model.VideoStatusReady}},
		{VideoID: 2, Position: 2, Video: model.Video{ID: 2, Status: model.VideoStatusProcessing}},
		{VideoID: 3, Position: 3, Video: model.Video{ID: 3, Status: model.VideoStatusDisabled}},
		{VideoID: 4, Position: 4, Video: model.Video{ID: 4, Status: model.VideoStatusReady}},
	}

	filtered := FilterPlayable(entries)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 playable videos, got %d", len(filtered))
	}
	if filtered[0].VideoID != 1 || filtered[1].VideoID != 4 {
		t.Errorf("expected videos 1 and 4 in order, got %d and %d", filtered[0].VideoID, filtered[1].VideoID)
	}
}

func TestFilterPlayableDropsUnloadedVideos(t *testing.T) {
	// A filtered preload leaves the association zero-valued; those rows must
	// not leak into a student playlist either.
	entries := []model.CourseVideo{
		{VideoID: 1, Position: 1, Video: model.Video{}},
		{VideoID: 2, Position: 2, Video: model.Video{ID: 2, Status: model.VideoStatusReady}},
	}

	filtered := FilterPlayable(entries)

	if len(filtered) != 1 || filtered[0].VideoID != 2 {
		t.Fatalf("expected only video 2 to survive, got %d entries", len(filtered))
	}
}

func TestFilterPlayableEmpty(t *testing.T) {
	if got := FilterPlayable(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %d entries", len(got))
	}
}
