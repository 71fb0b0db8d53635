package storage

import (
	"strings"
	"testing"
)

func TestVideoKeyLayout(t *testing.T) {
	key := VideoKey("My Lecture 01.MP4")

	if !strings.HasPrefix(key, "videos/") {
		t.Errorf("expected key under videos/, got %s", key)
	}
	if !strings.HasSuffix(key, ".mp4") {
		t.Errorf("expected a lowercased extension, got %s", key)
	}
	if strings.Contains(key, " ") {
		t.Errorf("expected no spaces in key, got %s", key)
	}
}

func TestReceiptKeyIsScopedToUser(t *testing.T) {
	key := ReceiptKey(42, "payment.pdf")

	if !strings.HasPrefix(key, "receipts/42/") {
		t.Errorf("expected key under receipts/42/, got %s", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("expected the extension to survive, got %s", key)
	}
}

func TestGetContentType(t *testing.T) {
	cases := map[string]string{
		"lecture.mp4": "video/mp4",
		"intro.webm":  "video/webm",
		"receipt.pdf": "application/pdf",
		"receipt.jpg": "image/jpeg",
		"receipt.png": "image/png",
		"unknown.bin": "application/octet-stream",
	}

	for filename, want := range cases {
		if got := GetContentType(filename); got != want {
			t.Errorf("GetContentType(%s) = %s, want %s", filename, got, want)
		}
	}
}
