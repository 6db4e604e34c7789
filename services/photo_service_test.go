package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/website-f/gate/config"
)

func TestCleanBase64StripsDataURIPrefix(t *testing.T) {
	cases := map[string]string{
		"data:image/jpeg;base64,aGVsbG8=": "aGVsbG8=",
		"data:image/png;base64,aGVsbG8=":  "aGVsbG8=",
		"aGVsbG8=":                        "aGVsbG8=",
	}
	for input, want := range cases {
		if got := CleanBase64(input); got != want {
			t.Fatalf("CleanBase64(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSavePhotoRoundTrip(t *testing.T) {
	svc := NewPhotoService(&config.Config{UploadDir: t.TempDir()})

	raw := []byte("jpegdata")
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	path, err := svc.SavePhoto("990101015678", encoded)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "990101015678_") {
		t.Fatalf("file name must start with the identity, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Fatalf("saved bytes mismatch: %q", data)
	}

	// LoadBase64把照片还原成下发设备用的纯base64
	b64, err := svc.LoadBase64(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b64 != base64.StdEncoding.EncodeToString(raw) {
		t.Fatal("loaded base64 mismatch")
	}
}

func TestSavePhotoRejectsInvalidBase64(t *testing.T) {
	svc := NewPhotoService(&config.Config{UploadDir: t.TempDir()})
	if _, err := svc.SavePhoto("990101015678", "not-base64!!!"); err == nil {
		t.Fatal("invalid base64 must be rejected")
	}
}

func TestDeletePhotoMissingFileIsNotAnError(t *testing.T) {
	svc := NewPhotoService(&config.Config{UploadDir: t.TempDir()})
	if err := svc.DeletePhoto("does/not/exist.jpg"); err != nil {
		t.Fatalf("deleting a missing file must be a no-op, got %v", err)
	}
	if err := svc.DeletePhoto(""); err != nil {
		t.Fatalf("empty path must be a no-op, got %v", err)
	}
}
