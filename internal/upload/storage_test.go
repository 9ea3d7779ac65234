package upload_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edulane/survey-backend/internal/upload"
)

func TestStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewStorage(dir, "http://localhost:8000/")
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	body := "reference material"
	info, err := store.Save("diagram.png", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if info.Filename != "diagram.png" {
		t.Errorf("filename = %q, want original name", info.Filename)
	}
	if info.Size != int64(len(body)) {
		t.Errorf("size = %d, want %d", info.Size, len(body))
	}
	if !strings.HasPrefix(info.URL, "http://localhost:8000/uploads/") {
		t.Errorf("url = %q, want base + /uploads/ prefix", info.URL)
	}
	if !strings.HasSuffix(info.URL, ".png") {
		t.Errorf("url = %q, want original extension kept", info.URL)
	}

	stored := filepath.Join(dir, filepath.Base(info.URL))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != body {
		t.Errorf("stored content = %q, want %q", data, body)
	}
}

func TestStorageUniqueNames(t *testing.T) {
	store, err := upload.NewStorage(t.TempDir(), "http://localhost:8000")
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	a, err := store.Save("same.pdf", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, err := store.Save("same.pdf", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if a.URL == b.URL {
		t.Error("two uploads with the same name must not collide")
	}
}
