// Package upload stores question reference material (images, documents)
// on local disk and serves it back under /uploads.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileInfo struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type Storage struct {
	dir     string
	baseURL string
}

func NewStorage(dir, baseURL string) (*Storage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *Storage) Dir() string { return s.dir }

// Save writes the stream under a fresh uuid-based name, keeping the
// original extension so the frontend can infer the content type.
func (s *Storage) Save(originalName string, r io.Reader) (*FileInfo, error) {
	ext := filepath.Ext(originalName)
	name := uuid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("write upload file: %w", err)
	}

	return &FileInfo{
		URL:      s.baseURL + "/uploads/" + name,
		Filename: originalName,
		Size:     size,
	}, nil
}
