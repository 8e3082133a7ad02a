package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNoPhoto 要删除的文件不存在
var ErrNoPhoto = errors.New("photo file not found")

// Store persists user photo blobs and yields a storage key for each.
type Store interface {
	Save(file *multipart.FileHeader) (key string, err error)
	Remove(key string) error
	Path(key string) string
}

// DiskStore keeps photos on the local filesystem under a single
// directory, one file per photo, named by a fresh UUID.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the uploaded file and returns its storage key.
// key 只是文件名，不含目录，存进 User.PhotoPath
func (s *DiskStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported photo type: %s", ext)
	}

	key := uuid.NewString() + ext

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return key, nil
}

// Remove deletes a stored photo. Returns ErrNoPhoto if the file is gone.
func (s *DiskStore) Remove(key string) error {
	if key == "" {
		return ErrNoPhoto
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoPhoto
	}
	return err
}

// Path returns the on-disk path for a stored key.
func (s *DiskStore) Path(key string) string {
	return filepath.Join(s.dir, key)
}
