// FilePath: internal/repository/files/files.storage.go
package files

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultPermissions = 0755
	defaultDateFormat  = "20060102_150405"
)

// FileConfig holds configuration for profile photo storage
type FileConfig struct {
	BasePath    string
	MaxFileSize int64
	AllowedMime []string
}

// FileRepo stores user profile photos on the local filesystem, one
// directory per user.
type FileRepo struct {
	config FileConfig
}

// NewFileRepository creates a new file storage repository
func NewFileRepository(config FileConfig) (*FileRepo, error) {
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	return &FileRepo{config: config}, nil
}

// Store writes an uploaded photo and returns its relative path.
func (r *FileRepo) Store(ctx context.Context, ownerID int64, fileData *multipart.FileHeader) (string, error) {
	if fileData.Size > r.config.MaxFileSize {
		return "", errors.NewValidationError("file size exceeds maximum allowed size", nil)
	}

	mimeType := fileData.Header.Get("Content-Type")
	if !r.isAllowedMimeType(mimeType) {
		return "", errors.NewValidationError("unsupported file type", nil)
	}

	relPath := r.generateFilePath(ownerID, mimeType)
	dirPath := filepath.Join(r.config.BasePath, filepath.Dir(relPath))
	if err := createDirectoryIfNotExists(dirPath); err != nil {
		return "", err
	}

	src, err := fileData.Open()
	if err != nil {
		return "", errors.NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(r.config.BasePath, relPath))
	if err != nil {
		return "", errors.NewInternalError("failed to create destination file", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.NewInternalError("failed to copy file", err)
	}

	nuts.L.Infof("[FileRepo] Stored profile photo: %s", relPath)
	return relPath, nil
}

// Stream copies a stored photo to the writer.
func (r *FileRepo) Stream(ctx context.Context, path string, w io.Writer) error {
	f, err := os.Open(filepath.Join(r.config.BasePath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("file not found", err)
		}
		return errors.NewInternalError("failed to open file", err)
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	if err != nil {
		return errors.NewInternalError("failed to stream file", err)
	}

	return nil
}

func (r *FileRepo) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(r.config.BasePath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("file not found", err)
		}
		return errors.NewInternalError("failed to delete file", err)
	}
	return nil
}

func (r *FileRepo) generateFilePath(ownerID int64, mimeType string) string {
	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}

	filename := fmt.Sprintf("%s_profile%s", time.Now().Format(defaultDateFormat), ext)
	return filepath.Join(strconv.FormatInt(ownerID, 10), filename)
}

func (r *FileRepo) isAllowedMimeType(mimeType string) bool {
	for _, allowed := range r.config.AllowedMime {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
