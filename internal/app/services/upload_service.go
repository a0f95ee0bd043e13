package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/validation"
)

// MaxImageSize caps uploaded images
const MaxImageSize = 5 << 20

// UploadService stores images for companies and messages
type UploadService interface {
	UploadImage(file *multipart.FileHeader) (string, error)
}

type uploadServiceImpl struct {
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage filestorage.FileStorage, logger zerolog.Logger) UploadService {
	return &uploadServiceImpl{storage: storage, logger: logger}
}

// UploadImage validates and saves an image, returning its public URL
func (s *uploadServiceImpl) UploadImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is required", apperrors.ErrBadRequest)
	}
	if file.Size > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds %d MB", apperrors.ErrValidationFailed, MaxImageSize>>20)
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0]))
	if _, ok := validation.AllowedImageTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", apperrors.ErrValidationFailed, contentType)
	}

	url, err := s.storage.SaveFileWithPath(file, "images")
	if err != nil {
		s.logger.Error().Err(err).Str("filename", file.Filename).Msg("Failed to store image")
		return "", err
	}

	// the declared type comes from the client, so check the stored bytes too
	sniffed, err := sniffContentType(s.storage.GetFullPath(url))
	if err != nil || sniffed != contentType {
		if delErr := s.storage.DeleteFile(url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove rejected upload")
		}
		return "", fmt.Errorf("%w: file content is not a %s image", apperrors.ErrValidationFailed, contentType)
	}
	return url, nil
}

func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
