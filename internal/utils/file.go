package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsAllowedFileType(filename string, allowedTypes []string) bool {
	ext := strings.TrimPrefix(GetFileExtension(filename), ".")

	for _, allowedType := range allowedTypes {
		if ext == allowedType {
			return true
		}
	}

	return false
}

func IsImageFile(filename string) bool {
	return IsAllowedFileType(filename, AllowedImageTypes)
}

// GenerateObjectKey builds a storage key of the form
// <prefix>/<yyyy>/<mm>/<uuid><ext>.
func GenerateObjectKey(prefix, originalFilename string) string {
	now := time.Now().UTC()
	name := uuid.NewString() + GetFileExtension(originalFilename)
	return path.Join(prefix, now.Format("2006"), now.Format("01"), name)
}

func GetFileSize(file multipart.File) (int64, error) {
	currentPos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	_, err = file.Seek(currentPos, io.SeekStart)
	if err != nil {
		return 0, err
	}

	return size, nil
}

func ValidateFileSize(file multipart.File, maxSize int64) error {
	size, err := GetFileSize(file)
	if err != nil {
		return err
	}

	if size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	return nil
}

func GetContentType(filename string) string {
	contentTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	}

	if contentType, exists := contentTypes[GetFileExtension(filename)]; exists {
		return contentType
	}

	return "application/octet-stream"
}
