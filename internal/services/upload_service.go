package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"ecowaste/internal/utils"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/storage"
)

type UploadService interface {
	UploadWasteImage(ctx context.Context, file *multipart.FileHeader) (*UploadedImage, error)
	Delete(ctx context.Context, key string) error
}

type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type UploadConfig struct {
	MaxSize   int64
	MaxWidth  uint
	MaxHeight uint
}

type uploadService struct {
	storage storage.StorageProvider
	config  UploadConfig
	logger  *logger.Logger
}

func NewUploadService(provider storage.StorageProvider, config UploadConfig, logger *logger.Logger) UploadService {
	if config.MaxSize <= 0 {
		config.MaxSize = utils.MaxImageSize
	}
	if config.MaxWidth == 0 {
		config.MaxWidth = utils.MaxImageWidth
	}
	if config.MaxHeight == 0 {
		config.MaxHeight = utils.MaxImageHeight
	}

	return &uploadService{
		storage: provider,
		config:  config,
		logger:  logger,
	}
}

func (s *uploadService) UploadWasteImage(ctx context.Context, header *multipart.FileHeader) (*UploadedImage, error) {
	if !utils.IsImageFile(header.Filename) {
		return nil, utils.NewValidationError(map[string]string{"image": "Only image files are allowed"})
	}

	file, err := header.Open()
	if err != nil {
		return nil, utils.WrapAppError(utils.ErrInternal, utils.ErrMsgFileUploadFailed, err)
	}
	defer file.Close()

	if err := utils.ValidateFileSize(file, s.config.MaxSize); err != nil {
		return nil, utils.NewValidationError(map[string]string{"image": fmt.Sprintf("Image must be at most %d bytes", s.config.MaxSize)})
	}

	var (
		body io.Reader = file
		size           = header.Size
	)

	resized, err := utils.DownscaleImage(file, header.Filename, s.config.MaxWidth, s.config.MaxHeight)
	switch {
	case err != nil:
		s.logger.WithError(err).WithField("filename", header.Filename).Warn("Could not inspect image, storing original")
	case resized != nil:
		body = resized
		size = resized.Size()
	}

	if resized == nil {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, utils.WrapAppError(utils.ErrInternal, utils.ErrMsgFileUploadFailed, err)
		}
	}

	key := utils.GenerateObjectKey("waste", header.Filename)
	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       body,
		ContentType:  utils.GetContentType(header.Filename),
		Size:         size,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return nil, utils.WrapAppError(utils.ErrInternal, utils.ErrMsgFileUploadFailed, err)
	}

	return &UploadedImage{Key: resp.Key, URL: resp.URL}, nil
}

func (s *uploadService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.storage.Delete(ctx, key)
}
