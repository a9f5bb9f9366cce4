package storage

import (
	"context"
	"fmt"
	"io"
)

type StorageProvider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
	FileExists(ctx context.Context, key string) (bool, error)
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag"`
	Location string `json:"location"`
}

const (
	ProviderLocal = "local"
	ProviderAWS   = "aws"
	ProviderGCP   = "gcp"
)

type Config struct {
	Provider string

	LocalBasePath string
	LocalBaseURL  string

	AWSRegion    string
	AWSBucket    string
	AWSCDNDomain string

	GCPBucket          string
	GCPCredentialsFile string
	GCPCDNDomain       string
}

// NewProvider builds the provider selected by config.Provider.
func NewProvider(ctx context.Context, config *Config) (StorageProvider, error) {
	switch config.Provider {
	case ProviderLocal, "":
		return NewLocalStorage(config.LocalBasePath, config.LocalBaseURL)
	case ProviderAWS:
		return NewAWSS3Storage(ctx, config.AWSRegion, config.AWSBucket, config.AWSCDNDomain)
	case ProviderGCP:
		return NewGCPStorage(ctx, config.GCPBucket, config.GCPCredentialsFile, config.GCPCDNDomain)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", config.Provider)
	}
}
