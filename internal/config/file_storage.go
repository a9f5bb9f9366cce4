package config

import "ecowaste/pkg/storage"

type StorageConfig struct {
	Provider       string              `yaml:"provider"`
	MaxUploadSize  int64               `yaml:"max_upload_size"`
	MaxImageWidth  int                 `yaml:"max_image_width"`
	MaxImageHeight int                 `yaml:"max_image_height"`
	Local          *LocalStorageConfig `yaml:"local"`
	AWS            *AWSStorageConfig   `yaml:"aws"`
	GCP            *GCPStorageConfig   `yaml:"gcp"`
}

type LocalStorageConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

type AWSStorageConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	CDNDomain string `yaml:"cdn_domain"`
}

type GCPStorageConfig struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	CDNDomain       string `yaml:"cdn_domain"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Provider:       getEnv("STORAGE_PROVIDER", "local"),
		MaxUploadSize:  getEnvAsInt64("STORAGE_MAX_UPLOAD_SIZE", 5*1024*1024),
		MaxImageWidth:  getEnvAsInt("STORAGE_MAX_IMAGE_WIDTH", 1600),
		MaxImageHeight: getEnvAsInt("STORAGE_MAX_IMAGE_HEIGHT", 1600),
		Local: &LocalStorageConfig{
			BasePath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			BaseURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:5000/uploads"),
		},
		AWS: &AWSStorageConfig{
			Region:    getEnv("AWS_S3_REGION", "us-east-1"),
			Bucket:    getEnv("AWS_S3_BUCKET", ""),
			CDNDomain: getEnv("AWS_CLOUDFRONT_DOMAIN", ""),
		},
		GCP: &GCPStorageConfig{
			Bucket:          getEnv("GCP_STORAGE_BUCKET", ""),
			CredentialsFile: getEnv("GCP_CREDENTIALS_FILE", ""),
			CDNDomain:       getEnv("GCP_CDN_DOMAIN", ""),
		},
	}
}

func (s *StorageConfig) ToStorageConfig() *storage.Config {
	return &storage.Config{
		Provider:           s.Provider,
		LocalBasePath:      s.Local.BasePath,
		LocalBaseURL:       s.Local.BaseURL,
		AWSRegion:          s.AWS.Region,
		AWSBucket:          s.AWS.Bucket,
		AWSCDNDomain:       s.AWS.CDNDomain,
		GCPBucket:          s.GCP.Bucket,
		GCPCredentialsFile: s.GCP.CredentialsFile,
		GCPCDNDomain:       s.GCP.CDNDomain,
	}
}
