package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Provider stores resized image variants.
type Provider interface {
	// Put stores the content of r under name, replacing any existing object.
	Put(ctx context.Context, name string, r io.Reader) (Object, error)
	// Stat reports whether name exists and returns its description.
	Stat(ctx context.Context, name string) (Object, bool, error)
	// Open returns the content stored under name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Name() string
}

// Object describes a stored file.
type Object struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// Path is the absolute filesystem path, empty for remote storage.
	Path string `json:"path,omitempty"`
	Size int64  `json:"size"`
}

// Config selects and configures the storage provider.
type Config struct {
	Type     string    `mapstructure:"type" json:"type" yaml:"type" default:"local" validate:"oneof=local oss"`
	BasePath string    `mapstructure:"base-path" json:"basePath" yaml:"base-path" default:"assets/images"`
	BaseURL  string    `mapstructure:"base-url" json:"baseUrl" yaml:"base-url" default:"/assets/images"`
	OSS      OSSConfig `mapstructure:"oss" json:"oss" yaml:"oss"`
}

// OSSConfig holds the Aliyun OSS credentials.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access-key-id" json:"accessKeyId" yaml:"access-key-id"`
	AccessKeySecret string `mapstructure:"access-key-secret" json:"-" yaml:"access-key-secret"`
	Bucket          string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	Domain          string `mapstructure:"domain" json:"domain" yaml:"domain"`
	Prefix          string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
}

// NewProviderFromConfig builds the provider named by cfg.Type.
func NewProviderFromConfig(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "local":
		if cfg.BasePath == "" {
			return nil, fmt.Errorf("local provider requires base-path")
		}
		return NewLocalProvider(cfg.BasePath, cfg.BaseURL)

	case "oss":
		o := cfg.OSS
		if o.Endpoint == "" || o.Bucket == "" {
			return nil, fmt.Errorf("oss provider requires endpoint and bucket")
		}
		return NewOSSProvider(o.Endpoint, o.AccessKeyID, o.AccessKeySecret, o.Bucket, o.Domain, o.Prefix)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}

// cleanName turns name into a slash separated key without leading slash.
func cleanName(name string) (string, error) {
	key := strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	if key == "" {
		return "", fmt.Errorf("empty object name")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", fmt.Errorf("object name %q escapes the storage root", name)
		}
	}
	return key, nil
}
