// Package storage puts uploaded artifacts somewhere public and returns their URL.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore stores bytes and returns a public URL for them.
type ObjectStore interface {
	Store(ctx context.Context, data []byte, nameHint string) (string, error)
}

type Config struct {
	Backend string

	Origin     string
	UploadDir  string
	PublicPath string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string

	HTTPURL   string
	HTTPToken string
}

func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.Origin+cfg.PublicPath), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	case "http":
		if cfg.HTTPURL == "" {
			return nil, fmt.Errorf("STORAGE_HTTP_URL is required for the http backend")
		}
		return NewHTTPStore(cfg.HTTPURL, cfg.HTTPToken), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Backend)
	}
}

// objectName turns a client file name into a collision-free key, keeping the extension.
func objectName(folder, nameHint string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(nameHint)))
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
