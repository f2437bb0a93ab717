package stores

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/utils"
)

const (
	KindLocal = "local" // Local file system storage
	KindMinio = "minio" // MinIO / S3 compatible storage
	KindS3    = "s3"    // Amazon S3
	KindOSS   = "oss"   // Alibaba Cloud OSS
	KindQiniu = "qiniu" // Qiniu Kodo
	KindCOS   = "cos"   // Tencent Cloud COS
)

var ErrInvalidPath = &utils.Error{Code: http.StatusBadRequest, Message: "invalid path"}

var ErrObjectNotFound = &utils.Error{Code: http.StatusNotFound, Message: "object not found"}

// Store is the common storage interface
type Store interface {
	// Read opens an object; a missing key wraps ErrObjectNotFound
	Read(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Write stores r under key. size may be -1 when unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL returns the public URL for a file
	PublicURL(key string) string
}

// DefaultKind reads STORAGE_KIND, falling back to local
func DefaultKind() string {
	kind := utils.GetEnv(constants.ENV_STORAGE_KIND)
	switch kind {
	case KindLocal, KindMinio, KindS3, KindOSS, KindQiniu, KindCOS:
		return kind
	default:
		return KindLocal
	}
}

// GetStore creates a storage instance by kind
func GetStore(kind string) (Store, error) {
	switch kind {
	case "", KindLocal:
		return NewLocalStore(), nil
	case KindMinio:
		return NewMinioStore(), nil
	case KindS3:
		return NewS3Store(), nil
	case KindOSS:
		return NewOSSStore(), nil
	case KindQiniu:
		return NewQiNiuStore(), nil
	case KindCOS:
		return NewCosStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}

// Default returns the store selected by STORAGE_KIND
func Default() Store {
	s, _ := GetStore(DefaultKind())
	return s
}
