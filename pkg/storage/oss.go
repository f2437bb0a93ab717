package stores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/code-100-precent/LingMeme/pkg/utils"
)

// OSSStore keeps objects in an Alibaba Cloud OSS bucket
type OSSStore struct {
	Endpoint        string `env:"OSS_ENDPOINT"`
	AccessKeyID     string `env:"OSS_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"OSS_ACCESS_KEY_SECRET"`
	BucketName      string `env:"OSS_BUCKET"`
	Domain          string `env:"OSS_DOMAIN"` // 自定义访问域名
	UseHTTPS        bool   `env:"OSS_USE_HTTPS"`

	once      sync.Once
	bkt       *oss.Bucket
	bucketErr error
}

func NewOSSStore() Store {
	return &OSSStore{
		Endpoint:        utils.GetEnv("OSS_ENDPOINT"),
		AccessKeyID:     utils.GetEnv("OSS_ACCESS_KEY_ID"),
		AccessKeySecret: utils.GetEnv("OSS_ACCESS_KEY_SECRET"),
		BucketName:      utils.GetEnv("OSS_BUCKET"),
		Domain:          utils.GetEnv("OSS_DOMAIN"),
		UseHTTPS:        utils.GetBoolEnv("OSS_USE_HTTPS"),
	}
}

func (o *OSSStore) bucket() (*oss.Bucket, error) {
	o.once.Do(func() {
		if o.Endpoint == "" || o.BucketName == "" {
			o.bucketErr = fmt.Errorf("oss endpoint or bucket is not configured")
			return
		}
		cli, err := oss.New(o.Endpoint, o.AccessKeyID, o.AccessKeySecret)
		if err != nil {
			o.bucketErr = fmt.Errorf("failed to create OSS client: %w", err)
			return
		}
		o.bkt, o.bucketErr = cli.Bucket(o.BucketName)
	})
	return o.bkt, o.bucketErr
}

func isOSSNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusNotFound || se.Code == "NoSuchKey"
	}
	return false
}

func (o *OSSStore) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	b, err := o.bucket()
	if err != nil {
		return nil, 0, err
	}
	var resp http.Header
	body, err := b.GetObject(key, oss.WithContext(ctx), oss.GetResponseHeader(&resp))
	if err != nil {
		if isOSSNotFound(err) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}
	size := int64(-1)
	if resp != nil {
		if n, err := strconv.ParseInt(resp.Get("Content-Length"), 10, 64); err == nil {
			size = n
		}
	}
	return body, size, nil
}

func (o *OSSStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := o.bucket()
	if err != nil {
		return err
	}
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if size >= 0 {
		opts = append(opts, oss.ContentLength(size))
	}
	if err := b.PutObject(key, r, opts...); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (o *OSSStore) Delete(ctx context.Context, key string) error {
	b, err := o.bucket()
	if err != nil {
		return err
	}
	if err := b.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (o *OSSStore) Exists(ctx context.Context, key string) (bool, error) {
	b, err := o.bucket()
	if err != nil {
		return false, err
	}
	ok, err := b.IsObjectExist(key, oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return ok, nil
}

// PublicURL uses Domain when set, otherwise the virtual-hosted bucket endpoint
func (o *OSSStore) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	scheme := "http://"
	if o.UseHTTPS {
		scheme = "https://"
	}
	if o.Domain != "" {
		domain := strings.TrimSuffix(o.Domain, "/")
		if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
			domain = scheme + domain
		}
		return fmt.Sprintf("%s/%s", domain, key)
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(o.Endpoint, "https://"), "http://")
	return fmt.Sprintf("%s%s.%s/%s", scheme, o.BucketName, endpoint, key)
}
