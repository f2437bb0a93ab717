package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
)

// qiniuNoSuchEntry is the status Qiniu returns for a missing key
const qiniuNoSuchEntry = 612

// QiNiuStore keeps objects in a Qiniu Kodo bucket. Reads go through the bound
// domain, signed when the bucket is private.
type QiNiuStore struct {
	AccessKey  string `env:"QINIU_ACCESS_KEY"`
	SecretKey  string `env:"QINIU_SECRET_KEY"`
	BucketName string `env:"QINIU_BUCKET"`
	// Domain 绑定的访问域名，例如 https://static.example.com
	Domain  string `env:"QINIU_DOMAIN"`
	Private bool   `env:"QINIU_PRIVATE"`
	// URLExpiry 私有空间下载链接有效期 (default: 1h)
	URLExpiry time.Duration

	HTTPClient *http.Client
}

func NewQiNiuStore() Store {
	return &QiNiuStore{
		AccessKey:  utils.GetEnv("QINIU_ACCESS_KEY"),
		SecretKey:  utils.GetEnv("QINIU_SECRET_KEY"),
		BucketName: utils.GetEnv("QINIU_BUCKET"),
		Domain:     utils.GetEnv("QINIU_DOMAIN"),
		Private:    utils.GetBoolEnv("QINIU_PRIVATE"),
	}
}

func (q *QiNiuStore) mac() *qbox.Mac {
	return qbox.NewMac(q.AccessKey, q.SecretKey)
}

func (q *QiNiuStore) configured() error {
	if q.AccessKey == "" || q.SecretKey == "" || q.BucketName == "" {
		return fmt.Errorf("qiniu credentials or bucket are not configured")
	}
	return nil
}

// config 自动探测存储区域，探测失败时由 SDK 首次请求时再查询
func (q *QiNiuStore) config() storage.Config {
	cfg := storage.Config{UseHTTPS: strings.HasPrefix(strings.ToLower(q.Domain), "https://")}
	if region, err := storage.GetRegion(q.AccessKey, q.BucketName); err == nil && region != nil {
		cfg.Region = region
	}
	return cfg
}

func isQiniuNotFound(err error) bool {
	var ei *storage.ErrorInfo
	return errors.As(err, &ei) && ei.Code == qiniuNoSuchEntry
}

// Write uses form upload, buffering r to learn its length when size is unknown
func (q *QiNiuStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := q.configured(); err != nil {
		return err
	}
	if size < 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		r, size = bytes.NewReader(data), int64(len(data))
	}
	policy := storage.PutPolicy{Scope: q.BucketName + ":" + key, Expires: 3600}
	cfg := q.config()
	uploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}
	extra := storage.PutExtra{MimeType: contentType}
	if err := uploader.Put(ctx, &ret, policy.UploadToken(q.mac()), key, r, size, &extra); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (q *QiNiuStore) Exists(_ context.Context, key string) (bool, error) {
	if err := q.configured(); err != nil {
		return false, err
	}
	cfg := q.config()
	_, err := storage.NewBucketManager(q.mac(), &cfg).Stat(q.BucketName, key)
	if err == nil {
		return true, nil
	}
	if isQiniuNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object: %w", err)
}

func (q *QiNiuStore) Delete(_ context.Context, key string) error {
	if err := q.configured(); err != nil {
		return err
	}
	cfg := q.config()
	if err := storage.NewBucketManager(q.mac(), &cfg).Delete(q.BucketName, key); err != nil && !isQiniuNotFound(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (q *QiNiuStore) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	u := q.PublicURL(key)
	if u == "" {
		return nil, 0, fmt.Errorf("qiniu domain is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	cli := q.HTTPClient
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, 0, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, 0, &utils.Error{Code: http.StatusBadGateway, Message: fmt.Sprintf("qiniu read failed: %s", resp.Status)}
	}
	return resp.Body, resp.ContentLength, nil
}

// PublicURL returns a signed URL for private buckets and "" without a domain
func (q *QiNiuStore) PublicURL(key string) string {
	if q.Domain == "" {
		return ""
	}
	domain := strings.TrimSuffix(q.Domain, "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "http://" + domain
	}
	key = strings.TrimPrefix(key, "/")
	if !q.Private {
		return storage.MakePublicURLv2(domain, key)
	}
	expiry := q.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return storage.MakePrivateURL(q.mac(), domain, key, time.Now().Add(expiry).Unix())
}
