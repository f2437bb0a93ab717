package stores

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps objects in a MinIO (or other S3 compatible) bucket
type MinioStore struct {
	Endpoint        string `env:"MINIO_ENDPOINT"`
	AccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	BucketName      string `env:"MINIO_BUCKET"`
	Region          string `env:"MINIO_REGION"`
	UseSSL          bool   `env:"MINIO_USE_SSL"`
	Domain          string `env:"MINIO_DOMAIN"`

	once     sync.Once
	cli      *minio.Client
	cliErr   error
	bucketMu sync.Mutex
	bucketOK bool
}

func NewMinioStore() Store {
	return &MinioStore{
		Endpoint:        utils.GetEnv("MINIO_ENDPOINT"),
		AccessKeyID:     utils.GetEnv("MINIO_ACCESS_KEY_ID"),
		SecretAccessKey: utils.GetEnv("MINIO_SECRET_ACCESS_KEY"),
		BucketName:      utils.GetEnv("MINIO_BUCKET"),
		Region:          utils.GetEnv("MINIO_REGION"),
		UseSSL:          utils.GetBoolEnv("MINIO_USE_SSL"),
		Domain:          utils.GetEnv("MINIO_DOMAIN"),
	}
}

func (m *MinioStore) client() (*minio.Client, error) {
	m.once.Do(func() {
		if m.Endpoint == "" {
			m.cliErr = fmt.Errorf("minio endpoint is not configured")
			return
		}
		m.cli, m.cliErr = minio.New(m.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(m.AccessKeyID, m.SecretAccessKey, ""),
			Secure: m.UseSSL,
			Region: m.Region,
		})
	})
	return m.cli, m.cliErr
}

// ensureBucket creates the bucket on first write
func (m *MinioStore) ensureBucket(ctx context.Context, cli *minio.Client) error {
	m.bucketMu.Lock()
	defer m.bucketMu.Unlock()
	if m.bucketOK {
		return nil
	}
	exists, err := cli.BucketExists(ctx, m.BucketName)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.BucketName, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, m.BucketName, minio.MakeBucketOptions{Region: m.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", m.BucketName, err)
		}
	}
	m.bucketOK = true
	return nil
}

func isMinioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func (m *MinioStore) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	cli, err := m.client()
	if err != nil {
		return nil, 0, err
	}
	obj, err := cli.GetObject(ctx, m.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}
	// GetObject 是惰性的，Stat 才会真正请求
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isMinioNotFound(err) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to stat object: %w", err)
	}
	return obj, info.Size, nil
}

func (m *MinioStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	cli, err := m.client()
	if err != nil {
		return err
	}
	if err := m.ensureBucket(ctx, cli); err != nil {
		return err
	}
	_, err = cli.PutObject(ctx, m.BucketName, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	cli, err := m.client()
	if err != nil {
		return err
	}
	if err := cli.RemoveObject(ctx, m.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (m *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	cli, err := m.client()
	if err != nil {
		return false, err
	}
	if _, err = cli.StatObject(ctx, m.BucketName, key, minio.StatObjectOptions{}); err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// PublicURL uses Domain when set, otherwise the path-style endpoint URL
func (m *MinioStore) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if m.Domain != "" {
		domain := strings.TrimSuffix(m.Domain, "/")
		if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
			domain = "https://" + domain
		}
		return fmt.Sprintf("%s/%s", domain, key)
	}
	scheme := "http"
	if m.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimSuffix(m.Endpoint, "/"), m.BucketName, key)
}
