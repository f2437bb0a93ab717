package stores

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/tencentyun/cos-go-sdk-v5"
)

// CosStore keeps objects in a Tencent Cloud COS bucket
type CosStore struct {
	SecretID   string `env:"COS_SECRET_ID"`
	SecretKey  string `env:"COS_SECRET_KEY"`
	Region     string `env:"COS_REGION"`
	BucketName string `env:"COS_BUCKET_NAME"` // 形如 memes-1250000000
	Domain     string `env:"COS_DOMAIN"`

	once   sync.Once
	cli    *cos.Client
	cliErr error
}

func NewCosStore() Store {
	return &CosStore{
		SecretID:   utils.GetEnv("COS_SECRET_ID"),
		SecretKey:  utils.GetEnv("COS_SECRET_KEY"),
		Region:     utils.GetEnv("COS_REGION"),
		BucketName: utils.GetEnv("COS_BUCKET_NAME"),
		Domain:     utils.GetEnv("COS_DOMAIN"),
	}
}

func (c *CosStore) bucketURL() string {
	return fmt.Sprintf("https://%s.cos.%s.myqcloud.com", c.BucketName, c.Region)
}

func (c *CosStore) client() (*cos.Client, error) {
	c.once.Do(func() {
		if c.BucketName == "" || c.Region == "" {
			c.cliErr = fmt.Errorf("cos bucket or region is not configured")
			return
		}
		u, err := url.Parse(c.bucketURL())
		if err != nil {
			c.cliErr = fmt.Errorf("failed to parse COS URL: %w", err)
			return
		}
		c.cli = cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
			Transport: &cos.AuthorizationTransport{
				SecretID:  c.SecretID,
				SecretKey: c.SecretKey,
			},
		})
	})
	return c.cli, c.cliErr
}

func (c *CosStore) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	cli, err := c.client()
	if err != nil {
		return nil, 0, err
	}
	resp, err := cli.Object.Get(ctx, key, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *CosStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	cli, err := c.client()
	if err != nil {
		return err
	}
	hdr := &cos.ObjectPutHeaderOptions{ContentType: contentType}
	if size >= 0 {
		hdr.ContentLength = size
	}
	if _, err := cli.Object.Put(ctx, key, r, &cos.ObjectPutOptions{ObjectPutHeaderOptions: hdr}); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (c *CosStore) Delete(ctx context.Context, key string) error {
	cli, err := c.client()
	if err != nil {
		return err
	}
	if _, err := cli.Object.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (c *CosStore) Exists(ctx context.Context, key string) (bool, error) {
	cli, err := c.client()
	if err != nil {
		return false, err
	}
	ok, err := cli.Object.IsExist(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return ok, nil
}

func (c *CosStore) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if c.Domain != "" {
		domain := strings.TrimSuffix(c.Domain, "/")
		if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
			domain = "https://" + domain
		}
		return fmt.Sprintf("%s/%s", domain, key)
	}
	return fmt.Sprintf("%s/%s", c.bucketURL(), key)
}
