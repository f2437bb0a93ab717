package stores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/code-100-precent/LingMeme/pkg/utils"
)

// S3Store represents Amazon S3 storage
type S3Store struct {
	Region          string `env:"S3_REGION"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"S3_SECRET_ACCESS_KEY"`
	BucketName      string `env:"S3_BUCKET"`
	Endpoint        string `env:"S3_ENDPOINT"` // Custom endpoint for S3-compatible services
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE"`
	Domain          string `env:"S3_DOMAIN"` // Custom domain for public access

	once   sync.Once
	cli    *s3.Client
	cliErr error
}

// NewS3Store creates a new S3 storage instance
func NewS3Store() Store {
	pathStyle := strings.ToLower(utils.GetEnv("S3_USE_PATH_STYLE"))
	return &S3Store{
		Region:          utils.GetEnv("S3_REGION"),
		AccessKeyID:     utils.GetEnv("S3_ACCESS_KEY_ID"),
		AccessKeySecret: utils.GetEnv("S3_SECRET_ACCESS_KEY"),
		BucketName:      utils.GetEnv("S3_BUCKET"),
		Endpoint:        utils.GetEnv("S3_ENDPOINT"),
		UsePathStyle:    pathStyle == "true" || pathStyle == "1",
		Domain:          utils.GetEnv("S3_DOMAIN"),
	}
}

// client builds the S3 client once
func (s *S3Store) client(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(s.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.AccessKeySecret, "")),
		)
		if err != nil {
			s.cliErr = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		var options []func(*s3.Options)
		if s.Endpoint != "" {
			options = append(options, func(o *s3.Options) {
				o.BaseEndpoint = aws.String(s.Endpoint)
				o.UsePathStyle = s.UsePathStyle
			})
		}
		s.cli = s3.NewFromConfig(cfg, options...)
	})
	return s.cli, s.cliErr
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}

func (s *S3Store) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, 0, err
	}
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, aws.ToInt64(result.ContentLength), nil
}

// Write uploads through the s3 upload manager, which switches to multipart for large bodies
func (s *S3Store) Write(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err = manager.NewUploader(client).Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	client, err := s.client(ctx)
	if err != nil {
		return false, err
	}
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// PublicURL prefers Domain, then a custom endpoint, then the regional S3 host
func (s *S3Store) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.Domain != "" {
		domain := strings.TrimSuffix(s.Domain, "/")
		if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
			domain = "https://" + domain
		}
		return fmt.Sprintf("%s/%s", domain, key)
	}
	if s.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.Endpoint, "/")
		if s.UsePathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, s.BucketName, key)
		}
		return fmt.Sprintf("%s/%s", endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.BucketName, s.Region, key)
}
