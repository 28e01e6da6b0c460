// Package publish uploads rendered snapshots to an S3-compatible bucket.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/joho/godotenv"

	"pbr-viewer/config"
)

// ErrNoBucket is returned by NewUploader when publishing is disabled.
var ErrNoBucket = errors.New("publish: no bucket configured")

// Credentials are read from the environment, optionally seeded from a
// .env file.
const (
	EnvAccessKey = "S3_ACCESS_KEY"
	EnvSecretKey = "S3_SECRET_KEY"
	EnvEndpoint  = "S3_ENDPOINT"
	EnvRegion    = "S3_REGION"
)

// putter is the part of the S3 client the uploader needs.
type putter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Uploader writes PNG images under a key prefix in one bucket.
type Uploader struct {
	client putter
	bucket string
	prefix string
	log    *slog.Logger
}

// LoadEnv loads a .env file if one exists. A missing file is not an error.
func LoadEnv(file string) error {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// NewUploader creates an S3 session from cfg and the S3_* environment
// variables. Static credentials are used when both keys are set; otherwise
// the SDK's default chain applies.
func NewUploader(cfg config.PublishConfig, logger *slog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	if logger == nil {
		logger = slog.Default()
	}

	awsConfig := &aws.Config{
		Region: aws.String(getEnv(EnvRegion, cfg.Region)),
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		awsConfig.Endpoint = aws.String(endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if key, secret := os.Getenv(EnvAccessKey), os.Getenv(EnvSecretKey); key != "" && secret != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(key, secret, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create S3 session: %w", err)
	}
	return newUploader(s3.New(sess), cfg, logger), nil
}

func newUploader(client putter, cfg config.PublishConfig, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    logger,
	}
}

// Key joins the configured prefix and name.
func (u *Uploader) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// Upload stores png under Key(name) and returns the full key.
func (u *Uploader) Upload(ctx context.Context, name string, png []byte) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("upload %s: empty image", name)
	}
	key := u.Key(name)
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(png),
		ContentLength: aws.Int64(int64(len(png))),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", u.bucket, key, err)
	}
	u.log.Info("snapshot published", "bucket", u.bucket, "key", key, "bytes", len(png))
	return key, nil
}
