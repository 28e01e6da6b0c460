package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/config"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(config.PublishConfig{Region: "us-east-1"}, nil)
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestNewUploaderFromEnv(t *testing.T) {
	t.Setenv(EnvAccessKey, "key")
	t.Setenv(EnvSecretKey, "secret")
	t.Setenv(EnvEndpoint, "http://127.0.0.1:9000")
	t.Setenv(EnvRegion, "eu-west-1")

	u, err := NewUploader(config.PublishConfig{Bucket: "renders", Prefix: "/pbr/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pbr/grid.png", u.Key("grid.png"))

	client := u.client.(*s3.S3)
	assert.Equal(t, "eu-west-1", aws.StringValue(client.Config.Region))
	assert.Equal(t, "http://127.0.0.1:9000", aws.StringValue(client.Config.Endpoint))
	assert.True(t, aws.BoolValue(client.Config.S3ForcePathStyle))
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	u := newUploader(fake, config.PublishConfig{Bucket: "renders", Prefix: "daily"}, discardLogger())

	key, err := u.Upload(context.Background(), "frame.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "daily/frame.png", key)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "renders", aws.StringValue(in.Bucket))
	assert.Equal(t, "daily/frame.png", aws.StringValue(in.Key))
	assert.Equal(t, "image/png", aws.StringValue(in.ContentType))
	assert.Equal(t, int64(4), aws.Int64Value(in.ContentLength))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, fake.bodies[0])
}

func TestUploadErrors(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	u := newUploader(fake, config.PublishConfig{Bucket: "renders"}, discardLogger())

	_, err := u.Upload(context.Background(), "frame.png", nil)
	assert.Error(t, err)

	_, err = u.Upload(context.Background(), "frame.png", []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://renders/frame.png")
	assert.Contains(t, err.Error(), "access denied")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))

	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("PBR_VIEWER_TEST_BUCKET=renders\n"), 0o644))
	t.Setenv("PBR_VIEWER_TEST_BUCKET", "")
	os.Unsetenv("PBR_VIEWER_TEST_BUCKET")

	require.NoError(t, LoadEnv(file))
	assert.Equal(t, "renders", os.Getenv("PBR_VIEWER_TEST_BUCKET"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
