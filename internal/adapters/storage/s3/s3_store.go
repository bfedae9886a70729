package s3

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/storage"
	"github.com/linkfolio/backend/internal/infra/config"
)

// MaxUploadSize caps profile images at 5 MiB.
const MaxUploadSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

type BlobStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func New(ctx context.Context, cfg *config.Config) (*BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, customErrors.WrapInternal(err, "load s3 config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // MinIO and friends
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.S3Endpoint, "/"), cfg.S3Bucket)
	}

	return &BlobStore{client: client, bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

// Upload rejects anything that is not a jpeg/png under the size cap, then
// writes the object and returns its public URL.
func (b *BlobStore) Upload(ctx context.Context, up storage.Upload) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(up.ContentType)]
	if !ok {
		return "", customErrors.NewInvalidArgument("only .png, .jpg and .jpeg formats are allowed")
	}
	if up.Size > MaxUploadSize {
		return "", customErrors.NewInvalidArgument("file exceeds the 5MB limit")
	}

	key := objectKey(ext)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          up.Body,
		ContentType:   aws.String(up.ContentType),
		ContentLength: aws.Int64(up.Size),
	})
	if err != nil {
		return "", customErrors.WrapInternal(err, "PutObject")
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(b.publicURL, "/"), key), nil
}

func objectKey(ext string) string {
	d := time.Now()
	name := uuid.NewString() + ext
	return path.Join("profile-images", fmt.Sprintf("%d/%02d", d.Year(), d.Month()), name)
}
