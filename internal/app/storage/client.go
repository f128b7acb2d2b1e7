package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

// metaFileName is the user metadata key carrying the original display filename.
const metaFileName = "filename"

// s3Client implements BlobStore against an S3-compatible endpoint.
type s3Client struct {
	bucket   string
	s3Client *s3.Client
	uploader *manager.Uploader
	logger   zerolog.Logger
}

// newS3Client initializes the S3 client using a custom configuration that supports S3-compatible endpoints.
func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client configuration: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{
		bucket:   cfg.S3BucketName,
		s3Client: client,
		uploader: manager.NewUploader(client),
		logger:   logx.Component("s3_blob_store").With().Str("bucket", cfg.S3BucketName).Logger(),
	}, nil
}

// Put streams r to the bucket with the multipart uploader.
func (c *s3Client) Put(ctx context.Context, r io.Reader, obj Object) error {
	if err := checkKey(obj.Key); err != nil {
		return err
	}

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(obj.Key),
		Body:        r,
		ContentType: aws.String(obj.ContentType),
		Metadata: map[string]string{
			metaFileName: url.QueryEscape(obj.Name),
		},
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", obj.Key).Msg("S3 upload failed")
		return fmt.Errorf("upload %s: %w", obj.Key, err)
	}

	return nil
}

// Open fetches the object body. Missing keys map to ErrNotFound.
func (c *s3Client) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	if err := checkKey(key); err != nil {
		return nil, Object{}, err
	}

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, Object{}, ErrNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("S3 get failed")
		return nil, Object{}, fmt.Errorf("get %s: %w", key, err)
	}

	obj := Object{Key: key, ContentType: aws.ToString(out.ContentType), Size: aws.ToInt64(out.ContentLength)}
	if name, ok := out.Metadata[metaFileName]; ok {
		if unescaped, err := url.QueryUnescape(name); err == nil {
			obj.Name = unescaped
		}
	}

	return out.Body, obj, nil
}

// Delete removes the object. S3 deletes are idempotent, so a HeadObject first distinguishes
// missing keys for callers that care.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isS3NotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("head %s: %w", key, err)
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("S3 delete failed")
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
