/*
Package storage provides the blob store holding uploaded attachments.

Two implementations exist behind BlobStore: an S3-compatible bucket and a local directory.
Which one is used is decided once at startup from configuration.
*/
package storage

import (
	"context"
	"errors"
	"io"

	"pairchat/internal/pkg/randx"
)

// ErrNotFound is returned when no object exists for a key.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey is returned for keys that were not produced by randx.FileKey.
var ErrInvalidKey = errors.New("invalid blob key")

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// BlobStore stores attachment bytes under opaque keys.
type BlobStore interface {
	// Put writes the content of r under obj.Key.
	Put(ctx context.Context, r io.Reader, obj Object) error

	// Open returns a reader for the blob and its metadata. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)

	// Delete removes the blob. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}

// ServiceConfig holds the settings used to pick and build a BlobStore.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// LocalDir is used when the S3 settings are empty.
	LocalDir string
}

func (c ServiceConfig) s3Configured() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// NewBlobStore returns the S3 store when configured, otherwise a disk store rooted at LocalDir.
func NewBlobStore(ctx context.Context, cfg ServiceConfig) (BlobStore, error) {
	if cfg.s3Configured() {
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	disk, err := NewDisk(cfg.LocalDir)
	if err != nil {
		return nil, err
	}
	return disk, nil
}

func checkKey(key string) error {
	if !randx.IsValidFileKey(key) {
		return ErrInvalidKey
	}
	return nil
}
