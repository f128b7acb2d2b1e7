package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"pairchat/internal/pkg/logx"
)

const metaSuffix = ".meta.json"

// Disk stores blobs as files in a directory, with metadata in a JSON sidecar per blob.
type Disk struct {
	dir string
}

// NewDisk returns a Disk store rooted at dir, creating the directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("disk blob store requires a directory")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}

	return &Disk{dir: dir}, nil
}

// Put writes the blob through a temp file so readers never observe partial content.
func (d *Disk) Put(_ context.Context, r io.Reader, obj Object) error {
	if err := checkKey(obj.Key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", obj.Key, err)
	}
	obj.Size = n

	meta, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", obj.Key, err)
	}
	if err := os.WriteFile(d.metaPath(obj.Key), meta, 0o644); err != nil {
		return fmt.Errorf("write metadata for %s: %w", obj.Key, err)
	}

	if err := os.Rename(tmp.Name(), d.path(obj.Key)); err != nil {
		os.Remove(d.metaPath(obj.Key))
		return fmt.Errorf("commit %s: %w", obj.Key, err)
	}

	return nil
}

// Open returns the blob file and its stored metadata.
func (d *Disk) Open(_ context.Context, key string) (io.ReadCloser, Object, error) {
	if err := checkKey(key); err != nil {
		return nil, Object{}, err
	}

	f, err := os.Open(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("open %s: %w", key, err)
	}

	obj := Object{Key: key}
	raw, err := os.ReadFile(d.metaPath(key))
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &obj); err != nil {
			logx.Warn("Ignoring unreadable blob metadata", "file_id", key, "error", err.Error())
			obj = Object{Key: key}
		}
	case !errors.Is(err, fs.ErrNotExist):
		logx.Warn("Failed to read blob metadata", "file_id", key, "error", err.Error())
	}
	obj.Key = key
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	if info, err := f.Stat(); err == nil {
		obj.Size = info.Size()
	}

	return f, obj, nil
}

// Delete removes the blob and its metadata sidecar.
func (d *Disk) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if err := os.Remove(d.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}

	if err := os.Remove(d.metaPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete metadata for %s: %w", key, err)
	}

	return nil
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key)
}

func (d *Disk) metaPath(key string) string {
	return filepath.Join(d.dir, key+metaSuffix)
}
