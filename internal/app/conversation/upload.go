package conversation

import (
	"errors"
	"sync"

	"pairchat/internal/app/message"
	"pairchat/internal/pkg/randx"
)

// UploadStatus is the lifecycle stage of one attachment.
type UploadStatus string

const (
	UploadPending  UploadStatus = "pending"
	UploadUploaded UploadStatus = "uploaded"
	UploadFailed   UploadStatus = "failed"
)

var (
	// ErrUnknownUpload is returned for ids that are not tracked.
	ErrUnknownUpload = errors.New("unknown upload")

	// ErrUploadSettled is returned when an upload already left the pending state.
	ErrUploadSettled = errors.New("upload already settled")
)

// Upload tracks one attachment from selection to a usable reference.
type Upload struct {
	// ID is the temporary id while pending or failed, and the server file id once uploaded.
	ID       string
	TempID   string
	FileName string
	Status   UploadStatus
	Kind     message.Kind
	Ref      *message.Attachment
	Err      error
}

// Uploads is a set of attachment state machines: pending -> uploaded | failed.
type Uploads struct {
	mu    sync.Mutex
	items map[string]*Upload
}

func NewUploads() *Uploads {
	return &Uploads{items: make(map[string]*Upload)}
}

// Begin registers a pending upload under a fresh temporary id.
func (u *Uploads) Begin(fileName string) Upload {
	tmp, err := randx.Base62(12)
	if err != nil {
		tmp = randx.ConnectionID()
	}
	tmp = "tmp-" + tmp

	up := &Upload{ID: tmp, TempID: tmp, FileName: fileName, Status: UploadPending}

	u.mu.Lock()
	u.items[tmp] = up
	u.mu.Unlock()

	return *up
}

// Complete moves a pending upload to uploaded and re-keys it by the server file id.
func (u *Uploads) Complete(tempID string, ref message.Attachment, kind message.Kind) (Upload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	up, err := u.pendingLocked(tempID)
	if err != nil {
		return Upload{}, err
	}

	delete(u.items, tempID)
	up.Status = UploadUploaded
	up.Kind = kind
	up.Ref = &ref
	if ref.FileID != "" {
		up.ID = ref.FileID
	}
	u.items[up.ID] = up

	return *up, nil
}

// Fail marks a pending upload as failed. It stays under its temporary id.
func (u *Uploads) Fail(tempID string, cause error) (Upload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	up, err := u.pendingLocked(tempID)
	if err != nil {
		return Upload{}, err
	}

	up.Status = UploadFailed
	up.Err = cause
	return *up, nil
}

// Get returns the upload tracked under id.
func (u *Uploads) Get(id string) (Upload, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	up, ok := u.items[id]
	if !ok {
		return Upload{}, false
	}
	return *up, true
}

// Discard forgets an upload in any state.
func (u *Uploads) Discard(id string) {
	u.mu.Lock()
	delete(u.items, id)
	u.mu.Unlock()
}

func (u *Uploads) pendingLocked(tempID string) (*Upload, error) {
	up, ok := u.items[tempID]
	if !ok {
		return nil, ErrUnknownUpload
	}
	if up.Status != UploadPending {
		return nil, ErrUploadSettled
	}
	return up, nil
}
