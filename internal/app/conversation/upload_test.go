package conversation

import (
	"errors"
	"strings"
	"testing"

	"pairchat/internal/app/message"
)

func TestUploadCompletes(t *testing.T) {
	u := NewUploads()

	pending := u.Begin("cat.png")
	if pending.Status != UploadPending || !strings.HasPrefix(pending.ID, "tmp-") {
		t.Fatalf("pending = %+v", pending)
	}

	ref := message.Attachment{FileID: "srv.png", FileURL: "/api/files/srv.png", FileName: "cat.png"}
	done, err := u.Complete(pending.TempID, ref, message.KindImage)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != UploadUploaded || done.ID != "srv.png" || done.Ref.FileURL != ref.FileURL {
		t.Errorf("done = %+v", done)
	}

	if _, ok := u.Get(pending.TempID); ok {
		t.Error("temporary id should be replaced by the server id")
	}
	if got, ok := u.Get("srv.png"); !ok || got.TempID != pending.TempID {
		t.Errorf("Get(server id) = %+v, %v", got, ok)
	}

	if _, err := u.Complete("srv.png", ref, message.KindImage); !errors.Is(err, ErrUploadSettled) {
		t.Errorf("second Complete err = %v", err)
	}
}

func TestUploadFails(t *testing.T) {
	u := NewUploads()
	pending := u.Begin("big.zip")

	cause := errors.New("too large")
	failed, err := u.Fail(pending.TempID, cause)
	if err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if failed.Status != UploadFailed || !errors.Is(failed.Err, cause) {
		t.Errorf("failed = %+v", failed)
	}

	if _, err := u.Complete(pending.TempID, message.Attachment{FileID: "x"}, message.KindFile); !errors.Is(err, ErrUploadSettled) {
		t.Errorf("Complete after Fail err = %v", err)
	}

	u.Discard(pending.TempID)
	if _, err := u.Fail(pending.TempID, cause); !errors.Is(err, ErrUnknownUpload) {
		t.Errorf("Fail after Discard err = %v", err)
	}
}
