package errs

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.InitTestLogger(io.Discard, zerolog.Disabled)
	os.Exit(m.Run())
}

func TestNewError(t *testing.T) {
	e := NewError(ErrUserAlreadyExists, errors.New("duplicate key"))
	if e.Code != ErrUserAlreadyExists || e.Status != http.StatusBadRequest || e.Message != "Username already exists" {
		t.Errorf("NewError = %+v", e)
	}

	// Each call returns an independent copy of the template.
	e.Message = "changed"
	if NewError(ErrUserAlreadyExists).Message != "Username already exists" {
		t.Error("template was mutated")
	}
}

func TestNewErrorUnknownCode(t *testing.T) {
	e := NewError(424242)
	if e.Code != ErrUnknown || e.Status != http.StatusInternalServerError {
		t.Errorf("NewError(unknown) = %+v", e)
	}
}

func TestEveryCodeHasStatus(t *testing.T) {
	for code, tmpl := range errorMap {
		if tmpl.Code != code || tmpl.Status == 0 || tmpl.Message == "" {
			t.Errorf("errorMap[%d] = %+v", code, tmpl)
		}
	}
}
