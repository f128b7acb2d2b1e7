package handler

import (
	"net/http"
	"testing"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/errs"
)

type authData struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.postJSON(t, "/api/register", map[string]string{"username": "alice", "password": "pw"})
	if res.StatusCode != http.StatusCreated || body.Code != 0 {
		t.Fatalf("first register: status=%d body=%+v", res.StatusCode, body)
	}
	data := decodeData[authData](t, body)
	if data.Token == "" || data.User.Username != "alice" || data.User.Avatar != "A" {
		t.Errorf("register data = %+v", data)
	}

	res, body = env.postJSON(t, "/api/register", map[string]string{"username": "alice", "password": "other"})
	if res.StatusCode != http.StatusBadRequest || body.Code != errs.ErrUserAlreadyExists {
		t.Fatalf("second register: status=%d body=%+v", res.StatusCode, body)
	}
	if body.Message != "Username already exists" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestLoginAndProfile(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "bob")

	res, body := env.postJSON(t, "/api/login", map[string]string{"username": "bob", "password": "password"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: status=%d body=%+v", res.StatusCode, body)
	}
	data := decodeData[authData](t, body)
	if data.User.ID != registered.ID {
		t.Errorf("login user = %+v", data.User)
	}

	res, body = env.do(t, http.MethodGet, "/api/user/profile", nil, http.Header{"Authorization": {"Bearer " + data.Token}})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("profile: status=%d body=%+v", res.StatusCode, body)
	}
	profile := decodeData[map[string]user.User](t, body)
	if profile["user"].ID != registered.ID {
		t.Errorf("profile = %+v", profile)
	}

	res, _ = env.do(t, http.MethodGet, "/api/user/profile", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous profile status = %d", res.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "carol")

	res, body := env.postJSON(t, "/api/login", map[string]string{"username": "carol", "password": "nope"})
	if res.StatusCode != http.StatusUnauthorized || body.Code != errs.ErrInvalidCredentials {
		t.Errorf("status=%d body=%+v", res.StatusCode, body)
	}

	res, body = env.postJSON(t, "/api/login", map[string]string{"username": "carol"})
	if res.StatusCode != http.StatusBadRequest || body.Code != errs.ErrInvalidParams {
		t.Errorf("missing password: status=%d body=%+v", res.StatusCode, body)
	}
}
