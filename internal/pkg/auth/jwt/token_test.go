package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1", Username: "alice", Avatar: "A"}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	payload, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if payload.ID != "u1" || payload.Username != "alice" || payload.Avatar != "A" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if payload.Issuer != TokenIssuer {
		t.Errorf("issuer = %q, want %q", payload.Issuer, TokenIssuer)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1"}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "other"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1"}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestIdentityMiddleware(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u1", Username: "alice"}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := GetPayloadFromContext(r); p == nil || p.ID != "u1" {
			t.Errorf("payload not propagated: %+v", p)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	h := IdentityExtractorMiddleware("secret")(RequireIdentity(inner))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}
