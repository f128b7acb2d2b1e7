package logx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestAnonymizeIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.77:5123":          "203.0.113.0",
		"203.0.113.77":               "203.0.113.0",
		"[::1]:80":                   "127.0.0.1",
		"[2001:db8:1:2:3:4:5:6]:443": "2001:db8:1:2::",
		"garbage":                    "unknown_ip",
	}

	for in, want := range tests {
		if got := anonymizeIP(in); got != want {
			t.Errorf("anonymizeIP(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	InitTestLogger(&buf, zerolog.DebugLevel)

	h := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "198.51.100.9:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"status":418`, `"remote_ip":"198.51.100.0"`, `"level":"warn"`, "inside handler"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
