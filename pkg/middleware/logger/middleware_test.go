package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLogAllowlistsDispatchBodies(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))

	var downstream string
	h := (&Middleware{}).Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		downstream = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))

	body := `{"format":"Day %d","args":[{"kind":"int","value":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/dispatch/LCD", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if downstream != body {
		t.Errorf("body not restored for downstream: %q", downstream)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["uri"] != "/dispatch/LCD" || fields["status"] != int64(http.StatusAccepted) {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["requestData"] != body {
		t.Errorf("requestData = %v", fields["requestData"])
	}
}

func TestShouldLogBody(t *testing.T) {
	AddBodyLogPaths("/echo", " ")
	tests := []struct {
		method, path, ct string
		want             bool
	}{
		{http.MethodPost, "/dispatch/PRN", "application/json", true},
		{http.MethodPost, "/echo", "application/json; charset=utf-8", true},
		{http.MethodGet, "/dispatch/PRN", "application/json", false},
		{http.MethodPost, "/destinations", "application/json", false},
		{http.MethodPost, "/dispatch/PRN", "text/plain", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.path, nil)
		r.Header.Set("Content-Type", tt.ct)
		if got := shouldLogBody(r, []byte("{}")); got != tt.want {
			t.Errorf("%s %s (%s) = %v, want %v", tt.method, tt.path, tt.ct, got, tt.want)
		}
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestAccessLogBoundsBodyRead(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))

	const size = 4 << 20
	src := &countingReader{r: strings.NewReader(strings.Repeat("x", size))}

	var readBeforeHandler, downstream int
	h := (&Middleware{}).Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readBeforeHandler = src.n
		b, _ := io.ReadAll(r.Body)
		downstream = len(b)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	req := httptest.NewRequest(http.MethodPost, "/dispatch/LCD", src)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if readBeforeHandler > bodyLogCap+1 {
		t.Errorf("middleware consumed %d bytes before the handler", readBeforeHandler)
	}
	if downstream != size {
		t.Errorf("downstream read %d bytes, want %d", downstream, size)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["requestData"]; ok {
		t.Error("oversized body was logged")
	}
}
