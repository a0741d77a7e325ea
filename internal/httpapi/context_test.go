package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestInferenceContext_CanceledByBase(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	r := httptest.NewRequest("POST", "/inference/parallel", nil)
	ctx, cancel := inferenceContext(r)
	defer cancel()
	cancelBase()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not canceled by base")
	}
	if !aborted(r) {
		t.Fatalf("aborted should report server shutdown")
	}
}

func TestInferenceContext_Timeout(t *testing.T) {
	SetInferTimeout(10 * time.Millisecond)
	defer SetInferTimeout(0)
	ctx, cancel := inferenceContext(httptest.NewRequest("POST", "/x", nil))
	defer cancel()
	select {
	case <-ctx.Done():
		if ctx.Err() != context.DeadlineExceeded {
			t.Fatalf("err=%v", ctx.Err())
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout not applied")
	}
}

func TestCORS(t *testing.T) {
	SetCORSOptions(true, []string{"http://ui.local"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	req := httptest.NewRequest("OPTIONS", "/inference/parallel", nil)
	req.Header.Set("Origin", "http://ui.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	NewMux(newMock()).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.local" {
		t.Fatalf("allow-origin=%q", got)
	}
}
