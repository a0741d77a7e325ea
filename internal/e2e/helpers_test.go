package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creditrisk/internal/config"
	"creditrisk/internal/httpapi"
	"creditrisk/internal/manager"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

// fakeLlama describes one stand-in llama.cpp server.
type fakeLlama struct {
	chunks []string
	// cut drops the connection after this many chunks; 0 disables.
	cut   int
	down  bool
	delay time.Duration
}

// startFakeLlama serves /health and a streaming /v1/completions.
func startFakeLlama(t *testing.T, f fakeLlama) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if f.down {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		if f.cut > 0 {
			// A short body makes the client see an unexpected EOF.
			w.Header().Set("Content-Length", "1000000")
		}
		fl, _ := w.(http.Flusher)
		for i, c := range f.chunks {
			if f.cut > 0 && i == f.cut {
				return
			}
			if f.delay > 0 {
				select {
				case <-time.After(f.delay):
				case <-r.Context().Done():
					return
				}
			}
			b, _ := json.Marshal(map[string]any{"choices": []map[string]any{{"text": c}}})
			fmt.Fprintf(w, "data: %s\n\n", b)
			if fl != nil {
				fl.Flush()
			}
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"text\":\"\",\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func answer(label string) []string {
	return []string{"<answer>", label, "</answer>"}
}

// newStack wires fake llama servers, the manager and the HTTP mux together.
func newStack(t *testing.T, workers int, servers map[string]fakeLlama, order ...string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	cfg := config.Config{Workers: workers}
	for _, name := range order {
		cfg.Backends = append(cfg.Backends, config.BackendConfig{
			Name:    name,
			Kind:    config.KindLlamaServer,
			Model:   name + ".gguf",
			Preset:  name,
			BaseURL: startFakeLlama(t, servers[name]),
		})
	}
	cfg = cfg.Normalize()
	mgr := manager.New(manager.Options{Config: cfg, Logger: zerolog.Nop()})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func recordJSON(t *testing.T) []byte {
	t.Helper()
	rec := prompt.ExampleRecord()
	b, err := json.Marshal(types.CreditRiskRequest{
		Age:               rec.Age,
		Occupation:        rec.Occupation,
		AnnualIncome:      rec.AnnualIncome,
		OutstandingDebt:   rec.OutstandingDebt,
		CreditUtilization: rec.CreditUtilization,
		PaymentBehavior:   rec.PaymentBehavior,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
