package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/manager"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

type mockService struct {
	backends  []config.BackendConfig
	models    []types.Model
	modelsErr error
	status    types.StatusResponse
	health    map[string]bool
	ready     bool

	askRes backend.InferenceResult
	askErr error

	// per-backend scripted fragments and statuses for Observe
	frags   map[string][]string
	failed  map[string]bool
	obsErr  error
	gotRec  prompt.CreditRecord
	gotName []string
}

func (m *mockService) Backends() []config.BackendConfig { return m.backends }
func (m *mockService) Models() ([]types.Model, error)   { return m.models, m.modelsErr }
func (m *mockService) Status() types.StatusResponse     { return m.status }
func (m *mockService) Health() map[string]bool          { return m.health }
func (m *mockService) Ready() bool                      { return m.ready }

func (m *mockService) Ask(ctx context.Context, name string, rec prompt.CreditRecord, onPartial func(string)) (backend.InferenceResult, error) {
	m.gotRec = rec
	m.gotName = []string{name}
	if m.askErr != nil {
		return backend.InferenceResult{}, m.askErr
	}
	res := m.askRes
	res.Backend = name
	res.Prompt = prompt.Format(rec)
	return res, nil
}

func (m *mockService) Observe(ctx context.Context, names []string, rec prompt.CreditRecord, obs dispatch.Observer) (dispatch.DispatchResult, error) {
	m.gotRec = rec
	m.gotName = names
	if m.obsErr != nil {
		return dispatch.DispatchResult{}, m.obsErr
	}
	if len(names) == 0 {
		for _, b := range m.backends {
			names = append(names, b.Name)
		}
	}
	out := dispatch.DispatchResult{ID: "d-1", Prompt: prompt.Format(rec), Results: map[string]backend.InferenceResult{}, TotalElapsed: 2 * time.Second}
	for _, n := range names {
		var text string
		for _, f := range m.frags[n] {
			text += f
			if obs.Partial != nil {
				obs.Partial(n, text)
			}
		}
		r := backend.InferenceResult{Backend: n, Prompt: out.Prompt, Text: text, Status: backend.StatusOK, Elapsed: time.Second}
		if m.failed[n] {
			r.Status = backend.StatusFailed
			r.Err = errors.New("decode failed")
		}
		if obs.Done != nil {
			obs.Done(r)
		}
		out.Results[n] = r
	}
	if out.AllFailed() {
		return out, &dispatch.AggregateError{Result: out}
	}
	return out, nil
}

const validBody = `{"age":32,"occupation":"Journalist","annual_income":33470.43,"outstanding_debt":1318.49,"credit_utilization":26.8,"payment_behavior":"Low_spent_Large_value_payments"}`

func newMock() *mockService {
	return &mockService{
		backends: []config.BackendConfig{
			{Name: "base", DisplayName: "Base Model", Kind: config.KindLlama, Model: "/m/base.gguf"},
			{Name: "qlora", DisplayName: "QLoRA Fine-tuned", Kind: config.KindLlama, Model: "/m/qlora.gguf"},
		},
		health: map[string]bool{"base": true, "qlora": false},
		ready:  true,
		frags: map[string][]string{
			"base":  {"<answer>", "Good"},
			"qlora": {"<reasoning>", "high debt", "</reasoning><answer>Bad"},
		},
	}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInfoHealthStatus(t *testing.T) {
	svc := newMock()
	svc.status = types.StatusResponse{Workers: 2}
	r := NewMux(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var info types.InfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.Endpoints["POST /inference/parallel"] == "" {
		t.Fatalf("info: %v %+v", err, info)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("json: %v", err)
	}
	if health.Status != "healthy" || health.Backends != 2 || !health.ModelsLoaded["base"] {
		t.Fatalf("health=%+v", health)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil || st.Workers != 2 {
		t.Fatalf("status: %v %+v", err, st)
	}
}

func TestHealth_Degraded(t *testing.T) {
	svc := newMock()
	svc.health = map[string]bool{"base": false}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	svc := newMock()
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	svc.ready = false
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz=%d", w.Code)
	}
}

func TestBackendsAndModels(t *testing.T) {
	svc := newMock()
	svc.backends = append(svc.backends, config.BackendConfig{Name: "remote", Kind: config.KindLlamaServer, BaseURL: "http://llm:8080"})
	svc.models = []types.Model{{ID: "base.gguf"}}
	r := NewMux(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/backends", nil))
	var bs types.BackendsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &bs); err != nil || len(bs.Backends) != 3 {
		t.Fatalf("backends: %v %+v", err, bs)
	}
	if bs.Backends[2].Model != "http://llm:8080" {
		t.Fatalf("server backend model=%q", bs.Backends[2].Model)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	var ms types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ms); err != nil || len(ms.Models) != 1 {
		t.Fatalf("models: %v %+v", err, ms)
	}

	svc.modelsErr = errors.New("read dir: missing")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("models error status=%d", w.Code)
	}
}

func TestSingle_OK(t *testing.T) {
	svc := newMock()
	svc.askRes = backend.InferenceResult{Text: "<answer>Standard</answer>", Status: backend.StatusOK, Elapsed: 1500 * time.Millisecond}
	w := post(t, NewMux(svc), "/inference/qlora", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var mr types.ModelResponse
	if err := json.Unmarshal(w.Body.Bytes(), &mr); err != nil {
		t.Fatalf("json: %v", err)
	}
	if mr.ModelName != "qlora" || mr.Label != "Standard" || mr.ProcessingTime != 1.5 || mr.Status != "ok" {
		t.Fatalf("resp=%+v", mr)
	}
	if !strings.HasPrefix(mr.FormattedInput, "Age: 32, Occupation: Journalist") {
		t.Fatalf("formatted=%q", mr.FormattedInput)
	}
	if svc.gotRec != prompt.ExampleRecord() {
		t.Fatalf("decoded record=%+v", svc.gotRec)
	}
}

func TestSingle_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		res    backend.InferenceResult
		err    error
		status int
	}{
		{"not found", backend.InferenceResult{}, manager.ErrBackendNotFound("gpt"), http.StatusNotFound},
		{"closed", backend.InferenceResult{}, manager.ErrClosed, http.StatusServiceUnavailable},
		{"unavailable", backend.InferenceResult{Status: backend.StatusUnavailable, Err: backend.ErrUnavailable("qlora", nil)}, nil, http.StatusServiceUnavailable},
		{"failed", backend.InferenceResult{Status: backend.StatusFailed, Err: errors.New("decode")}, nil, http.StatusInternalServerError},
		{"timeout", backend.InferenceResult{Status: backend.StatusFailed, Err: context.DeadlineExceeded}, nil, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMock()
			svc.askRes, svc.askErr = tt.res, tt.err
			w := post(t, NewMux(svc), "/inference/qlora", validBody)
			if w.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", w.Code, tt.status, w.Body.String())
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != tt.status {
				t.Fatalf("error body: %v %+v", err, er)
			}
		})
	}
}

func TestRequestValidation(t *testing.T) {
	svc := newMock()
	r := NewMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/inference/parallel", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content type: status=%d", w.Code)
	}

	if w := post(t, r, "/inference/parallel", `{"age":`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", w.Code)
	}
	if w := post(t, r, "/inference/parallel", `{"age":30,"extra":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status=%d", w.Code)
	}

	bad := strings.Replace(validBody, `"age":32`, `"age":12`, 1)
	w = post(t, r, "/inference/base", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("formatting: status=%d", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Field != "age" {
		t.Fatalf("error body: %v %+v", err, er)
	}
	if svc.gotName != nil {
		t.Fatalf("service called for invalid request")
	}

	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	if w := post(t, r, "/inference/parallel", validBody); w.Code != http.StatusBadRequest {
		t.Fatalf("oversized: status=%d", w.Code)
	}
}

func TestParallel(t *testing.T) {
	svc := newMock()
	svc.failed = map[string]bool{"qlora": true}
	w := post(t, NewMux(svc), "/inference/parallel", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var pr types.ParallelResponse
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil {
		t.Fatalf("json: %v", err)
	}
	if pr.DispatchID != "d-1" || len(pr.Results) != 2 || pr.TotalProcessingTime != 2 || pr.Succeeded != 1 {
		t.Fatalf("resp=%+v", pr)
	}
	if q := pr.Results["qlora"]; q.Status != "failed" || q.Error == "" || q.Response == "" {
		t.Fatalf("qlora=%+v", q)
	}
	if pr.Results["base"].Label != "Good" {
		t.Fatalf("base label=%q", pr.Results["base"].Label)
	}
}

func TestParallel_SubsetAndFailures(t *testing.T) {
	svc := newMock()
	r := NewMux(svc)
	post(t, r, "/inference/parallel?backends=qlora,%20base", validBody)
	if strings.Join(svc.gotName, ",") != "qlora,base" {
		t.Fatalf("names=%v", svc.gotName)
	}

	svc.failed = map[string]bool{"base": true, "qlora": true}
	w := post(t, r, "/inference/parallel", validBody)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("all failed: status=%d", w.Code)
	}
	var pr types.ParallelResponse
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil || len(pr.Results) != 2 {
		t.Fatalf("all failed body: %v %+v", err, pr)
	}

	svc.obsErr = manager.ErrBackendNotFound("gpt")
	if w := post(t, r, "/inference/parallel?backends=gpt", validBody); w.Code != http.StatusNotFound {
		t.Fatalf("unknown backend: status=%d", w.Code)
	}
}

func TestOpenAPI(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(newMock()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi not json: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/inference/parallel"]; !ok {
		t.Fatalf("missing parallel path")
	}
}
