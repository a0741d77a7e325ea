package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"creditrisk/internal/config"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

type handlers struct {
	svc Service
}

// info godoc
// @Summary      Service information
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.InfoResponse
// @Router       / [get]
func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.InfoResponse{
		Name:    "Credit Risk Assessment API",
		Version: Version,
		Endpoints: map[string]string{
			"GET /health":               "backend readiness summary",
			"GET /status":               "per-backend state",
			"GET /backends":             "configured backends",
			"GET /models":               "model files in the models directory",
			"POST /inference/{backend}": "assess with one backend",
			"POST /inference/parallel":  "assess with several backends at once",
			"POST /inference/stream":    "parallel assessment as an NDJSON stream",
			"GET /ui":                   "live comparison page",
			"GET /metrics":              "prometheus metrics",
		},
	})
}

// health godoc
// @Summary      Backend readiness summary
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	loaded := h.svc.Health()
	status := "degraded"
	for _, ok := range loaded {
		if ok {
			status = "healthy"
			break
		}
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: status, ModelsLoaded: loaded, Backends: len(loaded)})
}

// status godoc
// @Summary      Per-backend state
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// backends godoc
// @Summary      Configured backends
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.BackendsResponse
// @Router       /backends [get]
func (h *handlers) backends(w http.ResponseWriter, r *http.Request) {
	bs := h.svc.Backends()
	resp := types.BackendsResponse{Backends: make([]types.BackendInfo, 0, len(bs))}
	for _, b := range bs {
		resp.Backends = append(resp.Backends, backendInfo(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func backendInfo(b config.BackendConfig) types.BackendInfo {
	model := b.Model
	if b.Kind == config.KindLlamaServer {
		model = b.BaseURL
	}
	return types.BackendInfo{Name: b.Name, DisplayName: b.DisplayName, Kind: b.Kind, Model: model, Preset: b.Preset}
}

// models godoc
// @Summary      Model files in the models directory
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /models [get]
func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.Models()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if models == nil {
		models = []types.Model{}
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
}

// single godoc
// @Summary      Assess a borrower with one backend
// @Tags         inference
// @Accept       json
// @Produce      json
// @Param        backend  path  string                   true  "Backend name"
// @Param        request  body  types.CreditRiskRequest  true  "Borrower record"
// @Success      200  {object}  types.ModelResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      415  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /inference/{backend} [post]
func (h *handlers) single(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "backend")
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rl := newRequestLog(r, "single")
	rl.begin([]string{name})
	ctx, cancel := inferenceContext(r)
	defer cancel()

	res, err := h.svc.Ask(ctx, name, rec, nil)
	if err != nil {
		rl.end(writeServiceError(w, err), err)
		return
	}
	if aborted(r) {
		rl.end(499, r.Context().Err())
		return
	}
	status := statusForResult(res)
	if status != http.StatusOK {
		writeJSONError(w, status, res.ErrorMessage())
		rl.end(status, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, ToModelResponse(res))
	rl.end(http.StatusOK, nil)
}

// parallel godoc
// @Summary      Assess a borrower with several backends at once
// @Description  Runs every backend (or those named in ?backends=a,b) concurrently and waits for all of them.
// @Tags         inference
// @Accept       json
// @Produce      json
// @Param        backends  query  string                   false  "Comma-separated backend names"
// @Param        request   body   types.CreditRiskRequest  true   "Borrower record"
// @Success      200  {object}  types.ParallelResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ParallelResponse
// @Router       /inference/parallel [post]
func (h *handlers) parallel(w http.ResponseWriter, r *http.Request) {
	names := config.SplitCSV(r.URL.Query().Get("backends"))
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rl := newRequestLog(r, "parallel")
	rl.begin(names)
	ctx, cancel := inferenceContext(r)
	defer cancel()

	res, err := h.svc.Observe(ctx, names, rec, noObserver)
	if err != nil && res.Results == nil {
		rl.end(writeServiceError(w, err), err)
		return
	}
	if aborted(r) {
		rl.end(499, r.Context().Err())
		return
	}
	status := http.StatusOK
	if err != nil {
		// every backend failed; the per-backend detail is still useful
		status = statusForError(err)
	}
	writeJSON(w, status, ToParallelResponse(res))
	rl.end(status, err)
}

// decodeRecord validates content type and decodes the request body. It
// writes the error response itself and reports whether to continue.
func decodeRecord(w http.ResponseWriter, r *http.Request) (prompt.CreditRecord, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return prompt.CreditRecord{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.CreditRiskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return prompt.CreditRecord{}, false
	}
	rec := fromRequest(req)
	if err := prompt.Validate(rec); err != nil {
		writeServiceError(w, err)
		return prompt.CreditRecord{}, false
	}
	return rec, true
}
