package types

// CreditRiskRequest is the borrower record submitted for assessment.
type CreditRiskRequest struct {
	// Borrower age in years (18-100).
	// example: 32
	Age int `json:"age" example:"32"`
	// Occupation, free text.
	// example: Journalist
	Occupation string `json:"occupation" example:"Journalist"`
	// Annual income; must be non-negative.
	// example: 33470.43
	AnnualIncome float64 `json:"annual_income" example:"33470.43"`
	// Outstanding debt; must be non-negative.
	// example: 1318.49
	OutstandingDebt float64 `json:"outstanding_debt" example:"1318.49"`
	// Credit utilization ratio in percent (0-100).
	// example: 26.8
	CreditUtilization float64 `json:"credit_utilization" example:"26.8"`
	// One of the known payment behaviour categories.
	// example: Low_spent_Large_value_payments
	PaymentBehavior string `json:"payment_behavior" example:"Low_spent_Large_value_payments"`
}

// ModelResponse is one backend's answer.
type ModelResponse struct {
	// Backend name.
	// example: lora
	ModelName string `json:"model_name" example:"lora"`
	// example: LoRA Fine-tuned
	DisplayName string `json:"display_name,omitempty" example:"LoRA Fine-tuned"`
	// The formatted borrower record the backend was asked about.
	FormattedInput string `json:"formatted_input"`
	// Generated text, possibly partial when status is failed.
	Response string `json:"response"`
	// Generation time in seconds.
	// example: 4.21
	ProcessingTime float64 `json:"processing_time" example:"4.21"`
	// One of ok, failed, unavailable.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Failure description when status is not ok.
	Error string `json:"error,omitempty"`
	// Credit score class extracted from the response, if any.
	// example: Standard
	Label string `json:"label,omitempty" example:"Standard"`
	// example: stop
	FinishReason string `json:"finish_reason,omitempty" example:"stop"`
}

// ParallelResponse is the joined result of a parallel dispatch.
type ParallelResponse struct {
	// example: 3f0b6c1e-8a59-4a57-9a53-2b2f3f1c1a7d
	DispatchID string `json:"dispatch_id" example:"3f0b6c1e-8a59-4a57-9a53-2b2f3f1c1a7d"`
	// One entry per requested backend.
	Results map[string]ModelResponse `json:"results"`
	// Wall-clock time of the whole dispatch in seconds.
	// example: 6.5
	TotalProcessingTime float64 `json:"total_processing_time" example:"6.5"`
	// example: 2
	Succeeded int `json:"succeeded" example:"2"`
}

// StreamEvent is one NDJSON line of POST /inference/stream.
type StreamEvent struct {
	// One of start, partial, done, complete, error.
	// example: partial
	Type string `json:"type" example:"partial"`
	// Backend name; empty for complete and request-level errors.
	// example: qlora
	Backend string `json:"backend,omitempty" example:"qlora"`
	// Accumulated text for partial events.
	Text string `json:"text,omitempty"`
	// Final result for done events.
	Result *ModelResponse `json:"result,omitempty"`
	// Joined result for the complete event.
	Summary *ParallelResponse `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// ModelsResponse wraps the gguf files returned by GET /models.
type ModelsResponse struct {
	// List of discovered model files.
	Models []Model `json:"models"`
}

// BackendInfo describes a configured backend for GET /backends.
type BackendInfo struct {
	// example: qlora
	Name string `json:"name" example:"qlora"`
	// example: QLoRA Fine-tuned
	DisplayName string `json:"display_name" example:"QLoRA Fine-tuned"`
	// example: llama
	Kind string `json:"kind" example:"llama"`
	// Model file or server URL.
	// example: /models/qwen2.5-3b-f16-qlora.gguf
	Model string `json:"model" example:"/models/qwen2.5-3b-f16-qlora.gguf"`
	// example: qlora
	Preset string `json:"preset,omitempty" example:"qlora"`
}

// BackendsResponse wraps GET /backends.
type BackendsResponse struct {
	Backends []BackendInfo `json:"backends"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Offending field for validation errors.
	// example: age
	Field string `json:"field,omitempty" example:"age"`
}

// BackendStatus summarizes one backend for /status.
type BackendStatus struct {
	// example: base
	Name string `json:"name" example:"base"`
	// example: Base Model
	DisplayName string `json:"display_name" example:"Base Model"`
	// Lifecycle state: loading, ready, error, closed.
	// example: ready
	State string `json:"state" example:"ready"`
	// True while a generation holds the backend.
	// example: false
	Busy bool `json:"busy" example:"false"`
	// Load failure, if any.
	Error string `json:"error,omitempty"`
	// Weight loading time in seconds.
	// example: 3.2
	LoadSeconds float64 `json:"load_seconds,omitempty" example:"3.2"`
	// Unix ms of the last generation start.
	// example: 1725000000000
	LastUsedUnixMs int64 `json:"last_used_unix_ms,omitempty" example:"1725000000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Backends []BackendStatus `json:"backends"`
	// Worker pool size.
	// example: 3
	Workers int `json:"workers" example:"3"`
	// Workers currently running a generation.
	// example: 1
	BusyWorkers int `json:"busy_workers" example:"1"`
	// Names of ready backends.
	Ready []string `json:"ready"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// healthy when at least one backend is ready, degraded otherwise.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Ready flag per backend name.
	ModelsLoaded map[string]bool `json:"models_loaded"`
	// example: 3
	Backends int `json:"backends" example:"3"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	// example: Credit Risk Assessment API
	Name string `json:"name" example:"Credit Risk Assessment API"`
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
	// Path -> description.
	Endpoints map[string]string `json:"endpoints"`
}
