package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"creditrisk/internal/prompt"
)

// Status tags the outcome of one backend call.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFailed      Status = "failed"
	StatusUnavailable Status = "unavailable"
)

// InferenceResult is the outcome of asking one backend. A failed call still
// produces a result: Status says which variant it is and Err carries the
// cause. Text holds whatever was streamed before a failure.
type InferenceResult struct {
	Backend      string
	DisplayName  string
	Prompt       string
	Text         string
	Elapsed      time.Duration
	Status       Status
	Err          error
	FinishReason string
	Usage        Usage
}

// OK reports whether the call completed.
func (r InferenceResult) OK() bool { return r.Status == StatusOK }

// ElapsedSeconds returns Elapsed in fractional seconds.
func (r InferenceResult) ElapsedSeconds() float64 { return r.Elapsed.Seconds() }

// Label extracts the credit-score answer from the response text.
func (r InferenceResult) Label() (prompt.Label, bool) { return prompt.ExtractLabel(r.Text) }

// ErrorMessage returns Err as text, or "" on success.
func (r InferenceResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Ask runs one generation for formatted on h. onPartial, if non-nil, receives
// the accumulated text after every fragment; successive values only ever
// grow by appending. Ask never returns an error: failures are reported in the
// result so callers fanning out to several backends keep the others' output.
//
// Elapsed covers the generation call only, not time spent waiting for the
// handle.
func Ask(ctx context.Context, h *Handle, formatted string, onPartial func(text string)) (res InferenceResult) {
	if h == nil {
		return InferenceResult{Prompt: formatted, Status: StatusUnavailable, Err: ErrUnavailable("(nil)", nil)}
	}
	res = InferenceResult{Backend: h.Name(), DisplayName: h.DisplayName(), Prompt: formatted}

	sess, err := h.acquire(ctx)
	if err != nil {
		res.Err = err
		res.Status = StatusFailed
		if IsBackendUnavailable(err) {
			res.Status = StatusUnavailable
		}
		return res
	}
	defer h.release()

	var acc strings.Builder
	emit := func(tok string) error {
		if tok == "" {
			return nil
		}
		acc.WriteString(tok)
		if onPartial != nil {
			onPartial(acc.String())
		}
		return nil
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Elapsed = time.Since(start)
			res.Text = acc.String()
			res.Status = StatusFailed
			res.Err = generationError{backend: h.Name(), cause: panicError{value: r}}
		}
	}()
	final, err := sess.Generate(ctx, prompt.Instruction(formatted), emit)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Text = acc.String()
		res.Status = StatusFailed
		res.Err = generationError{backend: h.Name(), cause: err}
		return res
	}
	// Runtimes that do not stream return everything in Content.
	if acc.Len() == 0 && final.Content != "" {
		_ = emit(final.Content)
	}
	res.Text = acc.String()
	res.Status = StatusOK
	res.FinishReason = final.FinishReason
	res.Usage = final.Usage
	return res
}

// IsCanceled reports whether the result failed because its context ended.
func (r InferenceResult) IsCanceled() bool {
	return errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)
}
