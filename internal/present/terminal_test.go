package present

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
)

func TestTerminal_SingleBackendStreamsRaw(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, []string{"qlora"}, Options{NoColor: true})
	for _, s := range []string{"<rea", "<reasoning>", "<reasoning>\nok"} {
		term.Partial("qlora", s)
	}
	term.Partial("qlora", "<reasoning>") // stale values are ignored
	term.Flush("qlora")
	if got := buf.String(); got != "<reasoning>\nok\n" {
		t.Fatalf("got %q", got)
	}
}

func TestTerminal_MultiBackendPrefixesWholeLines(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, []string{"base", "qlora"}, Options{NoColor: true})
	term.Partial("base", "hello ")
	term.Partial("qlora", "one\ntw")
	term.Partial("base", "hello world\nsecond")
	term.Partial("qlora", "one\ntwo")
	term.FlushAll()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := map[string]bool{
		"[qlora] one":         true,
		"[base ] hello world": true,
		"[base ] second":      true,
		"[qlora] two":         true,
	}
	if len(lines) != len(want) {
		t.Fatalf("lines=%q", lines)
	}
	for _, l := range lines {
		if !want[l] {
			t.Fatalf("unexpected line %q in %q", l, lines)
		}
	}
	// per-backend order is preserved
	if strings.Index(buf.String(), "hello world") > strings.Index(buf.String(), "second") {
		t.Fatalf("order broken: %q", buf.String())
	}
}

func TestTerminal_Summary(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, []string{"base", "lora"}, Options{NoColor: true})
	res := dispatch.DispatchResult{
		Results: map[string]backend.InferenceResult{
			"base": {Backend: "base", Text: "<answer>Good</answer>", Status: backend.StatusOK, Elapsed: 1500 * time.Millisecond},
			"lora": {Backend: "lora", Status: backend.StatusFailed, Err: errors.New("decode failed")},
		},
		TotalElapsed: 2 * time.Second,
	}
	term.Summary(res)
	out := buf.String()
	for _, want := range []string{"base", "ok", "Good", "1.50s", "failed", "decode failed", "total 2.00s, 1/2 succeeded"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTerminal_Result(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, []string{"qlora"}, Options{NoColor: true})
	term.Result(backend.InferenceResult{Backend: "qlora", Status: backend.StatusUnavailable, Err: errors.New("not loaded")})
	if got := buf.String(); !strings.Contains(got, "unavailable") || !strings.Contains(got, "not loaded") {
		t.Fatalf("got %q", got)
	}
}
