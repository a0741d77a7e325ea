package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"creditrisk/internal/prompt"
)

func TestAsk_StreamsAndAccumulates(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"<answer>", "Stan", "dard"}, final: FinalResult{FinishReason: "stop"}}
	h := Open(Spec{Name: "lora", DisplayName: "LoRA", Model: "/m/lora.gguf"}, fa)
	if !h.Ready() {
		t.Fatalf("state=%s err=%v", h.State(), h.Err())
	}
	if fa.receivedMP != "/m/lora.gguf" {
		t.Fatalf("model path not passed: %q", fa.receivedMP)
	}
	var partials []string
	res := Ask(context.Background(), h, "p", func(s string) { partials = append(partials, s) })
	if !res.OK() {
		t.Fatalf("status=%s err=%v", res.Status, res.Err)
	}
	if res.Text != "<answer>Standard" {
		t.Fatalf("text=%q", res.Text)
	}
	if res.Backend != "lora" || res.DisplayName != "LoRA" || res.Prompt != "p" {
		t.Fatalf("unexpected result meta: %+v", res)
	}
	if l, ok := res.Label(); !ok || l != prompt.LabelStandard {
		t.Fatalf("label=%q ok=%v", l, ok)
	}
	if len(partials) != 3 {
		t.Fatalf("partials=%v", partials)
	}
	for i := 1; i < len(partials); i++ {
		if !strings.HasPrefix(partials[i], partials[i-1]) || len(partials[i]) <= len(partials[i-1]) {
			t.Fatalf("partials not prefix-extending: %q -> %q", partials[i-1], partials[i])
		}
	}
	if res.FinishReason != "stop" {
		t.Fatalf("finish=%q", res.FinishReason)
	}
}

func TestAsk_SendsInstructionTemplate(t *testing.T) {
	fa := &fakeAdapter{}
	h := Open(Spec{Name: "base"}, fa)
	Ask(context.Background(), h, "Age: 1", nil)
	if len(fa.prompts) != 1 || fa.prompts[0] != prompt.Instruction("Age: 1") {
		t.Fatalf("prompts=%q", fa.prompts)
	}
}

func TestAsk_GenerationFailureKeepsPartialText(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"first", "second"}, genErr: errors.New("boom"), failAfter: 1}
	h := Open(Spec{Name: "qlora"}, fa)
	res := Ask(context.Background(), h, "p", nil)
	if res.Status != StatusFailed {
		t.Fatalf("status=%s", res.Status)
	}
	if !IsGenerationFailure(res.Err) {
		t.Fatalf("expected generation failure, got %v", res.Err)
	}
	if res.Text != "first" {
		t.Fatalf("partial text=%q", res.Text)
	}
}

func TestAsk_PanicIsRecovered(t *testing.T) {
	fa := &fakeAdapter{panicWith: "segfault-ish"}
	h := Open(Spec{Name: "base"}, fa)
	res := Ask(context.Background(), h, "p", nil)
	if res.Status != StatusFailed || !strings.Contains(res.ErrorMessage(), "segfault-ish") {
		t.Fatalf("unexpected: %+v", res)
	}
	// slot must be released after a panic
	res = Ask(context.Background(), h, "p", nil)
	if res.Status != StatusFailed {
		t.Fatalf("second ask status=%s", res.Status)
	}
}

func TestAsk_UnavailableWhenLoadFailed(t *testing.T) {
	h := Open(Spec{Name: "lora"}, &fakeAdapter{startErr: errors.New("no such file")})
	if h.State() != StateError {
		t.Fatalf("state=%s", h.State())
	}
	res := Ask(context.Background(), h, "p", nil)
	if res.Status != StatusUnavailable || !IsBackendUnavailable(res.Err) {
		t.Fatalf("unexpected: %+v", res)
	}
	if !strings.Contains(res.ErrorMessage(), "no such file") {
		t.Fatalf("cause lost: %v", res.Err)
	}
}

func TestAsk_NilAdapterAndNilHandle(t *testing.T) {
	if h := Open(Spec{Name: "x"}, nil); h.Ready() {
		t.Fatalf("expected not ready without adapter")
	}
	if res := Ask(context.Background(), nil, "p", nil); res.Status != StatusUnavailable {
		t.Fatalf("nil handle status=%s", res.Status)
	}
}

func TestAsk_NonStreamingContentIsEmitted(t *testing.T) {
	fa := &fakeAdapter{final: FinalResult{Content: "<answer>Bad</answer>"}}
	h := Open(Spec{Name: "base"}, fa)
	var got []string
	res := Ask(context.Background(), h, "p", func(s string) { got = append(got, s) })
	if res.Text != "<answer>Bad</answer>" || len(got) != 1 {
		t.Fatalf("text=%q partials=%v", res.Text, got)
	}
}

func TestAsk_SerializesPerHandle(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"a", "b"}, delay: 5 * time.Millisecond}
	h := Open(Spec{Name: "base"}, fa)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := Ask(context.Background(), h, "p", nil); !res.OK() {
				t.Errorf("ask failed: %v", res.Err)
			}
		}()
	}
	wg.Wait()
	if fa.maxInfl != 1 {
		t.Fatalf("expected serialized generation, max in-flight=%d", fa.maxInfl)
	}
}

func TestAsk_CanceledWhileWaiting(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"a"}, delay: 100 * time.Millisecond}
	h := Open(Spec{Name: "base"}, fa)
	done := make(chan struct{})
	go func() {
		Ask(context.Background(), h, "p", nil)
		close(done)
	}()
	for !h.Busy() {
		time.Sleep(time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := Ask(ctx, h, "p", nil)
	if res.Status != StatusFailed || !res.IsCanceled() {
		t.Fatalf("expected canceled failure, got %+v", res)
	}
	<-done
}

func TestAsk_ElapsedExcludesWait(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"a", "b"}, delay: 10 * time.Millisecond}
	h := Open(Spec{Name: "base"}, fa)
	res := Ask(context.Background(), h, "p", nil)
	if res.Elapsed < 20*time.Millisecond {
		t.Fatalf("elapsed too small: %v", res.Elapsed)
	}
	if res.ElapsedSeconds() <= 0 {
		t.Fatalf("elapsed seconds=%v", res.ElapsedSeconds())
	}
}

func TestHandle_CloseMakesUnavailable(t *testing.T) {
	fa := &fakeAdapter{}
	h := Open(Spec{Name: "base"}, fa)
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if fa.closeHits != 1 {
		t.Fatalf("session closed %d times", fa.closeHits)
	}
	res := Ask(context.Background(), h, "p", nil)
	if res.Status != StatusUnavailable {
		t.Fatalf("status=%s", res.Status)
	}
}

func TestUnavailableHandle(t *testing.T) {
	h := Unavailable(Spec{Name: "qlora", DisplayName: "QLoRA"}, errors.New("model file missing"))
	if h.DisplayName() != "QLoRA" || h.Ready() {
		t.Fatalf("unexpected handle: %s %s", h.DisplayName(), h.State())
	}
	if !IsBackendUnavailable(Ask(context.Background(), h, "p", nil).Err) {
		t.Fatalf("expected unavailable")
	}
}
