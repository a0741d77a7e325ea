package backend

// Built-in backend variants.
const (
	PresetBase  = "base"
	PresetLoRA  = "lora"
	PresetQLoRA = "qlora"
)

// DefaultLoadOptions match the settings the fine-tuned GGUF exports were
// evaluated with.
var DefaultLoadOptions = LoadOptions{CtxSize: 2048, Threads: 8, Batch: 512}

var presets = map[string]InferParams{
	// base and lora only cap the length; sampling is left to runtime defaults.
	PresetBase: {MaxTokens: 256},
	PresetLoRA: {MaxTokens: 256},
	PresetQLoRA: {
		MaxTokens:     256,
		Temperature:   0.3,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.2,
		Stop:          []string{"</answer>", "</reasoning>", "<|end|>"},
	},
}

// Preset returns a copy of the named generation parameters.
func Preset(name string) (InferParams, bool) {
	p, ok := presets[name]
	if !ok {
		return InferParams{}, false
	}
	p.Stop = append([]string(nil), p.Stop...)
	return p, true
}

// PresetNames lists the built-in presets in display order.
func PresetNames() []string {
	return []string{PresetBase, PresetLoRA, PresetQLoRA}
}

// Merge overlays the non-zero fields of o on p. o.Greedy wins over any
// temperature; a positive o.Temperature clears a greedy p.
func (p InferParams) Merge(o InferParams) InferParams {
	switch {
	case o.Greedy:
		p.Greedy = true
		p.Temperature = 0
	case o.Temperature > 0:
		p.Greedy = false
		p.Temperature = o.Temperature
	}
	if o.TopP > 0 {
		p.TopP = o.TopP
	}
	if o.TopK > 0 {
		p.TopK = o.TopK
	}
	if o.MaxTokens > 0 {
		p.MaxTokens = o.MaxTokens
	}
	if len(o.Stop) > 0 {
		p.Stop = append([]string(nil), o.Stop...)
	}
	if o.Seed != 0 {
		p.Seed = o.Seed
	}
	if o.RepeatPenalty > 0 {
		p.RepeatPenalty = o.RepeatPenalty
	}
	return p
}

// SamplingTemperature returns the temperature to send to a runtime and
// whether one is set at all.
func (p InferParams) SamplingTemperature() (float32, bool) {
	if p.Greedy {
		return 0, true
	}
	return p.Temperature, p.Temperature > 0
}

// Merge overlays the non-zero fields of o on l.
func (l LoadOptions) Merge(o LoadOptions) LoadOptions {
	if o.CtxSize > 0 {
		l.CtxSize = o.CtxSize
	}
	if o.Threads > 0 {
		l.Threads = o.Threads
	}
	if o.Batch > 0 {
		l.Batch = o.Batch
	}
	return l
}
