package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServerOptions configure a llamaServerAdapter.
type ServerOptions struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	// SkipHealthCheck disables the /health probe performed by Start.
	SkipHealthCheck bool
}

// llamaServerAdapter implements InferenceAdapter by talking to a running
// llama.cpp server over its OpenAI-compatible completions endpoint.
type llamaServerAdapter struct {
	opts       ServerOptions
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewLlamaServerAdapter constructs a server-backed adapter.
func NewLlamaServerAdapter(opts ServerOptions, log zerolog.Logger) InferenceAdapter {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// No client timeout: every request carries a context deadline instead.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &llamaServerAdapter{
		opts:       opts,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: cli,
		log:        log.With().Str("adapter", "llama_server").Logger(),
	}
}

// llamaServerSession holds the model id and fixed parameters.
type llamaServerSession struct {
	adapter    *llamaServerAdapter
	modelID    string
	baseParams InferParams
}

func (a *llamaServerAdapter) Start(model string, params InferParams) (InferSession, error) {
	if a.baseURL == "" {
		return nil, errors.New("llama server base url is empty")
	}
	if !a.opts.SkipHealthCheck {
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.ConnectTimeout)
		defer cancel()
		if err := a.checkHealth(ctx); err != nil {
			return nil, fmt.Errorf("llama server %s: %w", a.baseURL, err)
		}
	}
	return &llamaServerSession{
		adapter:    a,
		modelID:    strings.TrimSpace(model),
		baseParams: params,
	}, nil
}

func (a *llamaServerAdapter) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

// completionRequest is the payload for /v1/completions.
type completionRequest struct {
	Model         string   `json:"model,omitempty"`
	Prompt        string   `json:"prompt"`
	MaxTokens     int      `json:"max_tokens,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty"`
	TopP          float32  `json:"top_p,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	Stop          []string `json:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty"`
	Stream        bool     `json:"stream"`
	RepeatPenalty float32  `json:"repeat_penalty,omitempty"`
}

// streamChunk covers completion chunks (choices[].text), chat-style chunks
// (choices[].delta.content) and native llama.cpp chunks (content).
type streamChunk struct {
	Choices []struct {
		Text  string `json:"text"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Content string `json:"content"`
	// Stop marks the last chunk of the native llama.cpp stream.
	Stop  bool   `json:"stop"`
	Usage *Usage `json:"usage"`
}

// errStreamTruncated reports a stream that ended without a finish marker.
var errStreamTruncated = fmt.Errorf("llama server stream ended before completion: %w", io.ErrUnexpectedEOF)

func (s *llamaServerSession) Generate(ctx context.Context, prompt string, onToken func(string) error) (FinalResult, error) {
	a := s.adapter
	if a == nil || a.httpClient == nil {
		return FinalResult{}, errors.New("llama server adapter not initialized")
	}
	if a.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.RequestTimeout)
		defer cancel()
	}
	payload := completionRequest{
		Model:         s.modelID,
		Prompt:        prompt,
		MaxTokens:     s.baseParams.MaxTokens,
		TopP:          s.baseParams.TopP,
		TopK:          s.baseParams.TopK,
		Stop:          s.baseParams.Stop,
		Seed:          s.baseParams.Seed,
		Stream:        true,
		RepeatPenalty: s.baseParams.RepeatPenalty,
	}
	if t, ok := s.baseParams.SamplingTemperature(); ok {
		payload.Temperature = &t
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return FinalResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return FinalResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if a.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.opts.APIKey)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return FinalResult{}, ctx.Err()
		}
		return FinalResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return FinalResult{}, fmt.Errorf("llama server http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return s.readStream(ctx, resp.Body, onToken)
}

// readStream forwards fragments until [DONE]. A stream that hits EOF without
// [DONE] or a finish reason is truncated and reported as an error.
func (s *llamaServerSession) readStream(ctx context.Context, body io.Reader, onToken func(string) error) (FinalResult, error) {
	var final FinalResult
	finished := false
	r := bufio.NewReader(body)
	for {
		line, err := r.ReadString('\n')
		if data, ok := sseData(line); ok {
			if data == "[DONE]" {
				return final, nil
			}
			var chunk streamChunk
			if jerr := json.Unmarshal([]byte(data), &chunk); jerr != nil {
				s.adapter.log.Debug().Str("line", data).Msg("unknown stream line")
			} else {
				frag := chunk.Content
				if len(chunk.Choices) > 0 {
					c := chunk.Choices[0]
					frag = c.Text + c.Delta.Content
					if c.FinishReason != nil && *c.FinishReason != "" {
						final.FinishReason = *c.FinishReason
						finished = true
					}
				}
				if chunk.Stop {
					finished = true
					if final.FinishReason == "" {
						final.FinishReason = "stop"
					}
				}
				if chunk.Usage != nil {
					final.Usage = *chunk.Usage
				}
				if frag != "" {
					if cbErr := onToken(frag); cbErr != nil {
						return final, cbErr
					}
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if finished {
					return final, nil
				}
				if ctx.Err() != nil {
					return final, ctx.Err()
				}
				return final, errStreamTruncated
			}
			if ctx.Err() != nil {
				return final, ctx.Err()
			}
			s.adapter.log.Warn().Err(err).Msg("stream read error")
			return final, err
		}
	}
}

// sseData extracts the payload of a "data:" line. Blank lines and comments
// are skipped.
func sseData(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(strings.ToLower(line), "data:") {
		return "", false
	}
	return strings.TrimSpace(line[len("data:"):]), true
}

func (s *llamaServerSession) Close() error { return nil }
