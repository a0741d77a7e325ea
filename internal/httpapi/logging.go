package httpapi

import (
	"bytes"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer; Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once from CREDITRISK_HTTP_LOG.
var defaultLogLevel = func() LogLevel {
	if v, ok := os.LookupEnv("CREDITRISK_HTTP_LOG"); ok {
		return parseLevel(v)
	}
	return LevelInfo
}()

// SetDefaultLogLevel overrides the level used when a request does not ask
// for one.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLog is the per-request logging helper of inference handlers.
type requestLog struct {
	lvl   LogLevel
	log   zerolog.Logger
	start time.Time
}

func newRequestLog(r *http.Request, op string) requestLog {
	ctx := zlog.With().Str("op", op).Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ctx = ctx.Str("request_id", rid)
	}
	return requestLog{lvl: requestLogLevel(r), log: ctx.Logger(), start: time.Now()}
}

func (l requestLog) begin(backends []string) {
	if l.lvl >= LevelInfo {
		l.log.Info().Strs("backends", backends).Msg("inference start")
	}
}

func (l requestLog) end(status int, err error) {
	if l.lvl == LevelOff {
		return
	}
	if err == nil && l.lvl < LevelInfo {
		return
	}
	ev := l.log.Info()
	if err != nil {
		ev = l.log.Error().Err(err)
	}
	ev.Int("status", status).Dur("dur", time.Since(l.start)).Msg("inference end")
}

// lineLogger logs every complete NDJSON line written through it at debug
// level.
type lineLogger struct {
	log zerolog.Logger
	buf []byte
}

func (lw *lineLogger) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if idx > 0 {
			lw.log.Debug().RawJSON("line", lw.buf[:idx]).Msg("stream>")
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}
