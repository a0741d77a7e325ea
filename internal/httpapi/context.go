package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is a process-level context canceled on shutdown.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// inferenceContext derives the context for an inference request: it ends
// when the client goes away, the server shuts down or inferTimeout passes.
func inferenceContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(serverBaseCtx, cancel)
	if inferTimeout <= 0 {
		return ctx, func() { stop(); cancel() }
	}
	tctx, tcancel := context.WithTimeout(ctx, inferTimeout)
	return tctx, func() { tcancel(); stop(); cancel() }
}

// aborted reports whether the request ended because of the client or a
// server shutdown rather than the handler.
func aborted(r *http.Request) bool {
	return r.Context().Err() != nil || serverBaseCtx.Err() != nil
}
