// Package manager owns the inference session of the service: the named
// backend handles, the shared worker pool and the dispatcher. It is the
// orchestration layer used by the HTTP API and the CLI.
//
//   - manager.go: Manager type, construction and concurrent loading.
//   - adapters.go: runtime adapter selection per backend kind.
//   - infer.go: single-backend Ask and parallel DispatchAll.
//   - status.go: readiness and status reporting.
//   - errors.go: error types and helpers (IsBackendNotFound).
//   - metrics.go: backend load metrics.
//
// Build tags: the in-process runtime needs `-tags=llama`; without it such
// backends load as unavailable and llama_server backends still work.
package manager
