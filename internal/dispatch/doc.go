// Package dispatch fans one formatted prompt out to several backends at once
// and joins their results.
//
//   - pool.go: long-lived fixed-size worker pool shared by all dispatches.
//   - dispatcher.go: DispatchAll, the AND-join over per-backend jobs.
//   - result.go: DispatchResult and helpers.
//   - errors.go: AggregateError and sentinel errors.
//   - metrics.go: prometheus instrumentation.
//   - events.go, events_nats.go: lifecycle events (memory, NATS).
//
// Every requested backend contributes exactly one result. Failures are data:
// only when all backends fail does DispatchAll also return an error.
package dispatch
