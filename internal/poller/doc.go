// Package poller orchestrates the gateway poll cycle.
//
// Each cycle runs four phases in strict order:
//
//  1. Authenticate: open a gateway session (closed on every exit path)
//  2. Fetch: collect the full raw snapshot for the configured generation
//  3. Normalize: classify, coerce and group fields into batches
//  4. Write: deliver each batch to every configured sink
//
// The ordering guarantees sinks never receive output from a partially
// fetched snapshot: a fetch failure aborts the cycle before phase 4.
//
// Failure handling is tiered. Transient transport failures (gateway
// unreachable, timeout, 5xx overload) are retried with a bounded,
// configurable budget. Configuration and authentication failures abort
// the cycle immediately without retrying. Normalization problems are
// contained inside the builder and only cost the affected field or
// timestamp. Batch writes are independent: a sink rejecting one batch
// never blocks delivery of the others.
//
// Dry-run mode runs phases 1-3 normally and logs batch summaries
// instead of writing, for verifying gateway connectivity and field
// classification without touching storage.
package poller
