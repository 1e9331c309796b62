// Package zerologobs provides an observability.Provider implementation
// backed by rs/zerolog.
// It supports structured tracing, in-memory metrics, and levelled logging
// through a configurable zerolog.Logger that can emit JSON or a pretty
// console format.
// The main entry point is [New]; output and level can be tuned with
// [WithLevel], [WithOutput], [WithPretty], [WithColors], and [WithLogger].
package zerologobs
