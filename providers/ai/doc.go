// Package ai defines the provider-agnostic streaming chat interface: a
// uniform [Context]/[Model] request shape dispatched through a [Registry]
// of vendor adapters, each returning an [AssistantStream] of incremental
// [AssistantEvent] values plus a single awaitable [AssistantMessage].
//
// Vendor adapters (providers/ai/google, providers/ai/vertex,
// providers/ai/anthropic, providers/ai/openai) translate their own SSE wire
// formats into this shared event vocabulary; callers never see vendor
// payloads directly.
package ai
