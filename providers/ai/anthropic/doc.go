// Package anthropic implements the ai.AdapterFunc contract for Anthropic's
// Messages API, converting a canonical ai.Context/ai.Options request into
// Anthropic's wire format and the resulting SSE lifecycle
// (message_start/content_block_start/content_block_delta/content_block_stop/
// message_delta/message_stop) into a canonical ai.AssistantStream.
package anthropic
