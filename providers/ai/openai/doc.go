// Package openai implements the ai.AdapterFunc contract for OpenAI's
// Responses API, converting a canonical ai.Context/ai.Options request into
// the Responses API wire format and the resulting SSE lifecycle
// (response.created/response.output_item.added/response.output_text.delta/
// response.function_call_arguments.delta/response.output_item.done/
// response.completed) into a canonical ai.AssistantStream.
package openai
