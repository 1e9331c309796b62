package openai

import (
	"encoding/json"
	"fmt"
)

/*
	RESPONSES API STREAMING - WIRE TYPES

	Event lifecycle:
	  response.created → response.output_item.added (per item) →
	    [message item]       response.content_part.added → response.output_text.delta(s) →
	                          response.output_text.done → response.content_part.done
	    [reasoning item]      response.reasoning_summary_text.delta(s)
	    [function_call item]  response.function_call_arguments.delta(s) →
	                          response.function_call_arguments.done
	  → response.output_item.done (per item) → response.completed

	response.failed / error terminate the stream early.
*/

// responseStreamEvent is the envelope for every Responses API SSE event. The
// Type field discriminates which of the optional fields are populated.
type responseStreamEvent struct {
	Type string `json:"type"`

	OutputIndex int                `json:"output_index"`
	Item        *responseStreamItem `json:"item,omitempty"` // output_item.added/done

	ContentIndex int `json:"content_index,omitempty"`

	Delta string `json:"delta,omitempty"` // output_text.delta, reasoning_summary_text.delta, function_call_arguments.delta
	Text  string `json:"text,omitempty"`  // output_text.done
	Arguments string `json:"arguments,omitempty"` // function_call_arguments.done

	Response *responseStreamResponse `json:"response,omitempty"` // response.created/completed/failed

	Error *responseErrorDetail `json:"error,omitempty"` // "error" events (rare, top-level transport errors)
}

// responseStreamItem mirrors one entry of the eventual output array, as
// carried by response.output_item.added/done.
type responseStreamItem struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "message", "reasoning", "function_call"
	Status string `json:"status,omitempty"`

	// function_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// responseStreamResponse is the "response" object carried by
// response.created/completed/failed.
type responseStreamResponse struct {
	ID     string         `json:"id"`
	Status string         `json:"status"` // "completed", "failed", "incomplete"
	Usage  *responseUsage `json:"usage,omitempty"`
	Error  *responseErrorDetail `json:"error,omitempty"`
}

func unmarshalResponseStreamEvent(payload string) (*responseStreamEvent, error) {
	var event responseStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, fmt.Errorf("missing type field in stream event")
	}
	return &event, nil
}
