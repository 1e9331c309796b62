package ai

import "github.com/leofalp/llmstream/internal/jsonschema"

// MessageRole identifies the author of a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ContentType identifies the kind of data a ContentPart carries.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeVideo    ContentType = "video"
	ContentTypeDocument ContentType = "document"
)

// MediaData holds inline base64 data or a URI reference for a non-text
// content part. Exactly one of Data or URI should be set; each adapter's
// conversion layer decides the resulting wire shape.
type MediaData struct {
	MimeType string
	Data     string // base64-encoded inline data
	URI      string // URL, file URI, or opaque vendor file ID
}

// ContentPart is one piece of a possibly-multimodal message. A Message's
// Content field is used for plain text; ContentParts is used when the
// message mixes text with images, audio, video, or documents.
type ContentPart struct {
	Type     ContentType
	Text     string
	Image    *MediaData
	Audio    *MediaData
	Video    *MediaData
	Document *MediaData
}

func NewTextPart(text string) ContentPart { return ContentPart{Type: ContentTypeText, Text: text} }

func NewImagePart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &MediaData{MimeType: mimeType, Data: base64Data}}
}

func NewImagePartFromURI(mimeType, uri string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &MediaData{MimeType: mimeType, URI: uri}}
}

func NewAudioPart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeAudio, Audio: &MediaData{MimeType: mimeType, Data: base64Data}}
}

func NewDocumentPart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeDocument, Document: &MediaData{MimeType: mimeType, Data: base64Data}}
}

// CodeExecution pairs model-generated code with its sandboxed execution
// result, round-tripped on multi-turn conversations (Gemini code_execution).
type CodeExecution struct {
	Language string
	Code     string
	Outcome  string
	Output   string
}

// ToolCall is a single function invocation the assistant previously
// requested, carried on a Message so it can be echoed back alongside the
// corresponding tool-role response.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON string
}

// Message is a single turn in a conversation. Role determines how the
// vendor adapter interprets Content/ContentParts; ToolCalls/ToolCallID/Name
// are only meaningful on assistant and tool role messages respectively.
type Message struct {
	Role    MessageRole
	Content string

	ContentParts []ContentPart

	ToolCalls      []ToolCall
	ToolCallID     string
	Name           string
	CodeExecutions []CodeExecution
}

// ToolDescription describes a function the model may call. Parameters
// defines the expected JSON schema for arguments.
type ToolDescription struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Built-in pseudo-tool names enabling vendor-specific features (currently
// Gemini only). Prefixed with an underscore to distinguish them from
// caller-defined tools.
const (
	ToolGoogleSearch  = "_google_search"
	ToolURLContext    = "_url_context"
	ToolCodeExecution = "_code_execution"
)

func IsBuiltinTool(name string) bool { return len(name) > 0 && name[0] == '_' }

// ToolChoice controls which tool(s) the model is allowed or required to
// call during the turn.
type ToolChoice struct {
	Forced             string // forces a specific tool name, overriding RequiredTools/AtLeastOneRequired
	AtLeastOneRequired bool
	RequiredTools      []string
}

// Context is the caller-owned conversation state passed into Stream /
// StreamSimple. Adapters treat it as read-only: they never mutate a
// caller's Context, Turns, or Tools after the call begins.
type Context struct {
	SystemPrompt string
	Turns        []Message
	Tools        []ToolDescription
	ToolChoice   *ToolChoice
}
