package google

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/llmstream/core/textsafe"
	"github.com/leofalp/llmstream/providers/ai"
)

// requestFromContext converts a canonical ai.Context into a Gemini
// generateContentRequest, applying the per-call ai.Options on top.
func requestFromContext(convo ai.Context, opts ai.Options) generateContentRequest {
	req := generateContentRequest{}

	if convo.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{Parts: []part{{Text: textsafe.Sanitize(convo.SystemPrompt)}}}
	}

	req.Contents = buildContents(convo.Turns)
	req.GenerationConfig = buildGenerationConfig(opts)

	if len(convo.Tools) > 0 {
		req.Tools = buildTools(convo.Tools)
	}
	if convo.ToolChoice != nil {
		req.ToolConfig = buildToolConfig(convo.ToolChoice)
	}

	return req
}

// buildContents converts canonical turns to Gemini content entries. Role
// mapping: user -> user, assistant -> model, tool -> user carrying a
// functionResponse part (Gemini has no dedicated tool role).
func buildContents(turns []ai.Message) []content {
	var contents []content

	for _, msg := range turns {
		switch msg.Role {
		case ai.RoleUser:
			c := content{Role: "user"}
			if len(msg.ContentParts) > 0 {
				c.Parts = contentPartsToParts(msg.ContentParts)
			} else {
				c.Parts = []part{{Text: textsafe.Sanitize(msg.Content)}}
			}
			contents = append(contents, c)

		case ai.RoleAssistant:
			c := content{Role: "model"}

			for _, tc := range msg.ToolCalls {
				c.Parts = append(c.Parts, part{
					FunctionCall: &functionCall{Name: tc.Name, Args: json.RawMessage(tc.Arguments)},
				})
			}

			for _, ce := range msg.CodeExecutions {
				if ce.Code != "" {
					c.Parts = append(c.Parts, part{ExecutableCode: &executableCode{Language: ce.Language, Code: ce.Code}})
				}
				if ce.Output != "" || ce.Outcome != "" {
					c.Parts = append(c.Parts, part{CodeExecResult: &codeExecResult{Outcome: ce.Outcome, Output: ce.Output}})
				}
			}

			if len(msg.ContentParts) > 0 {
				c.Parts = append(c.Parts, contentPartsToParts(msg.ContentParts)...)
			} else if msg.Content != "" {
				c.Parts = append(c.Parts, part{Text: textsafe.Sanitize(msg.Content)})
			}

			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}

		case ai.RoleTool:
			contents = append(contents, content{
				Role: "user",
				Parts: []part{{
					FunctionResponse: &functionResponse{Name: msg.Name, Response: json.RawMessage(msg.Content)},
				}},
			})
		}
	}

	return contents
}

// contentPartsToParts converts multimodal ContentParts to Gemini parts. When
// a MediaData carries both Data and URI, URI takes precedence.
func contentPartsToParts(parts []ai.ContentPart) []part {
	var out []part
	for _, cp := range parts {
		switch cp.Type {
		case ai.ContentTypeText:
			out = append(out, part{Text: textsafe.Sanitize(cp.Text)})
		case ai.ContentTypeImage:
			if cp.Image != nil {
				out = append(out, mediaToPart(*cp.Image))
			}
		case ai.ContentTypeAudio:
			if cp.Audio != nil {
				out = append(out, mediaToPart(*cp.Audio))
			}
		case ai.ContentTypeVideo:
			if cp.Video != nil {
				out = append(out, mediaToPart(*cp.Video))
			}
		case ai.ContentTypeDocument:
			if cp.Document != nil {
				out = append(out, mediaToPart(*cp.Document))
			}
		}
	}
	return out
}

func mediaToPart(m ai.MediaData) part {
	if m.URI != "" {
		return part{FileData: &fileData{MimeType: m.MimeType, FileURI: m.URI}}
	}
	return part{InlineData: &inlineData{MimeType: m.MimeType, Data: m.Data}}
}

// buildGenerationConfig maps the vendor-agnostic Options onto Gemini's
// generationConfig. Temperature/MaxTokens are the only fields every adapter
// shares; Thinking is Gemini-specific but expressed through the shared
// ai.ThinkingConfig type.
func buildGenerationConfig(opts ai.Options) *generationConfig {
	if opts.Temperature == nil && opts.MaxTokens == nil && opts.Thinking == nil {
		return nil
	}

	gc := &generationConfig{}

	if opts.Temperature != nil {
		t := float64(*opts.Temperature)
		gc.Temperature = &t
	}
	if opts.MaxTokens != nil {
		gc.MaxOutputTokens = opts.MaxTokens
	}
	if opts.Thinking != nil {
		tc := &thinkingConfig{IncludeThoughts: opts.Thinking.IncludeThoughts}
		if opts.Thinking.BudgetTokens != 0 {
			budget := opts.Thinking.BudgetTokens
			tc.ThinkingBudget = &budget
		}
		gc.ThinkingConfig = tc
	}

	return gc
}

// buildTools converts ToolDescriptions to Gemini tools. Built-in pseudo-tools
// (ai.ToolGoogleSearch etc.) each become their own tool entry; user-defined
// functions are collected into a single functionDeclarations tool, as the
// Gemini API requires.
func buildTools(tools []ai.ToolDescription) []tool {
	var result []tool
	var decls []functionDeclaration

	for _, t := range tools {
		switch t.Name {
		case ai.ToolGoogleSearch:
			result = append(result, tool{GoogleSearch: &googleSearchTool{}})
		case ai.ToolURLContext:
			result = append(result, tool{URLContext: &urlContextTool{}})
		case ai.ToolCodeExecution:
			result = append(result, tool{CodeExecution: &codeExecutionTool{}})
		default:
			fd := functionDeclaration{Name: t.Name, Description: t.Description}
			if t.Parameters != nil {
				if b, err := json.Marshal(t.Parameters); err == nil {
					fd.Parameters = b
				}
			}
			decls = append(decls, fd)
		}
	}

	if len(decls) > 0 {
		result = append(result, tool{FunctionDeclarations: decls})
	}

	return result
}

// buildToolConfig maps ai.ToolChoice onto Gemini's functionCallingConfig
// modes: NONE, AUTO, or ANY (optionally restricted to specific names).
func buildToolConfig(tc *ai.ToolChoice) *toolConfig {
	cfg := &functionCallingConfig{Mode: "AUTO"}

	switch {
	case tc.Forced != "":
		switch strings.ToLower(tc.Forced) {
		case "none":
			cfg.Mode = "NONE"
		case "auto":
			cfg.Mode = "AUTO"
		default:
			cfg.Mode = "ANY"
			cfg.AllowedFunctionNames = []string{tc.Forced}
		}
	case tc.AtLeastOneRequired:
		cfg.Mode = "ANY"
	case len(tc.RequiredTools) > 0:
		cfg.Mode = "ANY"
		cfg.AllowedFunctionNames = tc.RequiredTools
	}

	return &toolConfig{FunctionCallingConfig: cfg}
}
