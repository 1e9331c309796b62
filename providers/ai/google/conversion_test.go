package google

import (
	"encoding/json"
	"testing"

	"github.com/leofalp/llmstream/internal/utils"
	"github.com/leofalp/llmstream/providers/ai"
)

func TestBuildToolConfigModes(t *testing.T) {
	tests := []struct {
		name         string
		input        *ai.ToolChoice
		wantMode     string
		wantAllowed  []string
	}{
		{name: "forced none", input: &ai.ToolChoice{Forced: "none"}, wantMode: "NONE"},
		{name: "forced None mixed case", input: &ai.ToolChoice{Forced: "None"}, wantMode: "NONE"},
		{name: "forced auto", input: &ai.ToolChoice{Forced: "auto"}, wantMode: "AUTO"},
		{name: "forced specific tool", input: &ai.ToolChoice{Forced: "get_weather"}, wantMode: "ANY", wantAllowed: []string{"get_weather"}},
		{name: "at least one required", input: &ai.ToolChoice{AtLeastOneRequired: true}, wantMode: "ANY"},
		{name: "required tools list", input: &ai.ToolChoice{RequiredTools: []string{"a", "b"}}, wantMode: "ANY", wantAllowed: []string{"a", "b"}},
		{name: "empty choice defaults to auto", input: &ai.ToolChoice{}, wantMode: "AUTO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildToolConfig(tt.input)
			if got.FunctionCallingConfig.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", got.FunctionCallingConfig.Mode, tt.wantMode)
			}
			if len(tt.wantAllowed) > 0 {
				if len(got.FunctionCallingConfig.AllowedFunctionNames) != len(tt.wantAllowed) {
					t.Fatalf("AllowedFunctionNames = %v, want %v", got.FunctionCallingConfig.AllowedFunctionNames, tt.wantAllowed)
				}
				for i, name := range tt.wantAllowed {
					if got.FunctionCallingConfig.AllowedFunctionNames[i] != name {
						t.Errorf("AllowedFunctionNames[%d] = %q, want %q", i, got.FunctionCallingConfig.AllowedFunctionNames[i], name)
					}
				}
			}
		})
	}
}

func TestBuildContentsMapsRolesAndToolCalls(t *testing.T) {
	turns := []ai.Message{
		{Role: ai.RoleUser, Content: "weather in paris?"},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "x", Name: "get_weather", Arguments: `{"city":"paris"}`}}},
		{Role: ai.RoleTool, Name: "get_weather", Content: `{"temp":20}`},
		{Role: ai.RoleAssistant, Content: "It's 20 degrees in Paris."},
	}

	contents := buildContents(turns)
	if len(contents) != 4 {
		t.Fatalf("expected 4 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" {
		t.Errorf("contents[0].Role = %q, want user", contents[0].Role)
	}
	if contents[1].Role != "model" || contents[1].Parts[0].FunctionCall == nil {
		t.Fatalf("contents[1] should carry a functionCall part: %+v", contents[1])
	}
	if contents[1].Parts[0].FunctionCall.Name != "get_weather" {
		t.Errorf("FunctionCall.Name = %q, want get_weather", contents[1].Parts[0].FunctionCall.Name)
	}
	if contents[2].Role != "user" || contents[2].Parts[0].FunctionResponse == nil {
		t.Fatalf("contents[2] should carry a functionResponse part: %+v", contents[2])
	}
	if contents[3].Role != "model" || contents[3].Parts[0].Text != "It's 20 degrees in Paris." {
		t.Fatalf("contents[3] unexpected: %+v", contents[3])
	}
}

func TestBuildContentsRoundTripsCodeExecution(t *testing.T) {
	turns := []ai.Message{
		{
			Role: ai.RoleAssistant,
			CodeExecutions: []ai.CodeExecution{
				{Language: "python", Code: "print(2+2)", Outcome: "OK", Output: "4"},
			},
		},
	}

	contents := buildContents(turns)
	if len(contents) != 1 || len(contents[0].Parts) != 2 {
		t.Fatalf("expected 1 content with 2 parts, got %+v", contents)
	}
	if contents[0].Parts[0].ExecutableCode == nil || contents[0].Parts[0].ExecutableCode.Code != "print(2+2)" {
		t.Errorf("unexpected executableCode part: %+v", contents[0].Parts[0])
	}
	if contents[0].Parts[1].CodeExecResult == nil || contents[0].Parts[1].CodeExecResult.Output != "4" {
		t.Errorf("unexpected codeExecutionResult part: %+v", contents[0].Parts[1])
	}
}

func TestBuildToolsSeparatesBuiltinsFromFunctionDeclarations(t *testing.T) {
	tools := []ai.ToolDescription{
		{Name: ai.ToolGoogleSearch},
		{Name: "get_weather", Description: "fetch weather"},
	}

	result := buildTools(tools)
	if len(result) != 2 {
		t.Fatalf("expected 2 tool entries, got %d", len(result))
	}
	if result[0].GoogleSearch == nil {
		t.Errorf("expected first entry to be googleSearch: %+v", result[0])
	}
	if len(result[1].FunctionDeclarations) != 1 || result[1].FunctionDeclarations[0].Name != "get_weather" {
		t.Errorf("expected second entry to carry get_weather declaration: %+v", result[1])
	}
}

func TestBuildGenerationConfigAppliesThinkingBudget(t *testing.T) {
	budget := 2048
	opts := ai.Options{Thinking: &ai.ThinkingConfig{BudgetTokens: budget, IncludeThoughts: true}}

	gc := buildGenerationConfig(opts)
	if gc == nil || gc.ThinkingConfig == nil {
		t.Fatalf("expected thinkingConfig to be set")
	}
	if gc.ThinkingConfig.ThinkingBudget == nil || *gc.ThinkingConfig.ThinkingBudget != budget {
		t.Errorf("ThinkingBudget = %v, want %d", gc.ThinkingConfig.ThinkingBudget, budget)
	}
	if !gc.ThinkingConfig.IncludeThoughts {
		t.Error("expected IncludeThoughts to be true")
	}
}

func TestBuildGenerationConfigAppliesTemperatureAndMaxTokens(t *testing.T) {
	opts := ai.Options{Temperature: utils.Ptr(float32(0.4)), MaxTokens: utils.Ptr(256)}

	gc := buildGenerationConfig(opts)
	if gc == nil {
		t.Fatal("expected generationConfig to be set")
	}
	// Options.Temperature is a float32; the config carries its float64 widening.
	if gc.Temperature == nil || *gc.Temperature != float64(float32(0.4)) {
		t.Errorf("Temperature = %v, want float64(float32(0.4))", gc.Temperature)
	}
	if gc.MaxOutputTokens == nil || *gc.MaxOutputTokens != 256 {
		t.Errorf("MaxOutputTokens = %v, want 256", gc.MaxOutputTokens)
	}
}

func TestRequestFromContextSetsSystemInstruction(t *testing.T) {
	convo := ai.Context{SystemPrompt: "be concise", Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}}
	req := requestFromContext(convo, ai.Options{})

	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be concise" {
		t.Fatalf("expected system instruction to be set, got %+v", req.SystemInstruction)
	}

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("request did not marshal: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty marshaled request")
	}
}
