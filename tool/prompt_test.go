package tool

import (
	"strings"
	"testing"
)

func TestPromptRender(t *testing.T) {
	p := Prompt{
		Name:     "greeting",
		Params:   []Param{{Name: "name", Type: TypeString, Required: true}},
		Template: "Hello, {{.name}}!",
	}

	args, err := ValidatePromptArguments(p, map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("ValidatePromptArguments() error = %v", err)
	}

	out, err := p.Render(args)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Hello, Ada!" {
		t.Fatalf("Render() = %q, want %q", out, "Hello, Ada!")
	}
}

func TestPromptArgumentsValidatedLikeTools(t *testing.T) {
	p := Prompt{
		Name:     "greeting",
		Params:   []Param{{Name: "name", Type: TypeString, Required: true}},
		Template: "Hello, {{.name}}!",
	}

	_, err := ValidatePromptArguments(p, map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("ValidatePromptArguments() error = %v, want missing-argument violation", err)
	}
}

func TestPromptValidateRejectsBadTemplates(t *testing.T) {
	err := NewRegistry().RegisterPrompt(Prompt{
		Name:     "broken",
		Template: "{{.unclosed",
	})
	if err == nil {
		t.Fatal("RegisterPrompt() with invalid template = nil, want error")
	}
}
