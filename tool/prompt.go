package tool

import (
	"bytes"
	"fmt"
	"text/template"
)

// Prompt is a parameterized text template registered alongside tools.
// Arguments are validated against Params exactly like tool arguments.
type Prompt struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params"`
	Template    string  `json:"-"`
}

func (p Prompt) validate() error {
	if p.Name == "" {
		return fmt.Errorf("prompt name is required")
	}
	if !validName.MatchString(p.Name) {
		return fmt.Errorf("prompt name %q is invalid: must start with a letter and contain only lowercase letters, digits, and underscores", p.Name)
	}
	if p.Template == "" {
		return fmt.Errorf("prompt %q has no template", p.Name)
	}
	if _, err := template.New(p.Name).Parse(p.Template); err != nil {
		return fmt.Errorf("prompt %q template: %w", p.Name, err)
	}
	return nil
}

// Render executes the prompt template with validated arguments.
func (p Prompt) Render(args map[string]any) (string, error) {
	tpl, err := template.New(p.Name).Option("missingkey=error").Parse(p.Template)
	if err != nil {
		return "", fmt.Errorf("parse prompt %q: %w", p.Name, err)
	}
	var out bytes.Buffer
	if err := tpl.Execute(&out, args); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", p.Name, err)
	}
	return out.String(), nil
}
