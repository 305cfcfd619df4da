package tool

import (
	"context"
	"fmt"
)

// Status indicates registry-level availability of a tool. It is advisory:
// dispatch is never blocked by an unhealthy status.
type Status string

const (
	StatusReady     Status = "ready"
	StatusUnhealthy Status = "unhealthy"
)

// HandlerFunc implements a tool's behavior. Arguments have already been
// validated and coerced against the descriptor's parameter schema.
type HandlerFunc func(ctx context.Context, args map[string]any) (map[string]any, error)

// ProbeFunc checks whether a tool's external dependency is reachable.
type ProbeFunc func(ctx context.Context) error

// Param declares one named, typed parameter of a tool or prompt.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// Descriptor is the immutable registration record for one tool: its unique
// name, ordered parameter schema, and handler.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params"`
	// AllowExtras permits argument keys not named in Params.
	AllowExtras bool        `json:"allow_extras,omitempty"`
	Handler     HandlerFunc `json:"-"`
	Probe       ProbeFunc   `json:"-"`
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if !validName.MatchString(d.Name) {
		return fmt.Errorf("tool name %q is invalid: must start with a letter and contain only lowercase letters, digits, and underscores", d.Name)
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %q has no handler", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q declares an unnamed parameter", d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("tool %q declares parameter %q twice", d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if !IsValidType(p.Type) {
			return fmt.Errorf("tool %q parameter %q has unsupported type %q", d.Name, p.Name, p.Type)
		}
	}
	return nil
}
