package tool

import (
	"regexp"
	"slices"
	"strings"
	"sync"
)

var validName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry holds the startup-built table of tools, resources, and prompts.
// Registration happens during single-threaded initialization; afterwards the
// table is read-only, so concurrent lookups from request handlers need no
// coordination. The mutex guards the registration phase and the advisory
// status map, which the health scheduler keeps updating at runtime.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]Descriptor
	resources map[string]Resource
	prompts   map[string]Prompt
	status    map[string]Status
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Descriptor),
		resources: make(map[string]Resource),
		prompts:   make(map[string]Prompt),
		status:    make(map[string]Status),
	}
}

// Register adds a tool descriptor. A taken or invalid name is a
// DUPLICATE_NAME error; callers treat it as fatal to startup.
func (r *Registry) Register(desc Descriptor) error {
	if err := desc.validate(); err != nil {
		return DuplicateNameError("%v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		return DuplicateNameError("tool %q is already registered", desc.Name)
	}
	r.tools[desc.Name] = desc
	r.status[desc.Name] = StatusReady
	return nil
}

// Resolve returns the descriptor registered under name.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, exists := r.tools[name]
	if !exists {
		return Descriptor{}, NotFoundError("unknown tool %q", name)
	}
	return desc, nil
}

// RegisterResource adds a read-only resource under its URI.
func (r *Registry) RegisterResource(res Resource) error {
	if err := res.validate(); err != nil {
		return DuplicateNameError("%v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[res.URI]; exists {
		return DuplicateNameError("resource %q is already registered", res.URI)
	}
	r.resources[res.URI] = res
	return nil
}

// ResolveResource returns the resource registered under uri.
func (r *Registry) ResolveResource(uri string) (Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, exists := r.resources[uri]
	if !exists {
		return Resource{}, NotFoundError("unknown resource %q", uri)
	}
	return res, nil
}

// RegisterPrompt adds a prompt template.
func (r *Registry) RegisterPrompt(p Prompt) error {
	if err := p.validate(); err != nil {
		return DuplicateNameError("%v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prompts[p.Name]; exists {
		return DuplicateNameError("prompt %q is already registered", p.Name)
	}
	r.prompts[p.Name] = p
	return nil
}

// ResolvePrompt returns the prompt registered under name.
func (r *Registry) ResolvePrompt(name string) (Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.prompts[name]
	if !exists {
		return Prompt{}, NotFoundError("unknown prompt %q", name)
	}
	return p, nil
}

// Descriptors returns all registered tools in name-sorted order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]Descriptor, 0, len(r.tools))
	for _, desc := range r.tools {
		descs = append(descs, desc)
	}
	slices.SortFunc(descs, func(a, b Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return descs
}

// Resources returns all registered resources in URI-sorted order.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res)
	}
	slices.SortFunc(out, func(a, b Resource) int {
		return strings.Compare(a.URI, b.URI)
	})
	return out
}

// Prompts returns all registered prompts in name-sorted order.
func (r *Registry) Prompts() []Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Prompt) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// ToolStatus returns the advisory health status of a tool.
func (r *Registry) ToolStatus(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.status[name]
	return status, ok
}

// SetToolStatus updates the advisory health status of a registered tool.
// Unknown names are ignored.
func (r *Registry) SetToolStatus(name string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		r.status[name] = status
	}
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
