package tool

import (
	"context"
	"fmt"
	"regexp"
)

var validResourceURI = regexp.MustCompile(`^[a-z][a-z0-9_]*(/[a-z][a-z0-9_]*)*$`)

// ReaderFunc produces the current value of a resource.
type ReaderFunc func(ctx context.Context) (string, error)

// Resource is a named, remotely readable value exposed via a URI-style
// identifier. Unlike tools, resources take no request body.
type Resource struct {
	URI         string     `json:"uri"`
	Description string     `json:"description,omitempty"`
	MimeType    string     `json:"mime_type,omitempty"`
	Reader      ReaderFunc `json:"-"`
}

func (r Resource) validate() error {
	if r.URI == "" {
		return fmt.Errorf("resource uri is required")
	}
	if !validResourceURI.MatchString(r.URI) {
		return fmt.Errorf("resource uri %q is invalid: use slash-separated lowercase segments", r.URI)
	}
	if r.Reader == nil {
		return fmt.Errorf("resource %q has no reader", r.URI)
	}
	return nil
}
