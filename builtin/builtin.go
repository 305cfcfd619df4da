// Package builtin provides the native tool, resource, and prompt
// implementations registered at server startup: workspace file CRUD, the
// review checklist, external weather and quote APIs, and JSON inspection.
package builtin

import (
	"net/http"
	"time"

	"github.com/petal-labs/anther/review"
	"github.com/petal-labs/anther/tool"
)

// Options configures the built-in registrations.
type Options struct {
	Workspace string
	// WeatherAPIKey comes from OPENWEATHER_API_KEY; empty means the
	// get_weather handler fails per call while everything else works.
	WeatherAPIKey  string
	WeatherBaseURL string
	QuoteBaseURL   string
	HTTPClient     *http.Client
	Checker        *review.Checker
	ServerName     string
	Version        string
	Started        time.Time
}

// RegisterAll registers every built-in tool, resource, and prompt. Any
// registration failure is returned immediately; callers treat it as fatal
// to startup.
func RegisterAll(reg *tool.Registry, opts Options) (*FileTools, error) {
	if opts.Checker == nil {
		opts.Checker = review.NewChecker(0)
	}
	if opts.ServerName == "" {
		opts.ServerName = "Anther Tool Server"
	}
	if opts.Started.IsZero() {
		opts.Started = time.Now().UTC()
	}

	files, err := NewFileTools(opts.Workspace)
	if err != nil {
		return nil, err
	}

	descriptors := files.Descriptors()
	descriptors = append(descriptors,
		NewWeatherTool(WeatherConfig{
			APIKey:  opts.WeatherAPIKey,
			BaseURL: opts.WeatherBaseURL,
			Client:  opts.HTTPClient,
		}).Descriptor(),
		NewQuoteTool(QuoteConfig{
			BaseURL: opts.QuoteBaseURL,
			Client:  opts.HTTPClient,
		}).Descriptor(),
		JSONDataDescriptor(),
		CodeReviewDescriptor(opts.Checker),
	)
	for _, desc := range descriptors {
		if err := reg.Register(desc); err != nil {
			return nil, err
		}
	}

	resources := []tool.Resource{
		ServerInfoResource(reg, opts.ServerName, opts.Version, files.Root(), opts.Started),
		WorkspaceStatsResource(files.Root()),
	}
	for _, res := range resources {
		if err := reg.RegisterResource(res); err != nil {
			return nil, err
		}
	}

	for _, p := range Prompts() {
		if err := reg.RegisterPrompt(p); err != nil {
			return nil, err
		}
	}

	return files, nil
}
