package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/petal-labs/anther/tool"
)

const defaultQuoteBaseURL = "https://api.quotable.io"

// fallbackQuotes are served when the quote API cannot be reached.
var fallbackQuotes = []map[string]any{
	{"quote": "The only way to do great work is to love what you do.", "author": "Steve Jobs"},
	{"quote": "Innovation distinguishes between a leader and a follower.", "author": "Steve Jobs"},
	{"quote": "Life is what happens to you while you're busy making other plans.", "author": "John Lennon"},
}

// QuoteTool fetches a random quote from quotable.io.
type QuoteTool struct {
	baseURL string
	client  *http.Client
	pick    func(n int) int
}

// QuoteConfig configures the quote tool.
type QuoteConfig struct {
	BaseURL string
	Client  *http.Client
	// Pick selects a fallback quote index; defaults to math/rand.
	Pick func(n int) int
}

// NewQuoteTool creates the get_random_quote tool.
func NewQuoteTool(cfg QuoteConfig) *QuoteTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultQuoteBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	pick := cfg.Pick
	if pick == nil {
		pick = rand.Intn
	}
	return &QuoteTool{baseURL: baseURL, client: client, pick: pick}
}

// Descriptor returns the get_random_quote registration.
func (q *QuoteTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "get_random_quote",
		Description: "Get a random inspirational quote.",
		Params:      []tool.Param{},
		Handler:     q.handle,
		Probe:       q.probe,
	}
}

type quotableResponse struct {
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

func (q *QuoteTool) handle(ctx context.Context, _ map[string]any) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+"/random", nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		fallback := fallbackQuotes[q.pick(len(fallbackQuotes))]
		out := map[string]any{
			"quote":  fallback["quote"],
			"author": fallback["author"],
			"note":   "Fallback quote - API unavailable",
		}
		return out, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote API error: %d", resp.StatusCode)
	}

	var data quotableResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}

	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"quote":  data.Content,
		"author": data.Author,
		"tags":   tags,
	}, nil
}

func (q *QuoteTool) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+"/random", nil)
	if err != nil {
		return err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("quote API unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
