package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/petal-labs/anther/tool"
)

const defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherTool fetches current conditions from OpenWeatherMap in metric
// units. A missing API key fails only this handler, never startup.
type WeatherTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// WeatherConfig configures the weather tool.
type WeatherConfig struct {
	// APIKey is read from OPENWEATHER_API_KEY by the caller.
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewWeatherTool creates the get_weather tool.
func NewWeatherTool(cfg WeatherConfig) *WeatherTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherTool{apiKey: cfg.APIKey, baseURL: baseURL, client: client}
}

// Descriptor returns the get_weather registration.
func (w *WeatherTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "get_weather",
		Description: "Get current weather information for a city.",
		Params: []tool.Param{
			{Name: "city", Type: tool.TypeString, Required: true, Description: "Name of the city"},
		},
		Handler: w.handle,
		Probe:   w.probe,
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (w *WeatherTool) handle(ctx context.Context, args map[string]any) (map[string]any, error) {
	city := args["city"].(string)

	if w.apiKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is not set")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", w.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		// API unreachable: fall back to the demo payload.
		return demoWeather(city), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error: %d", resp.StatusCode)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	description := ""
	if len(data.Weather) > 0 {
		description = data.Weather[0].Description
	}

	return map[string]any{
		"city":        data.Name,
		"country":     data.Sys.Country,
		"temperature": data.Main.Temp,
		"description": description,
		"humidity":    data.Main.Humidity,
		"pressure":    data.Main.Pressure,
	}, nil
}

// demoWeather is the canned payload served when the upstream API cannot be
// reached, so demos keep working without connectivity.
func demoWeather(city string) map[string]any {
	return map[string]any{
		"city":        city,
		"temperature": 22,
		"description": "partly cloudy",
		"humidity":    65,
		"pressure":    1013,
		"note":        "Demo data - API key needed for real data",
	}
}

// probe checks that the weather API endpoint is reachable. Any HTTP
// response counts as reachable; only transport failures are unhealthy.
func (w *WeatherTool) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather API unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
