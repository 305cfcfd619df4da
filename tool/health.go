package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// HealthReport is the outcome of the most recent probe of one tool.
type HealthReport struct {
	Tool       string    `json:"tool"`
	Status     Status    `json:"status"`
	CheckedAt  time.Time `json:"checked_at"`
	DurationMS int64     `json:"duration_ms"`
	Failures   int       `json:"failures,omitempty"`
	Error      string    `json:"error,omitempty"`
}

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// ParseHealthCron parses a UTC-only standard 5-field cron expression used to
// schedule health sweeps.
func ParseHealthCron(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}
