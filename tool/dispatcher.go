package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Request is one inbound tool invocation: a tool name plus JSON-decoded
// arguments. Transient; discarded after the response is written.
type Request struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Response is the tagged result of a dispatched request: either a JSON
// result or a structured failure, never both.
type Response struct {
	Result any    `json:"result,omitempty"`
	Err    *Error `json:"error,omitempty"`
}

// OK reports whether the response carries a result.
func (r Response) OK() bool {
	return r.Err == nil
}

// Recorder receives one record per dispatched request. Implementations must
// not block dispatch; failures to record are logged and dropped.
type Recorder interface {
	Record(ctx context.Context, rec InvocationRecord)
}

// InvocationRecord is the per-request telemetry row handed to a Recorder.
type InvocationRecord struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	OK         bool      `json:"ok"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Dispatcher turns a raw request into a validated invocation and a response.
// It owns argument validation and error translation; the registry it reads
// is injected and read-only after startup, so a dispatcher is safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Registry *Registry
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// NewDispatcher creates a dispatcher bound to a registry.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool: dispatcher registry is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Dispatcher{
		registry: cfg.Registry,
		logger:   logger,
		recorder: cfg.Recorder,
		now:      now,
	}, nil
}

// Registry returns the registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle resolves, validates, and invokes one request. The handler runs at
// most once; every failure mode is translated into a Response, so Handle
// never returns an error and never panics across the boundary.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	start := d.now()

	resp := d.dispatch(ctx, req)
	duration := time.Since(start)

	kind := ""
	if resp.Err != nil {
		kind = resp.Err.Kind
	}
	emitInvokeObservation(InvokeObservation{
		Tool:       req.Tool,
		Success:    resp.OK(),
		ErrorKind:  kind,
		DurationMS: duration.Milliseconds(),
	})
	if d.recorder != nil {
		d.recorder.Record(ctx, InvocationRecord{
			ID:         req.RequestID,
			Tool:       req.Tool,
			OK:         resp.OK(),
			ErrorKind:  kind,
			DurationMS: duration.Milliseconds(),
			CreatedAt:  start,
		})
	}

	if resp.Err != nil {
		d.logger.Warn("tool call failed",
			"request_id", req.RequestID,
			"tool", req.Tool,
			"kind", resp.Err.Kind,
			"error", resp.Err.Message,
			"duration_ms", duration.Milliseconds())
	} else {
		d.logger.Info("tool call",
			"request_id", req.RequestID,
			"tool", req.Tool,
			"duration_ms", duration.Milliseconds())
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Response {
	desc, err := d.registry.Resolve(req.Tool)
	if err != nil {
		return Response{Err: AsError(err)}
	}

	args, err := ValidateArguments(desc, req.Arguments)
	if err != nil {
		return Response{Err: AsError(err)}
	}

	result, err := d.invoke(ctx, desc, args)
	if err != nil {
		return Response{Err: AsError(err)}
	}
	return Response{Result: result}
}

// invoke runs the handler exactly once, converting a panic into an error so
// a misbehaving handler cannot take the server down.
func (d *Dispatcher) invoke(ctx context.Context, desc Descriptor, args map[string]any) (result map[string]any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = HandlerError(fmt.Errorf("handler %q panicked: %v", desc.Name, recovered))
		}
	}()
	return desc.Handler(ctx, args)
}
