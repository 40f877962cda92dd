package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/observability"
)

const maxParamsBytes = 64 * 1024

// Registry holds the tools available to the assistant and validates every
// invocation's parameters against the tool's schema before execution.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	logger  *slog.Logger
	metrics *observability.Metrics

	schemaCache sync.Map // tool name -> *jsonschema.Schema
}

// NewRegistry creates an empty registry. logger and metrics may be nil.
func NewRegistry(logger *slog.Logger, metrics *observability.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:   make(map[string]Tool),
		logger:  logger,
		metrics: metrics,
	}
}

// Register adds a tool. Re-registering a name replaces the previous tool
// and invalidates its compiled schema.
func (r *Registry) Register(t Tool) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("register: tool must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	r.schemaCache.Delete(t.Name())
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Execute validates params against the tool's schema and runs it. Unknown
// tools and schema violations come back as tagged error results so the
// model can correct itself; only marshaling or execution faults surface as
// Go errors.
func (r *Registry) Execute(ctx context.Context, rc *RunContext, name string, params json.RawMessage) (*ToolResult, error) {
	tool, ok := r.Get(name)
	if !ok {
		r.count(name, "unknown")
		return errResultDetail(ErrInvalidInput, "unknown tool: "+name), nil
	}
	if len(params) > maxParamsBytes {
		r.count(name, "rejected")
		return errResultDetail(ErrInvalidInput, "parameters exceed size limit"), nil
	}
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	if err := r.validate(tool, params); err != nil {
		r.count(name, "rejected")
		r.logger.Debug("tool input rejected", "tool", name, "request_id", rc.RequestID, "error", err)
		return errResultDetail(ErrInvalidInput, err.Error()), nil
	}

	result, err := tool.Execute(ctx, rc, params)
	switch {
	case err != nil:
		r.count(name, "error")
		r.logger.Error("tool execution failed", "tool", name, "request_id", rc.RequestID, "error", err)
		return nil, err
	case result != nil && result.IsError:
		r.count(name, "domain_error")
	default:
		r.count(name, "ok")
	}
	return result, nil
}

func (r *Registry) validate(tool Tool, params json.RawMessage) error {
	schema, err := r.compiled(tool)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(params, &doc); err != nil {
		return fmt.Errorf("parameters are not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return simplifyValidationError(err)
	}
	return nil
}

func (r *Registry) compiled(tool Tool) (*jsonschema.Schema, error) {
	if cached, ok := r.schemaCache.Load(tool.Name()); ok {
		return cached.(*jsonschema.Schema), nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(tool.Schema()))); err != nil {
		return nil, fmt.Errorf("schema for %s: %w", tool.Name(), err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", tool.Name(), err)
	}
	r.schemaCache.Store(tool.Name(), schema)
	return schema, nil
}

func simplifyValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if loc == "" {
		return fmt.Errorf("invalid parameters: %s", leaf.Message)
	}
	return fmt.Errorf("invalid parameter %q: %s", loc, leaf.Message)
}

func (r *Registry) count(tool, status string) {
	if r.metrics != nil {
		r.metrics.ToolExecutions.WithLabelValues(tool, status).Inc()
	}
}
