// Package tool provides the registry of locally executable tools an agent
// can offer to the model alongside caller-supplied definitions.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/agentwire/agentwire/internal/message"
)

// Tool is the interface every executable tool implements.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage // JSON Schema
	Execute(ctx context.Context, params json.RawMessage) (string, error)
}

// Registry holds the available tools. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any previous tool of the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs a tool by name. Tool failures are folded into the result as
// a JSON error payload so the model can observe them; only an unknown tool
// name is an error to the caller.
func (r *Registry) Execute(ctx context.Context, name string, paramsJSON string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	result, err := t.Execute(ctx, json.RawMessage(paramsJSON))
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error()), nil
	}
	return result, nil
}

// Defs returns definitions for every registered tool, sorted by name.
func (r *Registry) Defs() []message.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]message.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, message.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
