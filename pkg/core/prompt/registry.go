package prompt

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

// Registry holds all loaded templates, keyed by id.
type Registry struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

var globalRegistry *Registry
var once sync.Once

// Get returns the global registry singleton, pre-seeded with the built-in
// defaults.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{templates: make(map[string]*Template)}
		for _, t := range defaults() {
			globalRegistry.Register(t)
		}
	})
	return globalRegistry
}

// Register adds or replaces a template. The body is compiled here, so a
// malformed template fails at load time, not on first render.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	tmpl, err := template.New(t.ID).Parse(t.Body)
	if err != nil {
		return fmt.Errorf("parse prompt %s: %w", t.ID, err)
	}
	t.compiled = tmpl

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

// Lookup retrieves a template by id.
func (r *Registry) Lookup(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("prompt not found: %s", id)
}

// Count reports how many templates are registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Render executes the pre-compiled template identified by id against vars.
func (r *Registry) Render(id string, vars any) (string, error) {
	t, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.compiled.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.ID, err)
	}
	return buf.String(), nil
}
