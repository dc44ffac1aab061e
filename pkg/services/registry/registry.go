package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/activereport/pkg/report"
)

var ErrUnknownResource = errors.New("unknown report resource")

// Registry maps resource names to report definitions
type Registry interface {
	// Register adds a report definition under the given resource name
	Register(resource string, def *report.Definition) error
	// Lookup returns the definition registered for resource
	Lookup(resource string) (*report.Definition, error)
	// ListResources returns the registered resource names in sorted order
	ListResources() []string
}

type registry struct {
	mu          sync.RWMutex
	definitions map[string]*report.Definition
}

// NewRegistry creates a registry pre-populated with definitions
func NewRegistry(definitions map[string]*report.Definition) (Registry, error) {
	r := &registry{
		definitions: make(map[string]*report.Definition),
	}
	for resource, def := range definitions {
		if err := r.Register(resource, def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *registry) Register(resource string, def *report.Definition) error {
	if resource == "" {
		return fmt.Errorf("resource name cannot be empty")
	}
	if def == nil {
		return fmt.Errorf("definition cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[resource]; exists {
		return fmt.Errorf("resource %q is already registered", resource)
	}

	r.definitions[resource] = def
	return nil
}

func (r *registry) Lookup(resource string) (*report.Definition, error) {
	r.mu.RLock()
	def, exists := r.definitions[resource]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return def, nil
}

func (r *registry) ListResources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources := make([]string, 0, len(r.definitions))
	for resource := range r.definitions {
		resources = append(resources, resource)
	}
	sort.Strings(resources)
	return resources
}
