package engine

import (
	"regexp"
	"strings"
	"sync"

	"github.com/laittg/chainable/pkg/api"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are the builder surface members a step name may not
// shadow. Compared case-insensitively, since the fluent surface is
// dispatched by name.
var reservedNames = []string{
	"register",
	"registerfunc",
	"call",
	"then",
	"catch",
	"done",
	"results",
	"lastresult",
	"execute",
	"wait",
	"err",
	"name",
}

// Registry maps step names to their implementations. Rejected
// registrations leave it unchanged.
type Registry struct {
	mu             sync.RWMutex
	steps          map[string]api.StepFunc
	duplicateCheck bool
}

// NewRegistry creates an empty registry. With duplicateCheck enabled,
// registering a name twice fails; otherwise later registrations
// replace earlier ones.
func NewRegistry(duplicateCheck bool) *Registry {
	return &Registry{
		steps:          make(map[string]api.StepFunc),
		duplicateCheck: duplicateCheck,
	}
}

// Register stores fn under name after validating the registration.
func (r *Registry) Register(name string, fn api.StepFunc) error {
	if !identRE.MatchString(name) {
		return &api.InvalidNameError{Name: name}
	}
	for _, reserved := range reservedNames {
		if strings.EqualFold(name, reserved) {
			return &api.ReservedNameError{Name: name}
		}
	}
	if fn == nil {
		return &api.InvalidStepError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.duplicateCheck {
		if _, exists := r.steps[name]; exists {
			return &api.DuplicateStepError{Name: name}
		}
	}

	r.steps[name] = fn
	return nil
}

// Lookup returns the step registered under name.
func (r *Registry) Lookup(name string) (api.StepFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.steps[name]
	return fn, ok
}

// Names returns the registered step names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.steps))
	for name := range r.steps {
		out = append(out, name)
	}
	return out
}
