package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/autoxsim/internal/integrators"
)

type Registry struct {
	methods map[string]func() integrators.Method
}

func NewRegistry() *Registry {
	r := &Registry{
		methods: make(map[string]func() integrators.Method),
	}

	r.methods["rosenbrock23"] = func() integrators.Method { return integrators.NewRosenbrock23() }
	r.methods["rk45"] = func() integrators.Method { return integrators.NewRK45() }

	return r
}

// GetMethod returns a fresh stepper; steppers hold scratch space and are
// never shared between runs.
func (r *Registry) GetMethod(name string) (integrators.Method, error) {
	fn, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s (available: %v)", name, r.ListMethods())
	}
	return fn(), nil
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
