package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/integrators"
	"github.com/san-kum/glacialsim/internal/metrics"
	"github.com/san-kum/glacialsim/internal/models"
)

var (
	ErrUnknownModel      = errors.New("unknown model")
	ErrUnknownIntegrator = errors.New("unknown integrator")
)

// Init overrides a model's starting point. Fields a model does not have are
// ignored.
type Init struct {
	State   dynamo.GlacialState
	Elapsed float64
	V0      float64
}

type ModelFactory func(init Init, stepper integrators.Stepper) (dynamo.Model, error)

type Registry struct {
	models      map[string]ModelFactory
	integrators map[string]func() integrators.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFactory),
		integrators: make(map[string]func() integrators.Stepper),
	}

	r.models["state"] = func(init Init, _ integrators.Stepper) (dynamo.Model, error) {
		p := models.DefaultThresholdParams()
		p.InitState = init.State
		p.InitElapsed = init.Elapsed
		return models.NewThresholdStateModel(p)
	}
	r.models["ice_volume"] = func(init Init, stepper integrators.Stepper) (dynamo.Model, error) {
		p := models.DefaultIceVolumeParams()
		p.InitState = init.State
		p.V0 = init.V0
		return models.NewIceVolumeModel(p, stepper)
	}

	r.integrators["euler"] = func() integrators.Stepper { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Stepper { return integrators.NewRK4() }
	r.integrators["rk4-classic"] = func() integrators.Stepper { return integrators.NewClassicRK4() }

	return r
}

// RegisterModel adds or replaces a model factory.
func (r *Registry) RegisterModel(name string, fn ModelFactory) {
	r.models[name] = fn
}

func (r *Registry) GetModel(name string, init Init, stepper integrators.Stepper) (dynamo.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return fn(init, stepper)
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) DefaultMetrics(model dynamo.Model) []dynamo.Metric {
	return metrics.For(model.Snapshot())
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
