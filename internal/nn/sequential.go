package nn

import (
	"strconv"

	"github.com/born-ml/dyngrad/internal/autodiff"
	"github.com/born-ml/dyngrad/internal/tensor"
	"github.com/pkg/errors"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(2, 1, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(1, 2, rng),
//	    nn.NewSigmoid(),
//	)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
//
// Intermediate outputs are released once consumed; the graph keeps its own
// handles to them, so releasing the final output frees the whole chain.
func (s *Sequential) Forward(input *autodiff.Tensor) (*autodiff.Tensor, error) {
	output := input
	for i, module := range s.modules {
		next, err := module.Forward(output)
		if output != input {
			output.Release()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "sequential module %d", i)
		}
		output = next
	}
	return output, nil
}

// Parameters returns the parameters of all contained modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at index i.
func (s *Sequential) Module(i int) Module {
	return s.modules[i]
}

// StateDict collects the state of every Stateful module, keyed "<index>.<name>".
func (s *Sequential) StateDict() map[string]*tensor.Buffer {
	state := make(map[string]*tensor.Buffer)
	for i, module := range s.modules {
		if m, ok := module.(Stateful); ok {
			MergeStateDict(state, strconv.Itoa(i), m.StateDict())
		}
	}
	return state
}

// LoadStateDict restores every Stateful module from its "<index>." entries.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.Buffer) error {
	for i, module := range s.modules {
		if m, ok := module.(Stateful); ok {
			if err := m.LoadStateDict(SubStateDict(stateDict, strconv.Itoa(i))); err != nil {
				return errors.Wrapf(err, "sequential module %d", i)
			}
		}
	}
	return nil
}
