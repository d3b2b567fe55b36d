package convert

import (
	"errors"
	"fmt"
)

// ErrNoConverter is returned when no registered converter supports a
// requested (source, target) pair.
var ErrNoConverter = errors.New("no converter available")

// Registry is the immutable, ordered catalog of converters. Registration
// order matters: when no converter name is given, Resolve picks the first
// registered converter supporting the pair, so the order silently
// determines which implementation serves overlapping capabilities. Build
// it once at startup and pass it by reference.
type Registry struct {
	converters []Converter
	byName     map[string]Converter
}

// NewRegistry creates a registry over the given converters, preserving
// their order.
func NewRegistry(converters ...Converter) *Registry {
	r := &Registry{
		byName: make(map[string]Converter, len(converters)),
	}
	for _, c := range converters {
		r.converters = append(r.converters, c)
		r.byName[c.Name()] = c
	}
	return r
}

// Converters returns all registered converters in registration order.
func (r *Registry) Converters() []Converter {
	return r.converters
}

// ListTargets returns, per converter, every output format it can produce,
// in declaration order without duplicates. Used to populate target-format
// selection.
func (r *Registry) ListTargets() map[string][]Format {
	targets := make(map[string][]Format, len(r.converters))
	for _, c := range r.converters {
		caps := c.Capabilities()
		seen := make(map[Format]bool)
		var outs []Format
		for _, in := range caps.Inputs {
			for _, out := range caps.Outputs[in] {
				if !seen[out] {
					seen[out] = true
					outs = append(outs, out)
				}
			}
		}
		targets[c.Name()] = outs
	}
	return targets
}

// ListTargetsFor restricts ListTargets to converters accepting the given
// source format. Unknown formats yield an empty map rather than an error.
func (r *Registry) ListTargetsFor(source Format) map[string][]Format {
	targets := make(map[string][]Format)
	for _, c := range r.converters {
		caps := c.Capabilities()
		outs := caps.Outputs[source]
		if len(outs) == 0 {
			continue
		}
		targets[c.Name()] = outs
	}
	return targets
}

// ListInputs returns the accepted input formats of one converter, in
// declaration order. Nil for unknown converters.
func (r *Registry) ListInputs(name string) []Format {
	c, ok := r.byName[name]
	if !ok {
		return nil
	}
	return c.Capabilities().Inputs
}

// Resolve selects the converter for a (source, target) pair. With a name,
// that converter must support the exact pair; without one, the first
// registered converter supporting the pair wins. First-match, not
// best-match: resolution is deterministic for an unchanged registry.
func (r *Registry) Resolve(name string, source, target Format) (Converter, error) {
	if name != "" {
		c, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown converter %q", ErrNoConverter, name)
		}
		if !c.Capabilities().Supports(source, target) {
			return nil, fmt.Errorf("%w: converter %q does not support %s to %s",
				ErrNoConverter, name, source, target)
		}
		return c, nil
	}

	for _, c := range r.converters {
		if c.Capabilities().Supports(source, target) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w for %s to %s", ErrNoConverter, source, target)
}
