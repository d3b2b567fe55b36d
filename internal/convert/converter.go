package convert

import "context"

// Request describes one conversion invocation. Paths are local; how the
// converter produces TargetPath from SourcePath is its own business.
type Request struct {
	SourcePath   string
	SourceFormat Format
	TargetFormat Format
	TargetPath   string
	Options      map[string]string
}

// Capabilities declares which (input, output) format pairs a converter
// supports. Outputs is keyed by input format; it is a pair subset, not a
// full cross product.
type Capabilities struct {
	Inputs  []Format
	Outputs map[Format][]Format
}

// Supports reports whether the (source, target) pair is declared.
func (c Capabilities) Supports(source, target Format) bool {
	for _, out := range c.Outputs[source] {
		if out == target {
			return true
		}
	}
	return false
}

// Converter is the capability contract each pluggable implementation
// satisfies. Implementations may shell out, call an HTTP sidecar, or
// convert natively; on success TargetPath holds a valid file in the target
// format.
type Converter interface {
	Name() string
	Capabilities() Capabilities
	Convert(ctx context.Context, req Request) error
}
