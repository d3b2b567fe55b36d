package converters

import (
	"context"

	"github.com/eskil/fileforge/internal/convert"
)

// Resvg rasterizes SVG files to PNG through the resvg command line tool.
type Resvg struct {
	binary string
}

// NewResvg creates the resvg converter. binary defaults to "resvg" when
// empty.
func NewResvg(binary string) *Resvg {
	if binary == "" {
		binary = "resvg"
	}
	return &Resvg{binary: binary}
}

func (r *Resvg) Name() string {
	return "resvg"
}

func (r *Resvg) Capabilities() convert.Capabilities {
	return convert.Capabilities{
		Inputs: []convert.Format{"svg"},
		Outputs: map[convert.Format][]convert.Format{
			"svg": {"png"},
		},
	}
}

func (r *Resvg) Convert(ctx context.Context, req convert.Request) error {
	return runCommand(ctx, r.binary, req.SourcePath, req.TargetPath)
}
