package convert

import (
	"context"
	"errors"
	"testing"
)

// fakeConverter is a converter stub with declared capabilities and a
// scriptable Convert func.
type fakeConverter struct {
	name    string
	caps    Capabilities
	calls   int
	convert func(ctx context.Context, req Request) error
}

func (f *fakeConverter) Name() string { return f.name }

func (f *fakeConverter) Capabilities() Capabilities { return f.caps }

func (f *fakeConverter) Convert(ctx context.Context, req Request) error {
	f.calls++
	if f.convert != nil {
		return f.convert(ctx, req)
	}
	return nil
}

func pairCaps(pairs ...[2]Format) Capabilities {
	caps := Capabilities{Outputs: make(map[Format][]Format)}
	seen := make(map[Format]bool)
	for _, p := range pairs {
		if !seen[p[0]] {
			seen[p[0]] = true
			caps.Inputs = append(caps.Inputs, p[0])
		}
		caps.Outputs[p[0]] = append(caps.Outputs[p[0]], p[1])
	}
	return caps
}

func TestRegistryResolveFirstMatch(t *testing.T) {
	first := &fakeConverter{name: "first", caps: pairCaps([2]Format{"svg", "png"})}
	second := &fakeConverter{name: "second", caps: pairCaps([2]Format{"svg", "png"}, [2]Format{"svg", "jpeg"})}
	r := NewRegistry(first, second)

	// First-match by registration order, deterministic across calls.
	for i := 0; i < 10; i++ {
		c, err := r.Resolve("", "svg", "png")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if c.Name() != "first" {
			t.Fatalf("Resolve picked %q, want %q", c.Name(), "first")
		}
	}

	// A pair only the second converter supports falls through to it.
	c, err := r.Resolve("", "svg", "jpeg")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Name() != "second" {
		t.Errorf("Resolve picked %q, want %q", c.Name(), "second")
	}
}

func TestRegistryResolveWithName(t *testing.T) {
	first := &fakeConverter{name: "first", caps: pairCaps([2]Format{"svg", "png"})}
	second := &fakeConverter{name: "second", caps: pairCaps([2]Format{"svg", "png"})}
	r := NewRegistry(first, second)

	c, err := r.Resolve("second", "svg", "png")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Name() != "second" {
		t.Errorf("Resolve picked %q, want %q", c.Name(), "second")
	}

	// The named converter must support the exact pair.
	if _, err := r.Resolve("second", "svg", "jpeg"); !errors.Is(err, ErrNoConverter) {
		t.Errorf("expected ErrNoConverter for unsupported pair, got %v", err)
	}

	if _, err := r.Resolve("missing", "svg", "png"); !errors.Is(err, ErrNoConverter) {
		t.Errorf("expected ErrNoConverter for unknown name, got %v", err)
	}
}

func TestRegistryResolveNoMatch(t *testing.T) {
	r := NewRegistry(&fakeConverter{name: "only", caps: pairCaps([2]Format{"svg", "png"})})

	_, err := r.Resolve("", "mp3", "exe")
	if !errors.Is(err, ErrNoConverter) {
		t.Fatalf("expected ErrNoConverter, got %v", err)
	}
}

func TestRegistryListTargets(t *testing.T) {
	c := &fakeConverter{name: "multi", caps: pairCaps(
		[2]Format{"svg", "png"},
		[2]Format{"webp", "png"},
		[2]Format{"webp", "jpeg"},
	)}
	r := NewRegistry(c)

	targets := r.ListTargets()
	got := targets["multi"]
	want := []Format{"png", "jpeg"}
	if len(got) != len(want) {
		t.Fatalf("ListTargets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListTargets[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryListTargetsFor(t *testing.T) {
	svgOnly := &fakeConverter{name: "svg-only", caps: pairCaps([2]Format{"svg", "png"})}
	raster := &fakeConverter{name: "raster", caps: pairCaps([2]Format{"webp", "png"})}
	r := NewRegistry(svgOnly, raster)

	targets := r.ListTargetsFor("svg")
	if len(targets) != 1 {
		t.Fatalf("ListTargetsFor(svg) returned %d converters, want 1", len(targets))
	}
	if _, ok := targets["svg-only"]; !ok {
		t.Error("ListTargetsFor(svg) misses svg-only")
	}

	// Unknown formats fail soft.
	if got := r.ListTargetsFor("nope"); len(got) != 0 {
		t.Errorf("ListTargetsFor(nope) = %v, want empty", got)
	}
}

func TestRegistryListInputs(t *testing.T) {
	c := &fakeConverter{name: "conv", caps: pairCaps([2]Format{"svg", "png"}, [2]Format{"webp", "png"})}
	r := NewRegistry(c)

	inputs := r.ListInputs("conv")
	if len(inputs) != 2 || inputs[0] != "svg" || inputs[1] != "webp" {
		t.Errorf("ListInputs = %v, want [svg webp]", inputs)
	}

	if r.ListInputs("missing") != nil {
		t.Error("ListInputs for unknown converter should be nil")
	}
}
