package convert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDispatcherConvertSuccess(t *testing.T) {
	conv := &fakeConverter{name: "fake", caps: pairCaps([2]Format{"svg", "png"})}
	d := NewDispatcher(NewRegistry(conv), 0)

	// Raw, un-normalized formats are accepted at the boundary.
	err := d.Convert(context.Background(), Request{
		SourcePath:   "/in/a.svg",
		SourceFormat: "SVG",
		TargetFormat: "PNG",
		TargetPath:   "/out/a.png",
	}, "")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if conv.calls != 1 {
		t.Errorf("converter invoked %d times, want exactly 1", conv.calls)
	}
}

func TestDispatcherUnsupportedPair(t *testing.T) {
	conv := &fakeConverter{name: "fake", caps: pairCaps([2]Format{"svg", "png"})}
	d := NewDispatcher(NewRegistry(conv), 0)

	err := d.Convert(context.Background(), Request{
		SourceFormat: "mp3",
		TargetFormat: "exe",
	}, "")
	if !errors.Is(err, ErrNoConverter) {
		t.Fatalf("expected ErrNoConverter, got %v", err)
	}
	if !strings.Contains(err.Error(), "mp3") || !strings.Contains(err.Error(), "exe") {
		t.Errorf("error should name the pair, got %q", err.Error())
	}
	if conv.calls != 0 {
		t.Errorf("converter invoked %d times for unsupported pair, want 0", conv.calls)
	}
}

func TestDispatcherConverterError(t *testing.T) {
	conv := &fakeConverter{
		name: "fake",
		caps: pairCaps([2]Format{"svg", "png"}),
		convert: func(ctx context.Context, req Request) error {
			return errors.New("boom")
		},
	}
	d := NewDispatcher(NewRegistry(conv), 0)

	err := d.Convert(context.Background(), Request{SourceFormat: "svg", TargetFormat: "png"}, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "fake") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry converter name and cause, got %q", err.Error())
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	conv := &fakeConverter{
		name: "panicky",
		caps: pairCaps([2]Format{"svg", "png"}),
		convert: func(ctx context.Context, req Request) error {
			panic("converter bug")
		},
	}
	d := NewDispatcher(NewRegistry(conv), 0)

	err := d.Convert(context.Background(), Request{SourceFormat: "svg", TargetFormat: "png"}, "")
	if err == nil {
		t.Fatal("expected error from panicking converter")
	}
	if !strings.Contains(err.Error(), "panic") {
		t.Errorf("error should mention the panic, got %q", err.Error())
	}
}

func TestDispatcherTimeout(t *testing.T) {
	conv := &fakeConverter{
		name: "slow",
		caps: pairCaps([2]Format{"svg", "png"}),
		convert: func(ctx context.Context, req Request) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	}
	d := NewDispatcher(NewRegistry(conv), 20*time.Millisecond)

	start := time.Now()
	err := d.Convert(context.Background(), Request{SourceFormat: "svg", TargetFormat: "png"}, "")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error should mention timeout, got %q", err.Error())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s, deadline not enforced", elapsed)
	}
}

func TestDispatcherHonorsHint(t *testing.T) {
	first := &fakeConverter{name: "first", caps: pairCaps([2]Format{"svg", "png"})}
	second := &fakeConverter{name: "second", caps: pairCaps([2]Format{"svg", "png"})}
	d := NewDispatcher(NewRegistry(first, second), 0)

	if err := d.Convert(context.Background(), Request{SourceFormat: "svg", TargetFormat: "png"}, "second"); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if first.calls != 0 || second.calls != 1 {
		t.Errorf("hint ignored: first=%d second=%d calls", first.calls, second.calls)
	}
}
