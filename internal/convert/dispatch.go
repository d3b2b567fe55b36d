package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/eskil/fileforge/internal/logger"
)

// Dispatcher resolves one converter per invocation and runs it under a
// per-task timeout. All converter faults, including panics, come back as
// error values so one bad file never takes down its siblings.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher over the registry. A zero timeout
// disables the per-task deadline.
func NewDispatcher(registry *Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		timeout:  timeout,
	}
}

// Convert normalizes both formats, resolves a converter (honoring the
// optional converterName hint) and invokes it exactly once. The returned
// error is terminal for the file; the dispatcher never retries.
func (d *Dispatcher) Convert(ctx context.Context, req Request, converterName string) error {
	req.SourceFormat = NormalizeInputFormat(string(req.SourceFormat))
	req.TargetFormat = NormalizeInputFormat(string(req.TargetFormat))

	conv, err := d.registry.Resolve(converterName, req.SourceFormat, req.TargetFormat)
	if err != nil {
		return err
	}

	ctx = logger.WithField(ctx, logger.FieldConverter, conv.Name())

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := d.invoke(ctx, conv, req); err != nil {
		logger.With(logger.Fields{
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		}).Warn(ctx, "conversion failed: %s to %s: %v", req.SourceFormat, req.TargetFormat, err)

		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("converter %s timed out after %s", conv.Name(), d.timeout)
		}
		return fmt.Errorf("converter %s: %w", conv.Name(), err)
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "conversion finished: %s to %s", req.SourceFormat, req.TargetFormat)
	return nil
}

// invoke shields the caller from converter panics.
func (d *Dispatcher) invoke(ctx context.Context, conv Converter, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return conv.Convert(ctx, req)
}
