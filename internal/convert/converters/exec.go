package converters

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/eskil/fileforge/internal/logger"
)

// runCommand executes an external tool and surfaces its combined output in
// the error on failure. Diagnostic output from successful runs is logged at
// debug level.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, string(output))
	}
	if len(output) > 0 {
		logger.CtxDebug(ctx, "%s output: %s", name, string(output))
	}
	return nil
}
