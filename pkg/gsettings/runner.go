package gsettings

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

// DefaultTimeout bounds a single settings-store call. The store normally
// answers in milliseconds; a stuck session bus must not wedge the package
// manager's whole transaction.
const DefaultTimeout = 30 * time.Second

// ExecRunner runs commands with exec, capturing stdout.
type ExecRunner struct {
	Timeout time.Duration
	logger  zerolog.Logger
}

// NewExecRunner creates a Runner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Timeout: DefaultTimeout,
		logger:  logging.GetLogger("gsettings.exec"),
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	r.logger.Debug().
		Str("command", name).
		Strs("args", args).
		Msg("Executing command")

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.String(), nil
}
