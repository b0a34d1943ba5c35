package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"chorus/internal/logging"
	"chorus/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner invokes the downloader binary for a playlist URL and deposits the
// resulting files in the inbox directory.
type Runner struct {
	binary     string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	exec       Executor
	logger     *slog.Logger

	// sleep is replaceable so retry tests run without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a downloader runner. maxRetries is the total attempt
// budget; retryDelaySeconds is the fixed pause between attempts.
func New(binary string, maxRetries, retryDelaySeconds, timeoutSeconds int, logger *slog.Logger, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "download", "new", "downloader binary required", nil)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		binary:     binary,
		maxRetries: maxRetries,
		retryDelay: time.Duration(retryDelaySeconds) * time.Second,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		exec:       commandExecutor{},
		logger:     logging.NewComponentLogger(logger, "download"),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Fetch runs the downloader for url, writing into destDir. Stdout and
// stderr lines are forwarded to onLine as they arrive. Failed attempts are
// retried with the fixed delay; once the attempt budget is exhausted the
// last failure is returned as a terminal external-tool error.
func (r *Runner) Fetch(ctx context.Context, url, destDir string, onLine func(string)) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return services.Wrap(services.ErrValidation, "download", "fetch", "url required", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "fetch", "create download directory", err)
	}

	args := []string{url, "--output", destDir}

	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		r.logger.Info("downloader attempt",
			logging.Int("attempt", attempt),
			logging.Int("max", r.maxRetries),
			logging.String("url", url))
		if onLine != nil {
			onLine(fmt.Sprintf("Running %s attempt %d/%d", r.binary, attempt, r.maxRetries))
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if r.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		err := r.exec.Run(attemptCtx, r.binary, args, onLine)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			r.logger.Info("download finished", logging.String("url", url))
			return nil
		}
		lastErr = err
		r.logger.Warn("downloader attempt failed",
			logging.Int("attempt", attempt),
			logging.Error(err))

		if attempt == r.maxRetries {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return services.Wrap(services.ErrExternalTool, "download", "fetch", "download cancelled", ctxErr)
		}
		if onLine != nil {
			onLine(fmt.Sprintf("Retrying in %s...", r.retryDelay))
		}
		if err := r.sleep(ctx, r.retryDelay); err != nil {
			return services.Wrap(services.ErrExternalTool, "download", "fetch", "download cancelled", err)
		}
	}

	return services.Wrap(services.ErrExternalTool, "download", "fetch",
		fmt.Sprintf("downloader failed after %d attempts", r.maxRetries), lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
