package download

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chorus/internal/services"
)

type stubExecutor struct {
	failures int
	calls    int
	lines    []string
	lastArgs []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls++
	s.lastArgs = args
	for _, line := range s.lines {
		if onStdout != nil {
			onStdout(line)
		}
	}
	if s.calls <= s.failures {
		return errors.New("exit status 1")
	}
	return nil
}

func newTestRunner(t *testing.T, exec Executor) *Runner {
	t.Helper()
	r, err := New("spotdl", 3, 5, 0, nil, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return r
}

func TestFetchSucceedsFirstAttempt(t *testing.T) {
	exec := &stubExecutor{lines: []string{"Downloaded 3 songs"}}
	r := newTestRunner(t, exec)

	var seen []string
	err := r.Fetch(context.Background(), "https://example.com/playlist", t.TempDir(), func(line string) {
		seen = append(seen, line)
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("calls = %d, want 1", exec.calls)
	}
	if len(exec.lastArgs) != 3 || exec.lastArgs[0] != "https://example.com/playlist" || exec.lastArgs[1] != "--output" {
		t.Errorf("args = %v", exec.lastArgs)
	}

	joined := strings.Join(seen, "\n")
	if !strings.Contains(joined, "attempt 1/3") {
		t.Errorf("missing attempt banner in output: %q", joined)
	}
	if !strings.Contains(joined, "Downloaded 3 songs") {
		t.Errorf("process output not streamed: %q", joined)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	exec := &stubExecutor{failures: 2}
	r := newTestRunner(t, exec)

	if err := r.Fetch(context.Background(), "https://example.com/p", t.TempDir(), nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if exec.calls != 3 {
		t.Fatalf("calls = %d, want 3", exec.calls)
	}
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	exec := &stubExecutor{failures: 10}
	r := newTestRunner(t, exec)

	err := r.Fetch(context.Background(), "https://example.com/p", t.TempDir(), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
	if exec.calls != 3 {
		t.Fatalf("calls = %d, want exactly the retry budget", exec.calls)
	}
}

func TestFetchValidation(t *testing.T) {
	r := newTestRunner(t, &stubExecutor{})
	if err := r.Fetch(context.Background(), "   ", t.TempDir(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	if _, err := New("", 3, 5, 0, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("New with empty binary: %v", err)
	}
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	exec := &stubExecutor{failures: 10}
	r := newTestRunner(t, exec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Fetch(ctx, "https://example.com/p", t.TempDir(), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
	if exec.calls != 1 {
		t.Fatalf("calls = %d, want 1 after cancellation", exec.calls)
	}
}
