package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"waypoint-route-service/internal/distmatrix"
)

// Executor runs the primary tour strategy in an isolated unit that is torn
// down when ctx ends. Implementations must return ctx.Err() (possibly
// wrapped) when they stop because of ctx.
type Executor interface {
	Run(ctx context.Context, m *distmatrix.Matrix) ([]int, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, m *distmatrix.Matrix) ([]int, error)

func (f ExecutorFunc) Run(ctx context.Context, m *distmatrix.Matrix) ([]int, error) {
	return f(ctx, m)
}

// ProcessExecutor runs Heuristic in a child process and kills it when the
// context expires. By default the child is the current executable, which must
// call MaybeRunWorker at startup.
type ProcessExecutor struct {
	path      string
	args      []string
	env       []string
	waitDelay time.Duration
}

// ProcessOption customises a ProcessExecutor.
type ProcessOption func(*ProcessExecutor)

// WithCommand runs path with args instead of the current executable.
func WithCommand(path string, args ...string) ProcessOption {
	return func(p *ProcessExecutor) {
		p.path = path
		p.args = args
	}
}

// WithEnv appends KEY=VALUE entries to the worker environment.
func WithEnv(kv ...string) ProcessOption {
	return func(p *ProcessExecutor) { p.env = append(p.env, kv...) }
}

func NewProcessExecutor(opts ...ProcessOption) (*ProcessExecutor, error) {
	p := &ProcessExecutor{waitDelay: 2 * time.Second}
	for _, o := range opts {
		o(p)
	}

	if strings.TrimSpace(p.path) == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("new process executor: resolve executable: %w", err)
		}
		p.path = exe
	}

	return p, nil
}

func (p *ProcessExecutor) Run(ctx context.Context, m *distmatrix.Matrix) ([]int, error) {
	cmd := exec.CommandContext(ctx, p.path, p.args...)
	cmd.Env = append(os.Environ(), WorkerEnv+"=1")
	cmd.Env = append(cmd.Env, p.env...)
	cmd.WaitDelay = p.waitDelay

	// Stream the matrix instead of buffering a second copy of it.
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(WriteMatrix(pw, m))
	}()
	defer pr.Close()

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: 4 << 10}
	cmd.Stdin = pr
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("tsp worker stopped: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("tsp worker exited with code %d: %s", exitErr.ExitCode(), stderr.String())
		}
		return nil, fmt.Errorf("tsp worker: %w", err)
	}

	if stdout.Len() == 0 {
		return nil, errors.New("tsp worker: no result on stdout")
	}

	perm, err := ReadPermutation(&stdout)
	if err != nil {
		return nil, fmt.Errorf("tsp worker: %w", err)
	}
	return perm, nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return strings.TrimSpace(string(t.buf)) }
