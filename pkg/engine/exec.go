package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dotview/pkg/errors"
	"github.com/matzehuels/dotview/pkg/imagestore"
	"github.com/matzehuels/dotview/pkg/logging"
	"github.com/matzehuels/dotview/pkg/observability"
)

// Exec runs an external layout engine as a subprocess.
//
// Exec holds no state between calls; each Render owns its process and
// buffers, so one Exec may be shared by any number of goroutines.
type Exec struct {
	// Command is the engine executable, looked up on PATH.
	// Empty means DefaultCommand.
	Command string
}

// NewExec returns an Exec running command.
func NewExec(command string) *Exec {
	return &Exec{Command: command}
}

// Name returns the engine command.
func (e *Exec) Name() string {
	if e == nil || e.Command == "" {
		return DefaultCommand
	}
	return e.Command
}

// Render runs `<command> -T<format>` with descriptor on stdin.
//
// The returned error is a *RenderError when the engine ran but its output was
// empty or, for raster formats, undecodable. It carries ErrCodeIO when the
// engine could not be started or its streams could not be read.
func (e *Exec) Render(ctx context.Context, descriptor string, format Format) (Output, error) {
	command := e.Name()
	logger := logging.FromContext(ctx).With("render", uuid.NewString()[:8])
	hooks := observability.Render()

	hooks.OnRenderStart(ctx, command, string(format))
	start := time.Now()

	out, err := e.run(ctx, command, descriptor, format)

	elapsed := time.Since(start)
	hooks.OnRenderComplete(ctx, command, string(format), len(out.Data), elapsed, err)
	if err != nil {
		logger.Debug("engine failed", "command", command, "format", format, "err", firstLine(err.Error()))
		return Output{}, err
	}
	logger.Debug("engine done", "command", command, "format", format,
		"bytes", len(out.Data), "elapsed", elapsed.Round(time.Millisecond))
	return out, nil
}

func (e *Exec) run(ctx context.Context, command, descriptor string, format Format) (Output, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return Output{}, errors.Wrap(errors.ErrCodeIO, err, "layout engine %q is not available", command)
	}

	cmd := exec.CommandContext(ctx, path, format.Flag())
	cmd.Stdin = strings.NewReader(descriptor)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, ctxErr
	}

	// Output decides success; the exit status is ignored.
	var exitErr *exec.ExitError
	if runErr != nil && !stderrors.As(runErr, &exitErr) {
		return Output{}, errors.Wrap(errors.ErrCodeIO, runErr, "run %s", command)
	}

	out := Output{
		Format: format,
		Data:   stdout.Bytes(),
		Stderr: stderr.String(),
	}
	if err := accept(&out); err != nil {
		return Output{}, &RenderError{
			Engine:     command,
			Descriptor: descriptor,
			Stderr:     out.Stderr,
			Cause:      err,
		}
	}
	return out, nil
}

// accept applies the success test to out, decoding raster data in place.
// A nil return means out is usable.
func accept(out *Output) error {
	if len(out.Data) == 0 {
		return errEmptyOutput
	}
	if !out.Format.Raster() {
		return nil
	}
	img, err := imagestore.Decode(out.Data)
	if err != nil {
		return err
	}
	out.Image = img
	return nil
}

// waitDelay bounds how long a cancelled render waits for the engine's
// output pipes to close after the process is killed.
const waitDelay = time.Second

var errEmptyOutput = stderrors.New("engine produced no output")

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ Renderer = (*Exec)(nil)
