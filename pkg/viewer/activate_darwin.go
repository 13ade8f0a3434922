package viewer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// osascriptActivator brings this process to the front through System Events.
type osascriptActivator struct {
	pid int
}

func systemActivator() Activator {
	return osascriptActivator{pid: os.Getpid()}
}

func (a osascriptActivator) Activate(ctx context.Context) error {
	script := fmt.Sprintf(
		`tell application "System Events" to set frontmost of the first process whose unix id is %d to true`,
		a.pid)
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}
