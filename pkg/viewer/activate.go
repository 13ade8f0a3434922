package viewer

import "context"

// Activator asks the operating system to give the current process focus.
// Failures are expected on some desktops; callers discard them.
type Activator interface {
	Activate(ctx context.Context) error
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(ctx context.Context) error

// Activate calls f.
func (f ActivatorFunc) Activate(ctx context.Context) error { return f(ctx) }

// NoopActivator does nothing.
type NoopActivator struct{}

// Activate returns nil.
func (NoopActivator) Activate(context.Context) error { return nil }

// SystemActivator returns the activator for the current platform.
func SystemActivator() Activator { return systemActivator() }
