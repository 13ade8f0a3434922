package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/internal/config"
	"github.com/matzehuels/dotview/pkg/viewer"
	"github.com/matzehuels/dotview/pkg/viewer/desktop"
	"github.com/matzehuels/dotview/pkg/viewer/web"
)

// viewerFlags select and size the window.
type viewerFlags struct {
	backend string
	addr    string
	width   int
	height  int
}

func (f *viewerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "viewer backend: desktop, web, headless (default from config)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address for the web backend")
	cmd.Flags().IntVar(&f.width, "width", 0, "window width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "window height in pixels")
}

// session is an open viewer backend and the handle that shows images in it.
type session struct {
	handle *viewer.Handle
	url    string

	// serve runs the backend until ctx is done. Nil for headless sessions.
	serve func(ctx context.Context) error
}

// openViewer builds the backend chosen by flags and configuration.
func (c *CLI) openViewer(f viewerFlags, title string) (*session, error) {
	backend := c.Config.Viewer.Backend
	if f.backend != "" {
		backend = f.backend
	}
	cfg := c.Config.WindowConfig()
	if f.width > 0 {
		cfg.Width = f.width
	}
	if f.height > 0 {
		cfg.Height = f.height
	}
	if title != "" {
		cfg.Title = title + " - " + appName
	}
	opts := []viewer.Option{viewer.WithConfig(cfg), viewer.WithLogger(c.Logger)}

	switch backend {
	case config.ViewerDesktop:
		app := desktop.NewApp()
		h := viewer.NewHandle(app.Factory, append(opts, viewer.WithLoop(app.Loop()))...)
		return &session{handle: h, serve: app.Run}, nil

	case config.ViewerWeb:
		addr := c.Config.Viewer.Addr
		if f.addr != "" {
			addr = f.addr
		}
		srv := web.New(web.WithLogger(c.Logger))
		h := viewer.NewHandle(srv.Factory, append(opts, viewer.WithActivator(viewer.NoopActivator{}))...)
		return &session{
			handle: h,
			url:    "http://" + addr,
			serve:  func(ctx context.Context) error { return srv.ListenAndServe(ctx, addr) },
		}, nil

	case config.ViewerHeadless:
		h := viewer.NewHandle(viewer.NewMemory, append(opts, viewer.WithActivator(viewer.NoopActivator{}))...)
		return &session{handle: h}, nil

	default:
		return nil, fmt.Errorf("unknown viewer backend %q (must be desktop, web or headless)", backend)
	}
}

// run executes work alongside the backend. The backend owns the calling
// goroutine, which matters for desktop windows that must stay on the main
// thread. An error from work stops the backend and is returned.
func (s *session) run(ctx context.Context, work func(ctx context.Context) error) error {
	if s.serve == nil {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		if err := work(ctx); err != nil {
			errc <- err
			cancel()
		}
	}()

	serveErr := s.serve(ctx)
	select {
	case err := <-errc:
		return err
	default:
		return serveErr
	}
}
