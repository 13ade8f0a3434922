package viewer

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestHandle(t *testing.T, opts ...Option) (*Handle, *Loop) {
	t.Helper()
	loop := NewLoop()
	base := []Option{WithLoop(loop), WithActivator(NoopActivator{})}
	return NewHandle(NewMemory, append(base, opts...)...), loop
}

func memoryWindow(t *testing.T, h *Handle) *Memory {
	t.Helper()
	w, err := h.Window()
	if err != nil {
		t.Fatalf("Window() error: %v", err)
	}
	return w.(*Memory)
}

func TestLazyBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	l := NewLazy(func() (int, error) {
		calls.Add(1)
		return 42, nil
	})
	if l.Built() {
		t.Error("Built() = true before Get")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, _ := l.Get(); v != 42 {
				t.Errorf("Get() = %d, want 42", v)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("build called %d times, want 1", n)
	}
	if !l.Built() {
		t.Error("Built() = false after Get")
	}
}

func TestLazyKeepsError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	l := NewLazy(func() (string, error) {
		calls++
		return "", boom
	})

	for i := 0; i < 3; i++ {
		if _, err := l.Get(); !errors.Is(err, boom) {
			t.Errorf("Get() error = %v, want %v", err, boom)
		}
	}
	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}
}

func TestLazyPanicLeavesError(t *testing.T) {
	l := NewLazy(func() (*Memory, error) {
		panic("factory exploded")
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("first Get should propagate the panic")
			}
		}()
		_, _ = l.Get()
	}()

	w, err := l.Get()
	if !errors.Is(err, ErrBuildPanicked) {
		t.Errorf("Get() after panic error = %v, want ErrBuildPanicked", err)
	}
	if w != nil {
		t.Errorf("Get() after panic = %v, want nil", w)
	}
	if !l.Built() {
		t.Error("Built() should report true after a panicked build")
	}
}

func TestShowAfterFactoryPanic(t *testing.T) {
	factory := func(Config) (Window, error) { panic("no display") }
	h := NewHandle(factory, WithLoop(NewLoop()), WithActivator(NoopActivator{}))

	func() {
		defer func() { _ = recover() }()
		_ = h.Show(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	}()

	if err := h.Show(image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, ErrBuildPanicked) {
		t.Errorf("Show() after factory panic = %v, want ErrBuildPanicked", err)
	}
}

func TestLoopOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := 0; i < 5; i++ {
		l.Go(func() { got = append(got, i) })
	}
	if n := l.Pending(); n != 5 {
		t.Errorf("Pending() = %d, want 5", n)
	}
	if n := l.Drain(); n != 5 {
		t.Errorf("Drain() = %d, want 5", n)
	}
	if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("order = %v", got)
	}
	if n := l.Drain(); n != 0 {
		t.Errorf("second Drain() = %d, want 0", n)
	}
}

func TestLoopRunAndCall(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ran := false
	l.Call(func() { ran = true })
	if !ran {
		t.Error("Call() returned before the function ran")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestHandleLazyWindow(t *testing.T) {
	var builds int
	factory := func(cfg Config) (Window, error) {
		builds++
		return NewMemory(cfg)
	}
	h := NewHandle(factory, WithLoop(NewLoop()), WithActivator(NoopActivator{}))

	if h.Built() {
		t.Error("window built before first use")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 3; i++ {
		if err := h.Show(img); err != nil {
			t.Fatalf("Show() error: %v", err)
		}
	}
	if builds != 1 {
		t.Errorf("factory called %d times, want 1", builds)
	}
}

func TestHandleDefaultSize(t *testing.T) {
	h, _ := newTestHandle(t)
	cfg := memoryWindow(t, h).Config()
	if cfg.Width != 1024 || cfg.Height != 768 {
		t.Errorf("window size = %dx%d, want 1024x768", cfg.Width, cfg.Height)
	}

	h, _ = newTestHandle(t, WithConfig(Config{Width: 300, Title: "x"}))
	cfg = memoryWindow(t, h).Config()
	if cfg.Width != 300 || cfg.Height != DefaultHeight || cfg.Title != "x" {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestShowIdempotent(t *testing.T) {
	h, loop := newTestHandle(t)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	for i := 0; i < 2; i++ {
		if err := h.Show(img); err != nil {
			t.Fatalf("Show() error: %v", err)
		}
		loop.Drain()
		w := memoryWindow(t, h)
		if w.Image() != image.Image(img) {
			t.Errorf("show %d: image slot not updated", i)
		}
		if !w.Visible() {
			t.Errorf("show %d: window not visible", i)
		}
	}
}

func TestShowSequentialKeepsLast(t *testing.T) {
	h, loop := newTestHandle(t)
	first := image.NewRGBA(image.Rect(0, 0, 10, 10))
	second := image.NewRGBA(image.Rect(0, 0, 20, 20))

	_ = h.Show(first)
	_ = h.Show(second)
	loop.Drain()

	if got := memoryWindow(t, h).Image(); got != image.Image(second) {
		t.Errorf("Image() bounds = %v, want the second image", got.Bounds())
	}
}

func TestShowSynchronousState(t *testing.T) {
	h, loop := newTestHandle(t)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	w := memoryWindow(t, h)
	w.Close()
	w.Iconify()

	_ = h.Show(img)
	if !w.Visible() || w.Image() == nil {
		t.Error("image slot and visibility should be set before Show returns")
	}
	if !w.Iconified() || len(w.Ops()) != 0 {
		t.Error("bring-to-front should wait for the loop")
	}

	loop.Drain()
	if w.Iconified() {
		t.Error("window still iconified after the loop ran")
	}
}

func TestShowBringToFrontOrder(t *testing.T) {
	var activations atomic.Int32
	h, loop := newTestHandle(t, WithActivator(ActivatorFunc(func(context.Context) error {
		activations.Add(1)
		return errors.New("no window manager")
	})))

	if err := h.Show(image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("Show() should not surface activation errors: %v", err)
	}
	loop.Drain()

	w := memoryWindow(t, h)
	want := []string{"deiconify", "ontop", "repaint", "focus", "notontop"}
	if got := w.Ops(); !slices.Equal(got, want) {
		t.Errorf("Ops() = %v, want %v", got, want)
	}
	if w.AlwaysOnTop() {
		t.Error("always-on-top should be cleared after raising")
	}
	if n := activations.Load(); n != 1 {
		t.Errorf("activator called %d times, want 1", n)
	}
}

func TestShowFactoryError(t *testing.T) {
	boom := errors.New("no display")
	h := NewHandle(func(Config) (Window, error) { return nil, boom }, WithLoop(NewLoop()))

	if err := h.Show(nil); !errors.Is(err, boom) {
		t.Errorf("Show() error = %v, want %v", err, boom)
	}
	if err := h.Show(nil); !errors.Is(err, boom) {
		t.Errorf("second Show() error = %v, want the cached %v", err, boom)
	}
}

func TestShowOwnLoop(t *testing.T) {
	h := NewHandle(NewMemory, WithActivator(NoopActivator{}))
	if err := h.Show(image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}

	// Call queues behind the raise, so it has run once Call returns.
	h.Loop().Call(func() {})
	if ops := memoryWindow(t, h).Ops(); len(ops) == 0 {
		t.Error("own loop did not run the bring-to-front sequence")
	}
}

func TestHandleIDs(t *testing.T) {
	a := NewHandle(NewMemory)
	b := NewHandle(NewMemory)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("handle ids should be unique: %q, %q", a.ID(), b.ID())
	}
	if Default() != Default() {
		t.Error("Default() should return the same handle")
	}
	if Default().ID() != "default" {
		t.Errorf("Default().ID() = %q", Default().ID())
	}
}
