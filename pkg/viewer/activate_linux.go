package viewer

import (
	"context"
	"errors"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Activator finds this process's top-level windows through the window
// manager's client list and asks it to activate them.
type x11Activator struct {
	pid uint32
}

func systemActivator() Activator {
	return x11Activator{pid: uint32(os.Getpid())}
}

var errNoX11Window = errors.New("no X11 window owned by this process")

func (a x11Activator) Activate(ctx context.Context) error {
	if os.Getenv("DISPLAY") == "" {
		return errors.New("DISPLAY not set")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	xc, err := xgb.NewConn()
	if err != nil {
		return err
	}
	defer xc.Close()

	root := xproto.Setup(xc).DefaultScreen(xc).Root

	clientList, err := internAtom(xc, "_NET_CLIENT_LIST")
	if err != nil {
		return err
	}
	wmPID, err := internAtom(xc, "_NET_WM_PID")
	if err != nil {
		return err
	}
	activeWindow, err := internAtom(xc, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	prop, err := xproto.GetProperty(xc, false, root, clientList, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil {
		return err
	}

	found := false
	for i := 0; i+4 <= len(prop.Value); i += 4 {
		win := xproto.Window(xgb.Get32(prop.Value[i:]))
		pid, err := xproto.GetProperty(xc, false, win, wmPID, xproto.AtomCardinal, 0, 1).Reply()
		if err != nil || len(pid.Value) < 4 || xgb.Get32(pid.Value) != a.pid {
			continue
		}
		found = true

		// 1 = request from a normal application
		data := xproto.ClientMessageDataUnionData32New([]uint32{1, xproto.TimeCurrentTime, 0, 0, 0})
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: win,
			Type:   activeWindow,
			Data:   data,
		}
		mask := xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify
		if err := xproto.SendEventChecked(xc, false, root, uint32(mask), string(ev.Bytes())).Check(); err != nil {
			return err
		}
	}
	if !found {
		return errNoX11Window
	}
	return nil
}

func internAtom(xc *xgb.Conn, name string) (xproto.Atom, error) {
	r, err := xproto.InternAtom(xc, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	if r.Atom == xproto.AtomNone {
		return 0, errors.New("atom " + name + " not supported by the window manager")
	}
	return r.Atom, nil
}
