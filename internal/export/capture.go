package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
)

// PortalCapturer grabs a screen frame through the desktop portal. With
// interactive=false the compositor answers without prompting (Path A);
// with interactive=true the user is asked once, and the capture ends as
// soon as the single frame is read to keep the permission exposure short
// (Path B).
type PortalCapturer struct {
	interactive bool
}

// NewSilentCapturer captures without a permission prompt.
func NewSilentCapturer() *PortalCapturer { return &PortalCapturer{interactive: false} }

// NewPromptCapturer captures behind a one-shot permission prompt.
func NewPromptCapturer() *PortalCapturer { return &PortalCapturer{interactive: true} }

func (p *PortalCapturer) Capture() (image.Image, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	reqOpts := map[string]dbus.Variant{
		"interactive": dbus.MakeVariant(p.interactive),
	}
	call := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", reqOpts)
	if call.Err != nil {
		return nil, call.Err
	}
	var handle dbus.ObjectPath
	if err := call.Store(&handle); err != nil {
		return nil, err
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, err
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for sig := range sigc {
		if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
			continue
		}
		if len(sig.Body) < 2 {
			break
		}
		res, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			break
		}
		uriVar, ok := res["uri"]
		if !ok {
			break
		}
		uri, ok := uriVar.Value().(string)
		if !ok {
			break
		}
		return readCaptureFile(strings.TrimPrefix(uri, "file://"))
	}
	return nil, fmt.Errorf("portal screenshot failed")
}

func readCaptureFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// The portal leaves the frame behind; remove it once decoded.
	defer os.Remove(path)
	return png.Decode(f)
}
