package access

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

// GNOME Shell "Focused Window D-Bus" extension
const (
	focusDestination = "org.gnome.Shell"
	focusObjectPath  = "/org/gnome/shell/extensions/FocusedWindow"
	focusMethod      = "org.gnome.shell.extensions.FocusedWindow.Get"
)

// FocusTracker reports the desktop file id of the focused application,
// for example "org.gnome.Maps.desktop"
type FocusTracker interface {
	FocusedApp(ctx context.Context) (string, error)
}

// StaticFocus always reports the same application
type StaticFocus string

// FocusedApp implements FocusTracker
func (s StaticFocus) FocusedApp(context.Context) (string, error) {
	return string(s), nil
}

// ShellFocusTracker asks GNOME Shell for the focused window
type ShellFocusTracker struct {
	conn *dbus.Conn
}

// NewShellFocusTracker creates a tracker using conn, normally the session bus
func NewShellFocusTracker(conn *dbus.Conn) *ShellFocusTracker {
	return &ShellFocusTracker{conn: conn}
}

type focusedWindow struct {
	WmClass         string `json:"wm_class"`
	WmClassInstance string `json:"wm_class_instance"`
	Focus           bool   `json:"focus"`
}

// FocusedApp implements FocusTracker
func (t *ShellFocusTracker) FocusedApp(ctx context.Context) (string, error) {
	obj := t.conn.Object(focusDestination, focusObjectPath)

	var payload string
	if err := obj.CallWithContext(ctx, focusMethod, 0).Store(&payload); err != nil {
		return "", fmt.Errorf("failed to query focused window: %w", err)
	}
	return parseFocusedWindow(payload)
}

func parseFocusedWindow(payload string) (string, error) {
	if payload == "" || payload == "null" {
		return "", nil
	}
	var w focusedWindow
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return "", fmt.Errorf("failed to decode focused window: %w", err)
	}
	app := w.WmClass
	if app == "" {
		app = w.WmClassInstance
	}
	if app == "" {
		return "", nil
	}
	return desktopID(app), nil
}

// desktopID turns an app id into its desktop file id
func desktopID(appID string) string {
	if strings.HasSuffix(appID, ".desktop") {
		return appID
	}
	return appID + ".desktop"
}
