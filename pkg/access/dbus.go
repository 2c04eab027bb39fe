package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	PortalObjectPath = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	AccessInterface  = "org.freedesktop.impl.portal.Access"
	RequestInterface = "org.freedesktop.impl.portal.Request"

	errLimitsExceeded = "org.freedesktop.DBus.Error.LimitsExceeded"
	errAccessDenied   = "org.freedesktop.DBus.Error.AccessDenied"
	errInvalidArgs    = "org.freedesktop.DBus.Error.InvalidArgs"
	errFailed         = "org.freedesktop.DBus.Error.Failed"
)

const accessIntrospection = `
	<interface name="` + AccessInterface + `">
		<method name="AccessDialog">
			<arg type="o" name="handle" direction="in"/>
			<arg type="s" name="app_id" direction="in"/>
			<arg type="s" name="parent_window" direction="in"/>
			<arg type="s" name="title" direction="in"/>
			<arg type="s" name="subtitle" direction="in"/>
			<arg type="s" name="body" direction="in"/>
			<arg type="a{sv}" name="options" direction="in"/>
			<arg type="u" name="response" direction="out"/>
			<arg type="a{sv}" name="results" direction="out"/>
		</method>
	</interface>`

const requestIntrospection = `
	<interface name="` + RequestInterface + `">
		<method name="Close"/>
	</interface>`

const introspectInterface = "org.freedesktop.DBus.Introspectable"

func introspectable(iface string) introspect.Introspectable {
	return introspect.Introspectable(introspect.IntrospectDeclarationString +
		"<node>" + iface + introspect.IntrospectDataString + "</node>")
}

// exporter is the part of *dbus.Conn the portal needs
type exporter interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
}

// Portal exposes a Service as org.freedesktop.impl.portal.Access
type Portal struct {
	conn   exporter
	svc    *Service
	logger *slog.Logger
}

// NewPortal creates the D-Bus object for svc. Use Export to publish it, and
// pass the portal as the service's Endpoints so requests get a Close method.
func NewPortal(conn exporter, logger *slog.Logger) *Portal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Portal{conn: conn, logger: logger}
}

// Attach binds the portal to the service that handles its calls
func (p *Portal) Attach(svc *Service) {
	p.svc = svc
}

// Export publishes the Access interface at PortalObjectPath
func (p *Portal) Export() error {
	if err := p.conn.Export(p, PortalObjectPath, AccessInterface); err != nil {
		return fmt.Errorf("failed to export %s: %w", AccessInterface, err)
	}
	if err := p.conn.Export(introspectable(accessIntrospection), PortalObjectPath, introspectInterface); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}
	return nil
}

// AccessDialog implements org.freedesktop.impl.portal.Access.AccessDialog.
// The call returns once the dialog has closed.
func (p *Portal) AccessDialog(sender dbus.Sender, handle dbus.ObjectPath, appID, parentWindow, title, subtitle, body string, options map[string]dbus.Variant) (uint32, map[string]dbus.Variant, *dbus.Error) {
	opts, err := ParseOptions(options)
	if err != nil {
		return 0, nil, toDBusError(err)
	}

	req := &Request{
		Handle:       handle,
		Sender:       string(sender),
		AppID:        appID,
		ParentWindow: parentWindow,
		Title:        title,
		Subtitle:     subtitle,
		Body:         body,
		Options:      opts,
	}
	d, err := p.svc.RequestAccess(context.Background(), req)
	if err != nil {
		p.logger.Info("access dialog refused", "sender", sender, "app_id", appID, "error", err)
		return 0, nil, toDBusError(err)
	}

	<-d.Done()
	resp := d.Response()

	results := make(map[string]dbus.Variant, len(resp.Results))
	for id, v := range resp.Results {
		results[id] = dbus.MakeVariant(v)
	}
	return uint32(resp.Outcome), results, nil
}

// ExportRequest implements Endpoints by exporting a Request object at the
// dialog's handle
func (p *Portal) ExportRequest(d *Dialog) (func(), error) {
	path := d.Request().Handle
	if !path.IsValid() {
		return nil, fmt.Errorf("invalid request handle %q", path)
	}
	obj := &requestObject{dialog: d, logger: p.logger}
	if err := p.conn.Export(obj, path, RequestInterface); err != nil {
		return nil, err
	}
	if err := p.conn.Export(introspectable(requestIntrospection), path, introspectInterface); err != nil {
		p.logger.Warn("failed to export request introspection", "handle", path, "error", err)
	}

	return func() {
		if err := p.conn.Export(nil, path, RequestInterface); err != nil {
			p.logger.Warn("failed to unexport request", "handle", path, "error", err)
		}
		_ = p.conn.Export(nil, path, introspectInterface)
	}, nil
}

// requestObject is the org.freedesktop.impl.portal.Request at a handle
type requestObject struct {
	dialog *Dialog
	logger *slog.Logger
}

// Close implements org.freedesktop.impl.portal.Request.Close
func (r *requestObject) Close(sender dbus.Sender) *dbus.Error {
	if err := r.dialog.Cancel(string(sender)); err != nil {
		r.logger.Info("request close refused", "sender", sender, "handle", r.dialog.Request().Handle)
		return toDBusError(err)
	}
	return nil
}

// toDBusError maps package errors to D-Bus error names
func toDBusError(err error) *dbus.Error {
	name := errFailed
	switch {
	case errors.Is(err, ErrAlreadyInProgress):
		name = errLimitsExceeded
	case errors.Is(err, ErrForbidden):
		name = errAccessDenied
	case errors.Is(err, ErrInvalidOptions):
		name = errInvalidArgs
	}
	return dbus.NewError(name, []interface{}{err.Error()})
}
