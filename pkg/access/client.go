package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

// Client calls a running access portal backend
type Client struct {
	conn    *dbus.Conn
	busName string
}

// NewClient creates a client for the backend owning busName
func NewClient(conn *dbus.Conn, busName string) *Client {
	return &Client{conn: conn, busName: busName}
}

// NewHandle builds a request handle in the
// /org/freedesktop/portal/desktop/request/SENDER/TOKEN form
func NewHandle(uniqueName string) dbus.ObjectPath {
	sender := strings.ReplaceAll(strings.TrimPrefix(uniqueName, ":"), ".", "_")
	token := "switchshell_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return dbus.ObjectPath(fmt.Sprintf("%s/request/%s/%s", PortalObjectPath, sender, token))
}

// AccessDialog shows an access dialog and waits for the answer. When ctx is
// cancelled first the request is closed and ctx's error returned.
func (c *Client) AccessDialog(ctx context.Context, req Request) (Response, error) {
	if req.Handle == "" {
		req.Handle = NewHandle(c.conn.Names()[0])
	}

	obj := c.conn.Object(c.busName, PortalObjectPath)
	call := obj.CallWithContext(ctx, AccessInterface+".AccessDialog", 0,
		req.Handle, req.AppID, req.ParentWindow, req.Title, req.Subtitle, req.Body,
		EncodeOptions(req.Options))

	var code uint32
	var results map[string]dbus.Variant
	if err := call.Store(&code, &results); err != nil {
		if ctx.Err() != nil {
			closeCall := c.conn.Object(c.busName, req.Handle).Call(RequestInterface+".Close", 0)
			if closeCall.Err != nil {
				return Response{}, fmt.Errorf("failed to close request: %w", closeCall.Err)
			}
			return Response{}, ctx.Err()
		}
		return Response{}, fmt.Errorf("access dialog failed: %w", err)
	}

	resp := Response{Outcome: Outcome(code), Results: map[string]string{}}
	for id, v := range results {
		s, ok := v.Value().(string)
		if !ok {
			return resp, fmt.Errorf("result %q is %s, expected a string", id, v.Signature())
		}
		resp.Results[id] = s
	}
	return resp, nil
}

// EncodeOptions is the inverse of ParseOptions
func EncodeOptions(opts Options) map[string]dbus.Variant {
	out := map[string]dbus.Variant{}
	if opts.DenyLabel != "" {
		out["deny_label"] = dbus.MakeVariant(opts.DenyLabel)
	}
	if opts.GrantLabel != "" {
		out["grant_label"] = dbus.MakeVariant(opts.GrantLabel)
	}
	if opts.Icon != "" {
		out["icon"] = dbus.MakeVariant(opts.Icon)
	}
	if len(opts.Choices) > 0 {
		wire := make([]choiceWire, 0, len(opts.Choices))
		for _, c := range opts.Choices {
			w := choiceWire{ID: c.ID, Label: c.Label, Options: []optionWire{}, Selected: "false"}
			if c.Selected {
				w.Selected = "true"
			}
			for _, o := range c.Options {
				w.Options = append(w.Options, optionWire(o))
			}
			wire = append(wire, w)
		}
		out["choices"] = dbus.MakeVariant(wire)
	}
	return out
}
