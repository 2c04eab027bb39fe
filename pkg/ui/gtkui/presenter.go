// Package gtkui contains the GTK 4 front ends: the access dialog window and
// the month calendar widget.
package gtkui

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/djwarf/switchshell/pkg/access"
)

// Presenter shows access dialogs as modal GTK windows. It may be called from
// any goroutine; widget work is queued onto the main loop.
type Presenter struct {
	app    *gtk.Application
	logger *slog.Logger

	mu      sync.Mutex
	windows map[*access.Dialog]*gtk.Window
}

// NewPresenter creates a presenter whose windows belong to app
func NewPresenter(app *gtk.Application, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		app:     app,
		logger:  logger,
		windows: make(map[*access.Dialog]*gtk.Window),
	}
}

// Present implements access.Presenter
func (p *Presenter) Present(d *access.Dialog) error {
	glib.IdleAdd(func() {
		win := p.build(d)
		p.mu.Lock()
		p.windows[d] = win
		p.mu.Unlock()
		win.Present()
	})
	return nil
}

// Dismiss implements access.Presenter. done runs once the window is gone.
func (p *Presenter) Dismiss(d *access.Dialog, done func()) {
	glib.IdleAdd(func() {
		p.mu.Lock()
		win := p.windows[d]
		delete(p.windows, d)
		p.mu.Unlock()

		if win != nil {
			win.SetVisible(false)
			win.Destroy()
		}
		done()
	})
}

func (p *Presenter) build(d *access.Dialog) *gtk.Window {
	req := d.Request()
	opts := req.Options

	win := gtk.NewWindow()
	if p.app != nil {
		win.SetApplication(p.app)
	}
	win.SetTitle(req.Title)
	win.SetModal(true)
	win.SetResizable(false)
	win.SetDefaultSize(360, -1)
	win.AddCSSClass("switchshell-access-dialog")

	content := gtk.NewBox(gtk.OrientationVertical, 12)
	content.SetMarginTop(24)
	content.SetMarginBottom(24)
	content.SetMarginStart(24)
	content.SetMarginEnd(24)

	if opts.Icon != "" {
		icon := gtk.NewImageFromIconName(opts.Icon)
		icon.SetPixelSize(64)
		content.Append(icon)
	}

	title := gtk.NewLabel(req.Title)
	title.AddCSSClass("title-2")
	title.SetWrap(true)
	title.SetJustify(gtk.JustifyCenter)
	content.Append(title)

	if req.Subtitle != "" {
		subtitle := gtk.NewLabel(req.Subtitle)
		subtitle.SetWrap(true)
		subtitle.SetJustify(gtk.JustifyCenter)
		content.Append(subtitle)
	}

	choices := d.Choices()
	if len(choices) > 0 {
		box := gtk.NewBox(gtk.OrientationVertical, 6)
		for _, c := range choices {
			check := gtk.NewCheckButtonWithLabel(c.Label)
			check.SetActive(c.Checked)
			id := c.ID
			check.ConnectToggled(func() {
				if err := d.SetChoice(id, check.Active()); err != nil {
					p.logger.Debug("choice toggled after response", "choice", id, "error", err)
				}
			})
			box.Append(check)
		}
		content.Append(box)
	}

	if req.Body != "" {
		body := gtk.NewLabel(req.Body)
		body.SetWrap(true)
		body.SetJustify(gtk.JustifyCenter)
		body.AddCSSClass("dim-label")
		content.Append(body)
	}

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 8)
	buttons.SetHomogeneous(true)
	buttons.SetMarginTop(12)

	denyBtn := gtk.NewButtonWithLabel(opts.DenyLabel)
	denyBtn.ConnectClicked(d.Deny)
	buttons.Append(denyBtn)

	grantBtn := gtk.NewButtonWithLabel(opts.GrantLabel)
	grantBtn.AddCSSClass("suggested-action")
	grantBtn.ConnectClicked(d.Grant)
	buttons.Append(grantBtn)

	content.Append(buttons)
	win.SetChild(content)

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		if keyval == gdk.KEY_Escape {
			d.Deny()
			return true
		}
		return false
	})
	win.AddController(keys)

	// The window stays until Dismiss; the close control only answers
	win.ConnectCloseRequest(func() bool {
		d.Dismiss()
		return true
	})

	denyBtn.GrabFocus()
	return win
}
