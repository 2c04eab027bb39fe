// Package access implements the backend of the access portal: a service that
// admits at most one access request at a time and the dialog state machine
// that turns user input into exactly one response.
package access

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
)

// Endpoints publishes the per-request object that lets the caller cancel
type Endpoints interface {
	ExportRequest(d *Dialog) (unexport func(), err error)
}

// Decision is a finished request, as kept in the history
type Decision struct {
	Handle  string
	AppID   string
	Title   string
	Outcome Outcome
	Results map[string]string
	Created time.Time
}

// Recorder keeps finished decisions
type Recorder interface {
	Record(ctx context.Context, d Decision) error
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	Presenter Presenter
	// Focus, when set, restricts requests carrying an app id to the focused app
	Focus     FocusTracker
	Endpoints Endpoints
	Recorder  Recorder
	Logger    *slog.Logger
}

// Service owns the single active access dialog
type Service struct {
	presenter Presenter
	focus     FocusTracker
	endpoints Endpoints
	recorder  Recorder
	logger    *slog.Logger

	active atomic.Pointer[Dialog]
}

// NewService creates a Service
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		presenter: opts.Presenter,
		focus:     opts.Focus,
		endpoints: opts.Endpoints,
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// Active returns the open dialog, or nil
func (s *Service) Active() *Dialog {
	return s.active.Load()
}

// RequestAccess opens a dialog for req. The response arrives through the
// returned dialog once the user (or the caller) has closed it.
func (s *Service) RequestAccess(ctx context.Context, req *Request) (*Dialog, error) {
	if s.active.Load() != nil {
		return nil, ErrAlreadyInProgress
	}

	if req.AppID != "" && s.focus != nil {
		focused, err := s.focus.FocusedApp(ctx)
		if err != nil {
			s.logger.Warn("could not determine focused app", "app_id", req.AppID, "error", err)
			return nil, fmt.Errorf("%w: focused app unknown", ErrForbidden)
		}
		if desktopID(req.AppID) != focused {
			return nil, fmt.Errorf("%w: only the focused app is allowed to show a system access dialog", ErrForbidden)
		}
	}

	d := NewDialog(req, s.presenter)
	if !s.active.CompareAndSwap(nil, d) {
		return nil, ErrAlreadyInProgress
	}
	d.OnClosed(func(resp Response) {
		s.active.CompareAndSwap(d, nil)
		s.logger.Info("access dialog closed",
			"handle", req.Handle, "app_id", req.AppID, "outcome", resp.Outcome.String())
		s.record(req, resp)
	})

	var unexport func()
	if s.endpoints != nil {
		var err error
		unexport, err = s.endpoints.ExportRequest(d)
		if err != nil {
			// The dialog still works; the caller just cannot cancel it
			s.logger.Warn("failed to export request", "handle", req.Handle, "error", err)
			unexport = nil
		}
		d.setEndpoint(unexport)
	}

	if s.presenter != nil {
		if err := s.presenter.Present(d); err != nil {
			if unexport != nil {
				unexport()
			}
			s.active.CompareAndSwap(d, nil)
			return nil, fmt.Errorf("failed to show access dialog: %w", err)
		}
	}

	s.logger.Info("access dialog opened", "handle", req.Handle, "app_id", req.AppID)
	return d, nil
}

// Cancel closes the active dialog on behalf of sender
func (s *Service) Cancel(handle dbus.ObjectPath, sender string) error {
	d := s.active.Load()
	if d == nil || d.Request().Handle != handle {
		return fmt.Errorf("%w: %s", ErrNoSuchRequest, handle)
	}
	return d.Cancel(sender)
}

func (s *Service) record(req *Request, resp Response) {
	if s.recorder == nil {
		return
	}
	dec := Decision{
		Handle:  string(req.Handle),
		AppID:   req.AppID,
		Title:   req.Title,
		Outcome: resp.Outcome,
		Results: resp.Results,
		Created: time.Now(),
	}
	if err := s.recorder.Record(context.Background(), dec); err != nil {
		s.logger.Warn("failed to record decision", "handle", req.Handle, "error", err)
	}
}
