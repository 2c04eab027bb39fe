package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/pkg/access"
	"github.com/djwarf/switchshell/pkg/store"
	"github.com/djwarf/switchshell/pkg/ui/gtkui"
)

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Run the access portal backend",
	Long: `Run the org.freedesktop.impl.portal.Access backend on the session bus.
Access dialogs are shown as GTK windows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPortal()
	},
}

func runPortal() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	app := gtk.NewApplication(appID+".Portal", gio.ApplicationNonUnique)

	portal := access.NewPortal(conn, logger)
	opts := access.ServiceOptions{
		Presenter: gtkui.NewPresenter(app, logger),
		Endpoints: portal,
		Logger:    logger,
	}
	if cfg.RequireFocusedApp {
		opts.Focus = access.NewShellFocusTracker(conn)
	}
	if cfg.RecordHistory {
		st, err := store.NewStore(cfg.DatabasePath())
		if err != nil {
			logger.Warn("decision history disabled", "path", cfg.DatabasePath(), "error", err)
		} else {
			defer st.Close()
			opts.Recorder = st
		}
	}

	portal.Attach(access.NewService(opts))
	if err := portal.Export(); err != nil {
		return err
	}

	flags := dbus.NameFlagDoNotQueue
	if cfg.ReplaceExisting {
		flags |= dbus.NameFlagReplaceExisting | dbus.NameFlagAllowReplacement
	}
	reply, err := conn.RequestName(cfg.BusName, flags)
	if err != nil {
		return fmt.Errorf("failed to request %s: %w", cfg.BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s is owned by another process", cfg.BusName)
	}
	logger.Info("access portal running", "bus_name", cfg.BusName, "object", access.PortalObjectPath)

	// Another backend started with replace_existing takes over the name
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameLost"),
	); err != nil {
		logger.Warn("failed to watch bus name", "error", err)
	}
	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	go func() {
		for sig := range signals {
			if sig.Name != "org.freedesktop.DBus.NameLost" || len(sig.Body) == 0 {
				continue
			}
			if name, _ := sig.Body[0].(string); name == cfg.BusName {
				logger.Info("bus name lost, exiting", "bus_name", name)
				glib.IdleAdd(app.Quit)
			}
		}
	}()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		glib.IdleAdd(app.Quit)
	}()

	app.ConnectStartup(func() {
		// No window exists until a request arrives
		app.Hold()
		gtkui.LoadCSS()
	})
	app.ConnectActivate(func() {})

	if code := app.Run([]string{os.Args[0]}); code > 0 {
		return fmt.Errorf("gtk application exited with status %d", code)
	}
	return nil
}
