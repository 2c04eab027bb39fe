package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/internal/config"
	"github.com/djwarf/switchshell/pkg/calendar"
)

const appID = "com.djwarf.switchshell"

var (
	configPath string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "switchshell",
	Short: "Desktop shell services: access portal backend and calendar",
	Long: `switchshell provides the org.freedesktop.impl.portal.Access backend
and the month calendar of the desktop shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if configPath == "" {
			configPath = config.Path()
		}
		loaded, err := config.LoadFrom(configPath)
		if err != nil {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
			loaded = config.DefaultConfig()
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/switchshell/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(portalCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(calCmd)
	rootCmd.AddCommand(waybarCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(requestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// calendarOptions builds the calendar state options shared by every front end
func calendarOptions(settings calendar.Settings) calendar.Options {
	opts := calendar.Options{Settings: settings, Logger: logger}

	catalog, err := calendar.NewCatalog(cfg.Language)
	if err != nil {
		logger.Warn("failed to load calendar translations", "language", cfg.Language, "error", err)
	} else {
		opts.Translator = catalog
	}

	if cfg.WeekStartsOn >= 0 && cfg.WeekStartsOn <= 6 {
		wd := time.Weekday(cfg.WeekStartsOn)
		opts.WeekStart = &wd
	}
	return opts
}

// eventSource returns the configured event marker sources, or nil
func eventSource(ctx context.Context) calendar.EventSource {
	var sources calendar.MultiSource
	if cfg.EventsFile != "" {
		sources = append(sources, calendar.NewICSSource(cfg.EventsFile))
	}
	if cfg.CalDAVURL != "" {
		src, err := calendar.NewCalDAVSource(ctx, calendar.CalDAVConfig{
			URL:      cfg.CalDAVURL,
			Username: cfg.CalDAVUsername,
			Password: cfg.CalDAVPassword,
			Token:    cfg.CalDAVToken,
		})
		if err != nil {
			logger.Warn("CalDAV events disabled", "url", cfg.CalDAVURL, "error", err)
		} else {
			sources = append(sources, src)
		}
	}

	if cfg.GOAAccount != "" {
		src, err := onlineAccountSource(ctx, cfg.GOAAccount)
		if err != nil {
			logger.Warn("online account events disabled", "account", cfg.GOAAccount, "error", err)
		} else {
			sources = append(sources, src)
		}
	}

	switch len(sources) {
	case 0:
		return nil
	case 1:
		return sources[0]
	default:
		return sources
	}
}

func onlineAccountSource(ctx context.Context, id string) (*calendar.CalDAVSource, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	accounts, err := calendar.OnlineAccounts(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	account, ok := calendar.FindOnlineAccount(accounts, id)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("no online account %q with calendars enabled", id)
	}

	// the connection stays open for token refreshes
	src, err := calendar.NewOnlineAccountSource(ctx, conn, account, calendar.CalDAVConfig{
		Username: cfg.CalDAVUsername,
		Password: cfg.CalDAVPassword,
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return src, nil
}
