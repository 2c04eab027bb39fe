package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switchshell", "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, DefaultBusName, cfg.BusName)
	require.Equal(t, -1, cfg.WeekStartsOn)
	require.True(t, cfg.RequireFocusedApp)
	require.FileExists(t, path)
}

func TestLoadFromKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"show_week_numbers": true}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.True(t, cfg.WeekNumbersEnabled())
	require.Equal(t, DefaultBusName, cfg.BusName)
	require.True(t, cfg.ReplaceExisting)
}

func TestLoadFromRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Language = "de"
	cfg.EventsFile = "/tmp/events.ics"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.Equal(t, filepath.Join(cfg.DataDir, "switchshell.db"), loaded.DatabasePath())
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, DefaultConfig().SaveTo(path))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.False(t, w.WeekNumbersEnabled())

	var calls atomic.Int32
	w.OnChange(func(old, cur *Config) {
		if !old.ShowWeekNumbers && cur.ShowWeekNumbers {
			calls.Add(1)
		}
	})

	cfg := DefaultConfig()
	cfg.ShowWeekNumbers = true
	require.NoError(t, cfg.SaveTo(path))

	require.Eventually(t, func() bool { return w.WeekNumbersEnabled() }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherKeepsConfigOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.ShowWeekNumbers = true
	require.NoError(t, cfg.SaveTo(path))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
	require.Error(t, w.Reload())
	require.True(t, w.WeekNumbersEnabled())
	require.True(t, w.Config().ShowWeekNumbers)
}
