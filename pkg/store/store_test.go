package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/djwarf/switchshell/pkg/access"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "switchshell.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, access.Decision{
		Handle:  "/org/freedesktop/portal/desktop/request/1_5/a",
		AppID:   "org.gnome.Maps",
		Title:   "Turn On Wi-Fi?",
		Outcome: access.Granted,
		Results: map[string]string{"wifi": "true"},
		Created: base,
	}))
	require.NoError(t, s.Record(ctx, access.Decision{
		Handle:  "/org/freedesktop/portal/desktop/request/1_6/b",
		Outcome: access.Denied,
		Results: map[string]string{},
		Created: base.Add(time.Minute),
	}))

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, access.Denied, entries[0].Outcome)
	require.Empty(t, entries[0].AppID)
	require.Empty(t, entries[0].Results)

	got := entries[1]
	require.NotEmpty(t, got.ID)
	require.Equal(t, "org.gnome.Maps", got.AppID)
	require.Equal(t, "Turn On Wi-Fi?", got.Title)
	require.Equal(t, access.Granted, got.Outcome)
	require.Equal(t, map[string]string{"wifi": "true"}, got.Results)
	require.WithinDuration(t, base, got.Created, time.Second)

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, entries[0].ID, limited[0].ID)
}

func TestForAppAndPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, d := range []access.Decision{
		{Handle: "/a", AppID: "org.gnome.Maps", Outcome: access.Granted, Created: old},
		{Handle: "/b", AppID: "org.gnome.Maps", Outcome: access.Closed, Created: recent},
		{Handle: "/c", AppID: "org.example.Other", Outcome: access.Denied, Created: recent},
	} {
		require.NoError(t, s.Record(ctx, d))
	}

	maps, err := s.ForApp(ctx, "org.gnome.Maps")
	require.NoError(t, err)
	require.Len(t, maps, 2)
	require.Equal(t, "/b", maps[0].Handle)

	n, err := s.Prune(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switchshell.db")
	ctx := context.Background()

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, access.Decision{Handle: "/a", Outcome: access.Granted}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Created.IsZero())
}

func TestStoreImplementsRecorder(t *testing.T) {
	var _ access.Recorder = newTestStore(t)
}
