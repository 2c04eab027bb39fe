package access

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := ParseOptions(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultDenyLabel, opts.DenyLabel)
	require.Equal(t, DefaultGrantLabel, opts.GrantLabel)
	require.Empty(t, opts.Icon)
	require.True(t, opts.Modal)
	require.Empty(t, opts.Choices)
}

func TestParseOptions(t *testing.T) {
	raw := map[string]dbus.Variant{
		"deny_label":  dbus.MakeVariant("Not now"),
		"grant_label": dbus.MakeVariant(""),
		"icon":        dbus.MakeVariant("network-wireless-symbolic"),
		"modal":       dbus.MakeVariant(false),
		"unknown":     dbus.MakeVariant(uint32(7)),
		"choices": dbus.MakeVariantWithSignature([][]interface{}{
			{"wifi", "Wi-Fi", [][]interface{}{}, "true"},
			{"mode", "Mode", [][]interface{}{{"a", "Fast"}, {"b", "Slow"}}, "a"},
			{"bt", "Bluetooth", [][]interface{}{}, "false"},
		}, dbus.ParseSignatureMust("a(ssa(ss)s)")),
	}

	opts, err := ParseOptions(raw)
	require.NoError(t, err)
	require.Equal(t, "Not now", opts.DenyLabel)
	require.Equal(t, DefaultGrantLabel, opts.GrantLabel)
	require.Equal(t, "network-wireless-symbolic", opts.Icon)

	require.Equal(t, []Choice{
		{ID: "wifi", Label: "Wi-Fi", Selected: true},
		{ID: "mode", Label: "Mode", Options: []ChoiceOption{{"a", "Fast"}, {"b", "Slow"}}},
		{ID: "bt", Label: "Bluetooth"},
	}, opts.Choices)

	boxes := opts.Checkboxes()
	require.Len(t, boxes, 2)
	require.Equal(t, "wifi", boxes[0].ID)
	require.Equal(t, "bt", boxes[1].ID)
}

func TestParseOptionsWrongTypes(t *testing.T) {
	tests := map[string]dbus.Variant{
		"deny_label":  dbus.MakeVariant(uint32(1)),
		"grant_label": dbus.MakeVariant(true),
		"icon":        dbus.MakeVariant([]string{"a"}),
		"modal":       dbus.MakeVariant("yes"),
		"choices":     dbus.MakeVariant("wifi"),
	}

	for key, v := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := ParseOptions(map[string]dbus.Variant{key: v})
			require.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestEncodeOptionsRoundTrip(t *testing.T) {
	in := Options{
		DenyLabel:  "No",
		GrantLabel: "Yes",
		Icon:       "dialog-password",
		Modal:      true,
		Choices: []Choice{
			{ID: "wifi", Label: "Wi-Fi", Selected: true},
			{ID: "mode", Label: "Mode", Options: []ChoiceOption{{"a", "Fast"}}},
		},
	}

	out, err := ParseOptions(EncodeOptions(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "granted", Granted.String())
	require.Equal(t, "denied", Denied.String())
	require.Equal(t, "closed", Closed.String())
	require.Equal(t, "outcome(9)", Outcome(9).String())
}
