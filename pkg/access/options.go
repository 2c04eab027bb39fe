package access

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	DefaultDenyLabel  = "Deny Access"
	DefaultGrantLabel = "Grant Access"
)

// Outcome is the response code returned to the caller
type Outcome uint32

const (
	Granted Outcome = 0
	Denied  Outcome = 1
	Closed  Outcome = 2
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("outcome(%d)", uint32(o))
	}
}

// ChoiceOption is one entry of a radio-style choice
type ChoiceOption struct {
	ID    string
	Label string
}

// Choice is an extra question shown in the dialog. Choices with Options
// are radio groups, which are accepted but not shown.
type Choice struct {
	ID       string
	Label    string
	Options  []ChoiceOption
	Selected bool
}

// IsCheckbox reports whether the choice is shown as a checkbox
func (c Choice) IsCheckbox() bool {
	return len(c.Options) == 0
}

// Options are the recognized keys of the AccessDialog options vardict
type Options struct {
	DenyLabel  string
	GrantLabel string
	Icon       string
	// Modal is accepted for compatibility; dialogs are always modal
	Modal   bool
	Choices []Choice
}

// Checkboxes returns the choices that are shown, in request order
func (o Options) Checkboxes() []Choice {
	var out []Choice
	for _, c := range o.Choices {
		if c.IsCheckbox() {
			out = append(out, c)
		}
	}
	return out
}

// ParseOptions reads the options vardict. Unknown keys are ignored; a known
// key with the wrong type is an error.
func ParseOptions(raw map[string]dbus.Variant) (Options, error) {
	opts := Options{
		DenyLabel:  DefaultDenyLabel,
		GrantLabel: DefaultGrantLabel,
		Modal:      true,
	}

	if err := stringOption(raw, "deny_label", &opts.DenyLabel); err != nil {
		return opts, err
	}
	if err := stringOption(raw, "grant_label", &opts.GrantLabel); err != nil {
		return opts, err
	}
	if err := stringOption(raw, "icon", &opts.Icon); err != nil {
		return opts, err
	}
	if v, ok := raw["modal"]; ok {
		if _, ok := v.Value().(bool); !ok {
			return opts, fmt.Errorf("%w: modal must be a boolean, got %s", ErrInvalidOptions, v.Signature())
		}
	}

	if v, ok := raw["choices"]; ok {
		choices, err := parseChoices(v)
		if err != nil {
			return opts, err
		}
		opts.Choices = choices
	}

	return opts, nil
}

// stringOption sets *dst when key is present and non-empty
func stringOption(raw map[string]dbus.Variant, key string, dst *string) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	s, ok := v.Value().(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string, got %s", ErrInvalidOptions, key, v.Signature())
	}
	if s != "" {
		*dst = s
	}
	return nil
}

// choiceWire mirrors the a(ssa(ss)s) signature of the choices option
type choiceWire struct {
	ID       string
	Label    string
	Options  []optionWire
	Selected string
}

type optionWire struct {
	ID    string
	Label string
}

func parseChoices(v dbus.Variant) ([]Choice, error) {
	var wire []choiceWire
	if err := dbus.Store([]interface{}{v.Value()}, &wire); err != nil {
		return nil, fmt.Errorf("%w: choices must be a(ssa(ss)s), got %s", ErrInvalidOptions, v.Signature())
	}

	choices := make([]Choice, 0, len(wire))
	for _, w := range wire {
		c := Choice{
			ID:       w.ID,
			Label:    w.Label,
			Selected: w.Selected == "true",
		}
		for _, o := range w.Options {
			c.Options = append(c.Options, ChoiceOption(o))
		}
		choices = append(choices, c)
	}
	return choices, nil
}
