package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/pkg/access"
)

var (
	requestAppID      string
	requestSubtitle   string
	requestBody       string
	requestIcon       string
	requestDenyLabel  string
	requestGrantLabel string
	requestChoices    []string
)

var requestCmd = &cobra.Command{
	Use:   "request TITLE",
	Short: "Ask the running backend to show an access dialog",
	Long: `Ask the running backend to show an access dialog and print the answer.

Choices are given as id:label or id:label:true for a preselected checkbox.`,
	Example: `  switchshell request "Turn On Wi-Fi?" --subtitle "Wi-Fi is needed" --choice "wifi:Wi-Fi:true"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		choices, err := parseChoiceFlags(requestChoices)
		if err != nil {
			return err
		}

		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer conn.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		client := access.NewClient(conn, cfg.BusName)
		resp, err := client.AccessDialog(ctx, access.Request{
			AppID:    requestAppID,
			Title:    args[0],
			Subtitle: requestSubtitle,
			Body:     requestBody,
			Options: access.Options{
				DenyLabel:  requestDenyLabel,
				GrantLabel: requestGrantLabel,
				Icon:       requestIcon,
				Choices:    choices,
			},
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s%s\n", resp.Outcome, formatResults(resp.Results))
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVar(&requestAppID, "app-id", "", "app id the request is made for")
	requestCmd.Flags().StringVar(&requestSubtitle, "subtitle", "", "dialog subtitle")
	requestCmd.Flags().StringVar(&requestBody, "body", "", "dialog body text")
	requestCmd.Flags().StringVar(&requestIcon, "icon", "", "icon name")
	requestCmd.Flags().StringVar(&requestDenyLabel, "deny-label", "", "label of the deny button")
	requestCmd.Flags().StringVar(&requestGrantLabel, "grant-label", "", "label of the grant button")
	requestCmd.Flags().StringArrayVar(&requestChoices, "choice", nil, "checkbox as id:label[:true]")
}

func parseChoiceFlags(flags []string) ([]access.Choice, error) {
	choices := make([]access.Choice, 0, len(flags))
	for _, f := range flags {
		parts := strings.SplitN(f, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid choice %q, expected id:label[:true]", f)
		}
		c := access.Choice{ID: parts[0], Label: parts[1]}
		if len(parts) == 3 {
			c.Selected = parts[2] == "true"
		}
		choices = append(choices, c)
	}
	return choices, nil
}
