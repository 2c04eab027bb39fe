package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/djwarf/switchshell/pkg/store"
)

var (
	historyLimit     int
	historyApp       string
	historyPruneDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded access decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewStore(cfg.DatabasePath())
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		if historyPruneDays > 0 {
			n, err := st.Prune(ctx, time.Now().AddDate(0, 0, -historyPruneDays))
			if err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
			fmt.Printf("Removed %d decisions older than %d days\n", n, historyPruneDays)
			return nil
		}

		var entries []store.Entry
		if historyApp != "" {
			entries, err = st.ForApp(ctx, historyApp)
		} else {
			entries, err = st.List(ctx, historyLimit)
		}
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No access decisions recorded.")
			return nil
		}
		for _, e := range entries {
			app := e.AppID
			if app == "" {
				app = "-"
			}
			fmt.Printf("%s  %-8s  %-28s  %s%s\n",
				e.Created.Local().Format("2006-01-02 15:04"), e.Outcome, truncate(app, 28), e.Title, formatResults(e.Results))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of decisions to show (0 for all)")
	historyCmd.Flags().StringVar(&historyApp, "app", "", "only show decisions for this app id")
	historyCmd.Flags().IntVar(&historyPruneDays, "prune", 0, "delete decisions older than this many days")
}

func formatResults(results map[string]string) string {
	if len(results) == 0 {
		return ""
	}
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+results[k])
	}
	return " [" + strings.Join(parts, " ") + "]"
}
